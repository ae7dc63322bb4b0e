// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package api

import (
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/tomtom215/crowdanalyzer/internal/cache"
	"github.com/tomtom215/crowdanalyzer/internal/crowd"
	"github.com/tomtom215/crowdanalyzer/internal/models"
	"github.com/tomtom215/crowdanalyzer/internal/response"
)

// maxLocationLength matches the location name limit of the request models.
const maxLocationLength = 200

// AnomaliesResponse is the payload of the anomalies widget.
type AnomaliesResponse struct {
	Location  string           `json:"location"`
	Severity  string           `json:"severity"`
	Anomalies []models.Anomaly `json:"anomalies"`
}

// ReadingsResponse is the payload of the sensor readings widget.
type ReadingsResponse struct {
	Location string                 `json:"location"`
	Readings []models.SensorReading `json:"readings"`
}

// dashboardKey identifies one cached widget payload. Payloads are keyed by
// the wall-clock minute, matching the generators' jitter seed.
type dashboardKey struct {
	Location string `json:"location"`
	Minute   int64  `json:"minute"`
	Param    string `json:"param,omitempty"`
}

type widgetBuilder func(location string, now time.Time) (interface{}, error)

// serveWidget validates the location, marks it tracked by the live ticker
// and serves the widget from the dashboard cache.
func (h *Handler) serveWidget(w http.ResponseWriter, r *http.Request, widget, param string, build widgetBuilder) {
	location := locationParam(r)
	if location == "" {
		response.New(w, r).BadRequest("Location is required")
		return
	}
	if utf8.RuneCountInString(location) > maxLocationLength {
		response.New(w, r).BadRequest("Location name too long")
		return
	}
	if h.tracker != nil {
		h.tracker.Track(location)
	}

	now := h.now()
	key := cache.GenerateKey("dashboard:"+widget, dashboardKey{
		Location: location,
		Minute:   now.Unix() / 60,
		Param:    param,
	})
	payload, err := h.dashboards.GetOrCompute(key, func() (interface{}, error) {
		return build(location, now)
	})
	if err != nil {
		response.New(w, r).DatabaseError(err)
		return
	}
	response.New(w, r).Success(payload)
}

func (h *Handler) currentDensity(location string) int {
	if h.tracker == nil {
		return crowd.DefaultDensity
	}
	return h.tracker.Current(location)
}

// Dashboard returns every widget for a location plus its sensors.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.serveWidget(w, r, "full", "", func(location string, now time.Time) (interface{}, error) {
		d := crowd.Dashboard(location, h.currentDensity(location), now)

		sensors, err := h.store.ListSensors(r.Context(), models.SensorFilter{Location: location})
		if err != nil {
			return nil, err
		}
		d.Sensors = sensors
		d.SensorStats = summarizeSensors(sensors)
		return d, nil
	})
}

// Density returns the current value, level and 30-minute series.
func (h *Handler) Density(w http.ResponseWriter, r *http.Request) {
	h.serveWidget(w, r, "density", "", func(location string, now time.Time) (interface{}, error) {
		return crowd.Snapshot(location, h.currentDensity(location), now, crowd.NewSourceAt(location, now)), nil
	})
}

// Trends returns the daily and/or weekly trend series.
func (h *Handler) Trends(w http.ResponseWriter, r *http.Request) {
	rng := crowd.TrendRange(r.URL.Query().Get("range"))
	if rng != "" && rng != crowd.RangeDaily && rng != crowd.RangeWeekly {
		response.New(w, r).BadRequest("range must be daily or weekly")
		return
	}
	h.serveWidget(w, r, "trends", string(rng), func(location string, now time.Time) (interface{}, error) {
		return crowd.Trends(location, now, rng), nil
	})
}

// HeatMap returns the heat map grid.
func (h *Handler) HeatMap(w http.ResponseWriter, r *http.Request) {
	h.serveWidget(w, r, "heatmap", "", func(location string, _ time.Time) (interface{}, error) {
		return crowd.HeatMap(location), nil
	})
}

// Anomalies returns recent anomalies filtered by severity.
func (h *Handler) Anomalies(w http.ResponseWriter, r *http.Request) {
	severity := r.URL.Query().Get("severity")
	if severity == "" {
		severity = "all"
	}
	if severity != "all" && !models.Severity(severity).Valid() {
		response.New(w, r).BadRequest("severity must be all, high, medium or low")
		return
	}
	h.serveWidget(w, r, "anomalies", severity, func(location string, now time.Time) (interface{}, error) {
		return AnomaliesResponse{
			Location:  location,
			Severity:  severity,
			Anomalies: crowd.Anomalies(location, now, severity),
		}, nil
	})
}

// Predictions returns the hourly and/or daily forecast with insights.
func (h *Handler) Predictions(w http.ResponseWriter, r *http.Request) {
	rng := crowd.TrendRange(r.URL.Query().Get("range"))
	if rng != "" && rng != crowd.RangeHourly && rng != crowd.RangeDaily {
		response.New(w, r).BadRequest("range must be hourly or daily")
		return
	}
	h.serveWidget(w, r, "predictions", string(rng), func(location string, now time.Time) (interface{}, error) {
		return crowd.Predictions(location, now, rng), nil
	})
}

// Readings returns the environmental readings after this minute's drift.
func (h *Handler) Readings(w http.ResponseWriter, r *http.Request) {
	h.serveWidget(w, r, "readings", "", func(location string, now time.Time) (interface{}, error) {
		readings := crowd.LiveReadings(location, now)
		return ReadingsResponse{Location: location, Readings: readings}, nil
	})
}

func summarizeSensors(sensors []models.Sensor) *models.SensorStatusSum {
	sum := &models.SensorStatusSum{Total: len(sensors)}
	for _, s := range sensors {
		switch s.Status {
		case models.StatusOnline:
			sum.Online++
		case models.StatusWarning:
			sum.Warning++
		case models.StatusOffline:
			sum.Offline++
		}
	}
	return sum
}
