// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package crowd

import (
	"time"

	"github.com/tomtom215/crowdanalyzer/internal/models"
)

// Dashboard aggregates every widget for one location. current is the live
// headline density (DefaultDensity when the location is not tracked). The
// series jitter is keyed by location and minute, so repeated calls within
// the same minute return identical payloads.
func Dashboard(location string, current int, now time.Time) models.Dashboard {
	return models.Dashboard{
		Location:    location,
		GeneratedAt: now,
		Density:     Snapshot(location, current, now, NewSourceAt(location, now)),
		Trends:      Trends(location, now, ""),
		HeatMap:     HeatMap(location),
		Anomalies:   Anomalies(location, now, ""),
		Predictions: Predictions(location, now, ""),
		Readings:    LiveReadings(location, now),
	}
}
