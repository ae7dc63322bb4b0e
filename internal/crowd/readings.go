// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package crowd

import (
	"time"

	"github.com/tomtom215/crowdanalyzer/internal/models"
)

// Reading names.
const (
	ReadingCrowdDensity = "Crowd Density"
	ReadingTemperature  = "Temperature"
	ReadingHumidity     = "Humidity"
	ReadingAirQuality   = "Air Quality"
)

var readingSpecs = []struct {
	name  string
	unit  string
	scale float64
	min   float64
}{
	{ReadingCrowdDensity, "%", 30, 50},
	{ReadingTemperature, "°C", 10, 25},
	{ReadingHumidity, "%", 30, 50},
	{ReadingAirQuality, "AQI", 50, 30},
}

// SensorReadings returns the four environmental readings for a location,
// classified but not yet refreshed.
func SensorReadings(location string) []models.SensorReading {
	rng := NewSource(location)
	out := make([]models.SensorReading, 0, len(readingSpecs))
	for i, def := range readingSpecs {
		r := models.SensorReading{
			ID:    i + 1,
			Name:  def.name,
			Value: float64(jsRound(rng.Float64()*def.scale + def.min)),
			Unit:  def.unit,
		}
		r.Status, r.Message = ClassifyReading(location, r.Name, r.Value)
		out = append(out, r)
	}
	return out
}

// LiveReadings returns the readings for location after the refresh keyed
// to now's minute. Every widget showing readings uses this source.
func LiveReadings(location string, now time.Time) []models.SensorReading {
	return DriftReadings(location, SensorReadings(location), NewSourceAt(location, now))
}

// DriftReadings applies the periodic refresh: each value moves by rnd*6-3,
// clamped to 0..100 and rounded. The previous value and trend are recorded
// and the reading is reclassified. The input slice is not modified.
func DriftReadings(location string, readings []models.SensorReading, rnd Rand) []models.SensorReading {
	out := make([]models.SensorReading, len(readings))
	for i, r := range readings {
		previous := r.Value
		r.Value = float64(jsRound(clamp(0, 100, r.Value+rnd.Float64()*6-3)))
		r.Previous = &previous
		r.Trend = models.ReadingDown
		if r.Value > previous {
			r.Trend = models.ReadingUp
		}
		r.Status, r.Message = ClassifyReading(location, r.Name, r.Value)
		out[i] = r
	}
	return out
}

// ClassifyReading returns the status of a reading and, for the states that
// need attention, a warning message. Crowd density above 80 is critical and
// above 60 a warning; temperature above 33 is hot and below 28 cool; air
// quality above 70 is poor and above 50 moderate. Humidity is always normal.
func ClassifyReading(location, name string, value float64) (models.ReadingStatus, string) {
	switch name {
	case ReadingCrowdDensity:
		switch {
		case value > 80:
			return models.ReadingCritical, "Crowd density at " + location + " is at critical levels"
		case value > 60:
			return models.ReadingWarning, "Crowd density at " + location + " is approaching critical levels"
		}
	case ReadingTemperature:
		switch {
		case value > 33:
			return models.ReadingHot, "Temperature at " + location + " is high"
		case value < 28:
			return models.ReadingCool, ""
		}
	case ReadingAirQuality:
		switch {
		case value > 70:
			return models.ReadingPoor, "Air quality at " + location + " is poor"
		case value > 50:
			return models.ReadingModerate, ""
		}
	}
	return models.ReadingNormal, ""
}
