// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package crowd

import (
	"math"
	"time"

	"github.com/tomtom215/crowdanalyzer/internal/models"
)

const (
	// DefaultDensity is the starting density for a location with no live history.
	DefaultDensity = 65

	// HighDensityThreshold is the value a live step must cross to raise an alert.
	HighDensityThreshold = 80

	// SeriesMinutes is the span of the current-density chart.
	SeriesMinutes = 30

	liveMin = 30
	liveMax = 95
)

// DensityLevel buckets a density percentage: below 40 Low, below 70 Medium,
// otherwise High.
func DensityLevel(v int) models.DensityLevel {
	switch {
	case v < 40:
		return models.DensityLow
	case v < 70:
		return models.DensityMedium
	default:
		return models.DensityHigh
	}
}

// DensitySeries builds the 31-point chart ending at now, oldest first.
// jitter contributes rnd*6-3 to each point; a source that always returns
// 0.5 yields the bare curve.
func DensitySeries(current int, now time.Time, jitter Rand) []models.DensityPoint {
	points := make([]models.DensityPoint, 0, SeriesMinutes+1)
	for i := SeriesMinutes; i >= 0; i-- {
		at := now.Add(-time.Duration(i) * time.Minute)
		fi := float64(i)
		base := clamp(liveMin, liveMax, float64(current)-fi/2+math.Sin(fi/5)*15)
		value := clamp(0, 100, base+jitter.Float64()*6-3)
		points = append(points, models.DensityPoint{
			Time:  at.Format("15:04"),
			Value: jsRound(value),
		})
	}
	return points
}

// NextDensity is the one-minute chart step: current plus rnd*6-3, clamped to
// 0..100 and rounded.
func NextDensity(current int, jitter Rand) int {
	return jsRound(clamp(0, 100, float64(current)+jitter.Float64()*6-3))
}

// LiveStep advances the headline density by an integer in -3..3, bounded to
// 30..95. trend is the "from last hour" figure in -5..14. alert reports a
// crossing above HighDensityThreshold.
func LiveStep(current int, rnd Rand) (next, trend int, alert bool) {
	change := int(math.Floor(rnd.Float64()*7)) - 3
	next = clampInt(liveMin, liveMax, current+change)
	trend = int(math.Floor(rnd.Float64()*20)) - 5
	alert = current <= HighDensityThreshold && next > HighDensityThreshold
	return next, trend, alert
}

// Snapshot assembles the current-density widget payload.
func Snapshot(location string, current int, now time.Time, jitter Rand) models.DensitySnapshot {
	series := DensitySeries(current, now, jitter)
	latest := series[len(series)-1].Value
	return models.DensitySnapshot{
		Location: location,
		Current:  latest,
		Level:    DensityLevel(latest),
		Series:   series,
	}
}
