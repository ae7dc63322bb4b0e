// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package crowd

import (
	"math"

	"github.com/tomtom215/crowdanalyzer/internal/models"
)

// Placeholder results attached to uploaded media. No frames are decoded;
// rnd is normally a *rand.Rand from math/rand/v2.

// ImageResults returns a density of 50..79, three fixed hotspots and, with
// probability 0.3, two anomaly labels.
func ImageResults(rnd Rand) models.ImageResults {
	res := models.ImageResults{
		Density: int(math.Floor(rnd.Float64()*30)) + 50,
		Hotspots: []models.Hotspot{
			{X: 150, Y: 100, Value: 0.8},
			{X: 200, Y: 150, Value: 0.9},
			{X: 250, Y: 200, Value: 0.7},
		},
		Anomalies: []string{},
	}
	if rnd.Float64() > 0.7 {
		res.Anomalies = []string{"Unusual gathering", "Rapid movement"}
	}
	return res
}

// VideoResults returns an average density of 50..79, a peak of 75..89 at
// 00:01:45, five fixed frame samples and, with probability 0.5, two anomaly
// labels.
func VideoResults(rnd Rand) models.VideoResults {
	res := models.VideoResults{
		AverageDensity: int(math.Floor(rnd.Float64()*30)) + 50,
		PeakDensity:    int(math.Floor(rnd.Float64()*15)) + 75,
		PeakTime:       "00:01:45",
		Frames: []models.FrameDensity{
			{Timestamp: "00:00:30", Density: 65},
			{Timestamp: "00:01:00", Density: 70},
			{Timestamp: "00:01:30", Density: 75},
			{Timestamp: "00:01:45", Density: 85},
			{Timestamp: "00:02:00", Density: 80},
		},
		Anomalies: []string{},
	}
	if rnd.Float64() > 0.5 {
		res.Anomalies = []string{"Sudden dispersal", "Unusual pattern"}
	}
	return res
}
