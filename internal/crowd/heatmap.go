// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package crowd

import (
	"math"

	"github.com/tomtom215/crowdanalyzer/internal/models"
)

// Heat map colours.
const (
	ColorLow    = "#10b981"
	ColorMedium = "#f59e0b"
	ColorHigh   = "#ef4444"
)

// HeatLegend is the fixed legend drawn beside every heat map.
var HeatLegend = []models.LegendEntry{
	{Color: ColorHigh, Label: string(models.DensityHigh)},
	{Color: ColorMedium, Label: string(models.DensityMedium)},
	{Color: ColorLow, Label: string(models.DensityLow)},
}

// HeatColor maps a point weight to its legend colour.
func HeatColor(v float64) string {
	switch {
	case v < 0.5:
		return ColorLow
	case v < 0.8:
		return ColorMedium
	default:
		return ColorHigh
	}
}

// HeatMap generates 5 to 14 weighted points on a 600x400 canvas.
func HeatMap(location string) models.HeatMap {
	rng := NewSource(location)
	count := int(math.Floor(rng.Float64()*10)) + 5

	points := make([]models.HeatPoint, 0, count)
	for i := 0; i < count; i++ {
		x := int(math.Floor(rng.Float64()*500)) + 50
		y := int(math.Floor(rng.Float64()*300)) + 50
		v := rng.Float64()*0.7 + 0.3
		points = append(points, models.HeatPoint{X: x, Y: y, Value: v, Color: HeatColor(v)})
	}

	legend := make([]models.LegendEntry, len(HeatLegend))
	copy(legend, HeatLegend)

	return models.HeatMap{
		Location: location,
		Points:   points,
		Legend:   legend,
		Filename: HeatMapFilename(location),
	}
}

// HeatMapFilename is the download name for a location's heat map image.
func HeatMapFilename(location string) string {
	return "heatmap-" + Slug(location) + ".png"
}
