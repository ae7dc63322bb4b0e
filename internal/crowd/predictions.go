// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package crowd

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/crowdanalyzer/internal/models"
)

func percent(v float64) *int {
	n := jsRound(clamp(0, 100, v))
	return &n
}

// HourlyPredictions returns observed values for the two hours before now and
// the current hour, then forecasts for the next six hours.
func HourlyPredictions(location string, now time.Time) []models.PredictionPoint {
	rng := NewSource(location)
	current := now.Hour()
	points := make([]models.PredictionPoint, 0, 9)

	for i := 2; i >= 0; i-- {
		hour := (current - i + 24) % 24
		base := 50 + math.Sin(float64(hour)/6*math.Pi)*20
		points = append(points, models.PredictionPoint{
			Label:  fmt.Sprintf("%d:00", hour),
			Actual: percent(base + rng.Float64()*10 - 5),
		})
	}
	for i := 1; i <= 6; i++ {
		hour := (current + i) % 24
		base := 50 + math.Sin(float64(hour)/6*math.Pi)*25
		points = append(points, models.PredictionPoint{
			Label:     fmt.Sprintf("%d:00", hour),
			Predicted: percent(base + rng.Float64()*8 - 4),
		})
	}
	return points
}

// DailyPredictions returns observed values for the three days before today
// and today, then forecasts for the next four days.
func DailyPredictions(location string, today time.Weekday) []models.PredictionPoint {
	rng := NewSource(location)
	points := make([]models.PredictionPoint, 0, 8)

	dayBase := func(d time.Weekday) float64 {
		if isWeekend(d) {
			return 60
		}
		return 75
	}

	for i := 3; i >= 0; i-- {
		day := time.Weekday((int(today) - i + 7) % 7)
		points = append(points, models.PredictionPoint{
			Label:  Weekdays[day],
			Actual: percent(dayBase(day) + rng.Float64()*15 - 7.5),
		})
	}
	for i := 1; i <= 4; i++ {
		day := time.Weekday((int(today) + i) % 7)
		points = append(points, models.PredictionPoint{
			Label:     Weekdays[day],
			Predicted: percent(dayBase(day) + rng.Float64()*12 - 6),
		})
	}
	return points
}

var insightTemplates = []struct {
	hour       int
	text       string
	confidence models.Confidence
}{
	{17, "Peak crowd density expected at %s", models.ConfidenceHigh},
	{18, "Gradual increase in crowd density at %s", models.ConfidenceMedium},
	{19, "Crowd dispersal expected at %s", models.ConfidenceHigh},
}

// PredictionInsights returns the three evening forecasts for a location.
func PredictionInsights(location string) []models.PredictionInsight {
	rng := NewSource(location)
	out := make([]models.PredictionInsight, 0, len(insightTemplates))
	for i, tpl := range insightTemplates {
		tens := int(math.Floor(rng.Float64() * 6))
		out = append(out, models.PredictionInsight{
			ID:         i + 1,
			Location:   location,
			Time:       fmt.Sprintf("%d:%d0", tpl.hour, tens),
			Prediction: fmt.Sprintf(tpl.text, location),
			Confidence: tpl.confidence,
		})
	}
	return out
}

// Predictions builds the predictions payload. An empty range fills both
// series. Now and Today mark the reference lines on each chart.
func Predictions(location string, now time.Time, r TrendRange) models.Predictions {
	p := models.Predictions{
		Location: location,
		Insights: PredictionInsights(location),
		Now:      fmt.Sprintf("%d:%02d", now.Hour(), now.Minute()),
		Today:    Weekdays[now.Weekday()],
	}
	if r == "" || r == RangeHourly {
		p.Hourly = HourlyPredictions(location, now)
	}
	if r == "" || r == RangeDaily {
		p.Daily = DailyPredictions(location, now.Weekday())
	}
	return p
}
