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

// Weekdays are the short day names indexed by time.Weekday.
var Weekdays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

// hourlyBase is the typical density curve over a day: morning and evening
// rush ramps with a midday plateau.
func hourlyBase(hour int) float64 {
	switch {
	case hour >= 7 && hour <= 10:
		return float64(60 + (hour-7)*10)
	case hour >= 11 && hour <= 15:
		return float64(80 - (hour-11)*5)
	case hour >= 16 && hour <= 19:
		return float64(60 + (hour-16)*10)
	default:
		return 30 + math.Sin(float64(hour)/3)*10
	}
}

// DailyTrend returns 24 hourly points ending at the hour of now.
func DailyTrend(location string, now time.Time) []models.TrendPoint {
	seed := Seed(location)
	current := now.Hour()
	points := make([]models.TrendPoint, 0, 24)
	for i := 0; i < 24; i++ {
		hour := (current - 23 + i + 24) % 24
		rf := noise(seed+float64(i))*15 - 7.5
		points = append(points, models.TrendPoint{
			Label: fmt.Sprintf("%02d:00", hour),
			Value: clampInt(0, 100, jsRound(hourlyBase(hour)+rf)),
		})
	}
	return points
}

// WeeklyTrend returns seven daily points ending with today.
func WeeklyTrend(location string, today time.Weekday) []models.TrendPoint {
	seed := Seed(location)
	start := (int(today) + 1) % 7
	points := make([]models.TrendPoint, 0, 7)
	for i := 0; i < 7; i++ {
		day := time.Weekday((start + i) % 7)
		base := 70.0
		if isWeekend(day) {
			base = 50
		}
		rf := noise(seed+float64(i))*20 - 10
		points = append(points, models.TrendPoint{
			Label: Weekdays[day],
			Value: clampInt(0, 100, jsRound(base+rf)),
		})
	}
	return points
}

// TrendRange selects which trend series a request wants.
type TrendRange string

const (
	RangeDaily  TrendRange = "daily"
	RangeWeekly TrendRange = "weekly"
	RangeHourly TrendRange = "hourly"
)

// Trends builds the trend payload. An empty range fills both series.
func Trends(location string, now time.Time, r TrendRange) models.Trends {
	t := models.Trends{Location: location}
	if r == "" || r == RangeDaily {
		t.Daily = DailyTrend(location, now)
	}
	if r == "" || r == RangeWeekly {
		t.Weekly = WeeklyTrend(location, now.Weekday())
	}
	return t
}
