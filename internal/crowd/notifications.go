// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package crowd

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/crowdanalyzer/internal/models"
)

// NotificationChance is the per-tick probability of a random notification.
const NotificationChance = 0.2

var notificationTypes = []models.NotificationType{
	models.NotifyAlert,
	models.NotifyAnomaly,
	models.NotifyPrediction,
	models.NotifySystem,
}

var notificationTitles = map[models.NotificationType][]string{
	models.NotifyAlert:      {"High density detected", "Critical crowd level", "Density threshold exceeded"},
	models.NotifyAnomaly:    {"Unusual dispersal pattern", "Sudden movement detected", "Anomaly detected"},
	models.NotifyPrediction: {"High crowd predicted", "Peak density expected", "Traffic surge predicted"},
	models.NotifySystem:     {"Sensor recalibrated", "System update completed", "Connection restored"},
}

func pick(rnd Rand, n int) int {
	return int(math.Floor(rnd.Float64() * float64(n)))
}

// NewNotification draws a random notification for location.
func NewNotification(location string, rnd Rand, now time.Time) models.Notification {
	typ := notificationTypes[pick(rnd, len(notificationTypes))]
	titles := notificationTitles[typ]
	title := titles[pick(rnd, len(titles))]
	return models.Notification{
		ID:          uuid.NewString(),
		Location:    location,
		Type:        typ,
		Title:       title,
		Description: fmt.Sprintf("%s at %s", title, location),
		Timestamp:   now,
	}
}

// HighDensityAlert is raised when a live step crosses HighDensityThreshold.
func HighDensityAlert(location string, now time.Time) models.Notification {
	return models.Notification{
		ID:          uuid.NewString(),
		Location:    location,
		Type:        models.NotifyAlert,
		Title:       "High Density Alert",
		Description: fmt.Sprintf("Crowd density at %s has exceeded %d%%", location, HighDensityThreshold),
		Timestamp:   now,
	}
}

// TimeAgo labels how long before now t was: "Just now" up to ten seconds,
// then seconds, minutes, hours or days.
func TimeAgo(t, now time.Time) string {
	secs := int(now.Sub(t) / time.Second)
	switch {
	case secs >= 86400:
		return plural(secs/86400, "day")
	case secs >= 3600:
		return plural(secs/3600, "hour")
	case secs >= 60:
		return plural(secs/60, "minute")
	case secs > 10:
		return plural(secs, "second")
	default:
		return "Just now"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
