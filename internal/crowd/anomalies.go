// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package crowd

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/crowdanalyzer/internal/models"
)

type anomalyKind struct {
	name string
	desc string // format with the location name
}

var anomalyKinds = []anomalyKind{
	{"Sudden Surge", "Unexpected increase in crowd density at %s"},
	{"Unusual Dispersal", "Rapid crowd dispersal detected at %s"},
	{"Abnormal Pattern", "Crowd movement pattern deviates from historical data at %s"},
	{"Density Fluctuation", "Unusual fluctuations in crowd density at %s"},
	{"Movement Anomaly", "Unexpected movement pattern detected at %s"},
	{"Rapid Influx", "Sudden influx of people at %s"},
}

var severities = []models.Severity{models.SeverityHigh, models.SeverityMedium, models.SeverityLow}

// Anomalies generates 3 to 6 anomalies within the two hours before now,
// newest first. severity filters the result; "" or "all" keeps everything.
func Anomalies(location string, now time.Time, severity string) []models.Anomaly {
	rng := NewSource(location)
	count := int(math.Floor(rng.Float64()*4)) + 3
	slug := Slug(location)

	out := make([]models.Anomaly, 0, count)
	for i := 0; i < count; i++ {
		kind := anomalyKinds[int(math.Floor(rng.Float64()*float64(len(anomalyKinds))))]
		sev := severities[int(math.Floor(rng.Float64()*float64(len(severities))))]
		minutesAgo := int(math.Floor(rng.Float64() * 120))

		out = append(out, models.Anomaly{
			ID:          fmt.Sprintf("%s-anomaly-%d", slug, i+1),
			Location:    location,
			Type:        kind.name,
			Description: fmt.Sprintf(kind.desc, location),
			Severity:    sev,
			Timestamp:   now.Add(-time.Duration(minutesAgo) * time.Minute),
			Time:        RelativeTime(minutesAgo),
		})
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Timestamp.After(out[b].Timestamp)
	})

	if severity == "" || severity == "all" {
		return out
	}
	filtered := out[:0]
	for _, a := range out {
		if string(a.Severity) == severity {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// RelativeTime renders a minute offset the way the anomaly feed shows it.
func RelativeTime(minutesAgo int) string {
	switch {
	case minutesAgo <= 0:
		return "Just now"
	case minutesAgo == 1:
		return "1 minute ago"
	case minutesAgo < 60:
		return fmt.Sprintf("%d minutes ago", minutesAgo)
	case minutesAgo < 120:
		return "1 hour ago"
	default:
		return fmt.Sprintf("%d hours ago", minutesAgo/60)
	}
}
