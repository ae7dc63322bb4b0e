// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package live

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/tomtom215/crowdanalyzer/internal/crowd"
	"github.com/tomtom215/crowdanalyzer/internal/events"
	"github.com/tomtom215/crowdanalyzer/internal/logging"
	"github.com/tomtom215/crowdanalyzer/internal/metrics"
	"github.com/tomtom215/crowdanalyzer/internal/models"
)

// NotificationProbability is the per-tick, per-location chance of a random
// notification.
const NotificationProbability = 0.2

// DefaultInterval is the tick interval when none is configured.
const DefaultInterval = time.Minute

// Ticker advances every tracked location once per interval and publishes
// the result.
type Ticker struct {
	tracker   *Tracker
	publisher events.Publisher
	interval  time.Duration
	rnd       crowd.Rand
	now       func() time.Time
}

// NewTicker creates a ticker. A non-positive interval uses DefaultInterval.
func NewTicker(tracker *Tracker, publisher events.Publisher, interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	now := time.Now()
	return &Ticker{
		tracker:   tracker,
		publisher: publisher,
		interval:  interval,
		rnd:       rand.New(rand.NewPCG(uint64(now.UnixNano()), uint64(now.Unix()))),
		now:       time.Now,
	}
}

// Serve ticks until ctx is canceled. It satisfies suture.Service.
func (t *Ticker) Serve(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	logging.Info().Dur("interval", t.interval).Msg("live density ticker started")
	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("live density ticker stopped")
			return ctx.Err()
		case <-ticker.C:
			t.Tick()
		}
	}
}

// String names the service in supervisor logs.
func (t *Ticker) String() string {
	return "live-ticker"
}

// Tick advances each tracked location one step. It is not safe to call
// concurrently with itself.
func (t *Ticker) Tick() {
	now := t.now().UTC()
	if n := t.tracker.Prune(); n > 0 {
		logging.Debug().Int("expired", n).Msg("idle live locations dropped")
	}
	for _, location := range t.tracker.Locations() {
		t.step(location, now)
	}
}

func (t *Ticker) step(location string, now time.Time) {
	previous := t.tracker.Current(location)
	next, trend, alert := crowd.LiveStep(previous, t.rnd)
	t.tracker.set(location, next)
	chart := crowd.NextDensity(t.tracker.chartValue(location), t.rnd)
	t.tracker.setChart(location, chart)

	t.publish(events.TopicDensityTick, location, models.DensityTick{
		Location:  location,
		Value:     next,
		Previous:  previous,
		Trend:     trend,
		Level:     crowd.DensityLevel(next),
		Alert:     alert,
		Point:     models.DensityPoint{Time: now.Format("15:04"), Value: chart},
		Timestamp: now,
	})

	if alert {
		metrics.DensityAlerts.Inc()
		t.publish(events.TopicNotification, location, crowd.HighDensityAlert(location, now))
	}
	if t.rnd.Float64() < NotificationProbability {
		t.publish(events.TopicNotification, location, crowd.NewNotification(location, t.rnd, now))
	}
}

func (t *Ticker) publish(topic, location string, payload interface{}) {
	if err := t.publisher.Publish(topic, location, payload); err != nil {
		logging.Warn().Err(err).Str("topic", topic).Str("location", location).Msg("failed to publish live event")
	}
}
