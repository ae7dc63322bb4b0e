// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package live

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/crowdanalyzer/internal/crowd"
	"github.com/tomtom215/crowdanalyzer/internal/metrics"
)

const (
	// DefaultMaxTracked bounds the number of locations advanced per tick.
	DefaultMaxTracked = 256

	// DefaultIdleTTL is how long a location stays tracked after it was
	// last requested.
	DefaultIdleTTL = time.Hour
)

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithKnownLocations restricts tracking to names accepted by known.
func WithKnownLocations(known func(string) bool) TrackerOption {
	return func(t *Tracker) {
		t.known = known
	}
}

// WithLimits sets the maximum tracked locations and the idle expiry.
// Non-positive values keep the defaults.
func WithLimits(maxTracked int, idleTTL time.Duration) TrackerOption {
	return func(t *Tracker) {
		if maxTracked > 0 {
			t.max = maxTracked
		}
		if idleTTL > 0 {
			t.idle = idleTTL
		}
	}
}

type trackedLocation struct {
	value    int
	chart    int
	lastSeen time.Time
}

// Tracker holds the headline density of every location the ticker advances.
// When full, tracking a new location evicts the least recently requested.
type Tracker struct {
	mu     sync.RWMutex
	values map[string]*trackedLocation
	known  func(string) bool
	max    int
	idle   time.Duration
	now    func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		values: make(map[string]*trackedLocation),
		max:    DefaultMaxTracked,
		idle:   DefaultIdleTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track starts advancing location at crowd.DefaultDensity and reports
// whether it is tracked. Tracking an already tracked location keeps its
// value and refreshes its expiry. Unknown locations are ignored.
func (t *Tracker) Track(location string) bool {
	location = strings.TrimSpace(location)
	if location == "" {
		return false
	}
	if t.touch(location) {
		return true
	}
	if t.known != nil && !t.known(location) {
		return false
	}

	t.mu.Lock()
	now := t.now()
	if entry, ok := t.values[location]; ok {
		entry.lastSeen = now
	} else {
		if len(t.values) >= t.max {
			t.evictOldestLocked()
		}
		t.values[location] = &trackedLocation{value: crowd.DefaultDensity, chart: crowd.DefaultDensity, lastSeen: now}
	}
	n := len(t.values)
	t.mu.Unlock()
	metrics.LiveTrackedLocations.Set(float64(n))
	return true
}

func (t *Tracker) touch(location string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.values[location]
	if ok {
		entry.lastSeen = t.now()
	}
	return ok
}

func (t *Tracker) evictOldestLocked() {
	var oldest string
	var oldestSeen time.Time
	for loc, entry := range t.values {
		if oldest == "" || entry.lastSeen.Before(oldestSeen) {
			oldest, oldestSeen = loc, entry.lastSeen
		}
	}
	delete(t.values, oldest)
}

// Prune drops locations not requested within the idle expiry and returns
// how many were removed.
func (t *Tracker) Prune() int {
	t.mu.Lock()
	cutoff := t.now().Add(-t.idle)
	removed := 0
	for loc, entry := range t.values {
		if entry.lastSeen.Before(cutoff) {
			delete(t.values, loc)
			removed++
		}
	}
	n := len(t.values)
	t.mu.Unlock()
	if removed > 0 {
		metrics.LiveTrackedLocations.Set(float64(n))
	}
	return removed
}

// Current returns the density of location, or crowd.DefaultDensity when it
// is not tracked.
func (t *Tracker) Current(location string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if entry, ok := t.values[location]; ok {
		return entry.value
	}
	return crowd.DefaultDensity
}

// chartValue returns the latest chart point of location.
func (t *Tracker) chartValue(location string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if entry, ok := t.values[location]; ok {
		return entry.chart
	}
	return crowd.DefaultDensity
}

// setChart records the latest chart point of a tracked location.
func (t *Tracker) setChart(location string, value int) {
	t.mu.Lock()
	if entry, ok := t.values[location]; ok {
		entry.chart = value
	}
	t.mu.Unlock()
}

// set updates a tracked location. Locations evicted since the caller read
// them are not re-added.
func (t *Tracker) set(location string, value int) {
	t.mu.Lock()
	if entry, ok := t.values[location]; ok {
		entry.value = value
	}
	t.mu.Unlock()
}

// Len returns the number of tracked locations.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}

// Locations returns the tracked locations in name order.
func (t *Tracker) Locations() []string {
	t.mu.RLock()
	out := make([]string, 0, len(t.values))
	for loc := range t.values {
		out = append(out, loc)
	}
	t.mu.RUnlock()
	sort.Strings(out)
	return out
}
