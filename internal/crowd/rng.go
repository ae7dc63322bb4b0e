// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package crowd

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf16"
)

// Rand is the single method every generator draws from. Both *Source and
// *rand.Rand from math/rand/v2 satisfy it.
type Rand interface {
	Float64() float64
}

// Seed sums the UTF-16 code units of a location name.
func Seed(location string) float64 {
	var sum float64
	for _, u := range utf16.Encode([]rune(location)) {
		sum += float64(u)
	}
	return sum
}

// Source is the sinusoidal sequence used by every dashboard widget.
// Each call returns frac(sin(seed) * 10000) and advances seed by one.
// A Source is not safe for concurrent use.
type Source struct {
	seed float64
}

// NewSource starts a sequence keyed by the location name.
func NewSource(location string) *Source {
	return &Source{seed: Seed(location)}
}

// NewSourceAt starts a sequence keyed by the location and the wall-clock
// minute, so values stay stable within a minute and move between minutes.
func NewSourceAt(location string, now time.Time) *Source {
	return &Source{seed: Seed(location) + float64(now.Unix()/60)}
}

// Float64 returns the next value in [0, 1).
func (s *Source) Float64() float64 {
	v := noise(s.seed)
	s.seed++
	return v
}

// noise is the stateless form: frac(sin(x) * 10000).
func noise(x float64) float64 {
	v := math.Sin(x) * 10000
	return v - math.Floor(v)
}

// jsRound rounds half up, matching the dashboard's charting values.
// math.Round rounds half away from zero, which differs for negatives.
func jsRound(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clamp(lo, hi, v float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(lo, hi, v int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Slug lower-cases a location name and replaces each whitespace run with "-".
func Slug(location string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(location), "-")
}
