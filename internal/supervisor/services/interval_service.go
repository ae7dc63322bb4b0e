// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package services

import (
	"context"
	"time"
)

// IntervalService calls a function on a fixed interval until its context
// is canceled. It is used for housekeeping such as expiring OAuth states.
type IntervalService struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context)
}

// NewIntervalService creates a periodic service. A non-positive interval
// defaults to one minute.
func NewIntervalService(name string, interval time.Duration, fn func(ctx context.Context)) *IntervalService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &IntervalService{name: name, interval: interval, fn: fn}
}

// Serve implements suture.Service.
func (s *IntervalService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.fn(ctx)
		}
	}
}

func (s *IntervalService) String() string {
	return s.name
}
