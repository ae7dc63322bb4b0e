// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package services

import (
	"context"
	"fmt"
)

// EventRouter is satisfied by *events.Router.
type EventRouter interface {
	Run(ctx context.Context) error
}

// EventRouterService runs the watermill event router as a supervised
// service. Run returns once every handler has stopped after ctx is
// canceled.
type EventRouterService struct {
	router EventRouter
	name   string
}

// NewEventRouterService creates a new event router service wrapper.
func NewEventRouterService(router EventRouter) *EventRouterService {
	return &EventRouterService{
		router: router,
		name:   "event-router",
	}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	if err := s.router.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("event router failed: %w", err)
	}
	return ctx.Err()
}

func (s *EventRouterService) String() string {
	return s.name
}
