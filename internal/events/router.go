// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/crowdanalyzer/internal/metrics"
)

// Forwarder receives every bus event, typically the WebSocket hub.
type Forwarder interface {
	Forward(topic, location string, payload []byte)
}

// RouterConfig holds configuration for the event router.
type RouterConfig struct {
	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration
}

// DefaultRouterConfig returns production defaults for the Router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout: 10 * time.Second,
	}
}

// Router wraps a watermill Router that forwards bus events to a Forwarder.
type Router struct {
	router *message.Router
	bus    *Bus
}

// NewRouter creates a router with one forwarding handler per topic.
// Additional consumers may be added with AddConsumerHandler before Run.
func NewRouter(cfg RouterConfig, bus *Bus, forwarder Forwarder, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}
	wmRouter.AddMiddleware(middleware.Recoverer)

	r := &Router{router: wmRouter, bus: bus}
	for _, topic := range Topics {
		r.AddConsumerHandler("forward-"+topic, topic, forwardHandler(topic, forwarder))
	}
	return r, nil
}

func forwardHandler(topic string, forwarder Forwarder) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		forwarder.Forward(topic, msg.Metadata.Get(MetadataLocation), msg.Payload)
		metrics.EventsForwarded.WithLabelValues(topic).Inc()
		return nil
	}
}

// AddConsumerHandler subscribes handler to topic on the bus.
func (r *Router) AddConsumerHandler(name, topic string, handler message.NoPublishHandlerFunc) {
	r.router.AddConsumerHandler(name, topic, r.bus.Subscriber(), handler)
}

// Run starts the router and blocks until ctx is canceled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running returns a channel that closes when the router is running.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// Close gracefully stops the router.
func (r *Router) Close() error {
	return r.router.Close()
}

// IsRunning reports whether the router is processing messages.
func (r *Router) IsRunning() bool {
	return r.router.IsRunning()
}
