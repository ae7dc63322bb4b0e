// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/crowdanalyzer/internal/metrics"
)

// Topics published on the bus.
const (
	TopicAnalysisCreated = "analysis.created"
	TopicSensorUpdated   = "sensor.updated"
	TopicDensityTick     = "density.tick"
	TopicNotification    = "notification"
)

// Topics lists every topic forwarded to WebSocket clients.
var Topics = []string{
	TopicAnalysisCreated,
	TopicSensorUpdated,
	TopicDensityTick,
	TopicNotification,
}

// Metadata keys set on every message.
const (
	MetadataTopic    = "topic"
	MetadataLocation = "location"
)

// Publisher is the narrow publishing interface handed to producers.
type Publisher interface {
	Publish(topic, location string, payload interface{}) error
}

// Bus is an in-process publish/subscribe bus backed by a watermill GoChannel.
// Messages are not persisted; subscribers only see messages published after
// they subscribe.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates an in-process bus.
func NewBus(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, logger),
	}
}

// Publish encodes payload as JSON and publishes it on topic. location may be
// empty for events not tied to a place.
func (b *Bus) Publish(topic, location string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(MetadataTopic, topic)
	if location != "" {
		msg.Metadata.Set(MetadataLocation, location)
	}

	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	metrics.EventsPublished.WithLabelValues(topic).Inc()
	return nil
}

// Subscriber exposes the bus to a watermill router.
func (b *Bus) Subscriber() message.Subscriber {
	return b.pubsub
}

// Close closes every subscription.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
