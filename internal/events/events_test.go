// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package events

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/crowdanalyzer/internal/models"
)

type forwarded struct {
	topic    string
	location string
	payload  []byte
}

type chanForwarder chan forwarded

func (c chanForwarder) Forward(topic, location string, payload []byte) {
	c <- forwarded{topic: topic, location: location, payload: payload}
}

func startRouter(t *testing.T, bus *Bus, fwd Forwarder, extra func(*Router)) {
	t.Helper()
	router, err := NewRouter(DefaultRouterConfig(), bus, fwd, nil)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	if extra != nil {
		extra(router)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- router.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = bus.Close()
	})

	select {
	case <-router.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}
	if !router.IsRunning() {
		t.Error("IsRunning = false after Running closed")
	}
}

func TestRouter_ForwardsEveryTopic(t *testing.T) {
	t.Parallel()

	bus := NewBus(nil)
	fwd := make(chanForwarder, len(Topics))
	startRouter(t, bus, fwd, nil)

	for _, topic := range Topics {
		if err := bus.Publish(topic, "Uppal", map[string]string{"topic": topic}); err != nil {
			t.Fatalf("Publish(%s): %v", topic, err)
		}
	}

	seen := map[string]bool{}
	for range Topics {
		select {
		case f := <-fwd:
			if f.location != "Uppal" {
				t.Errorf("%s location = %q", f.topic, f.location)
			}
			var body map[string]string
			if err := json.Unmarshal(f.payload, &body); err != nil || body["topic"] != f.topic {
				t.Errorf("%s payload = %s (%v)", f.topic, f.payload, err)
			}
			seen[f.topic] = true
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out, seen %v", seen)
		}
	}
	if len(seen) != len(Topics) {
		t.Errorf("seen = %v", seen)
	}
}

func TestRouter_AdditionalConsumer(t *testing.T) {
	t.Parallel()

	bus := NewBus(nil)
	fwd := make(chanForwarder, 4)
	got := make(chan models.Notification, 1)
	startRouter(t, bus, fwd, func(r *Router) {
		r.AddConsumerHandler("feed", TopicNotification, func(msg *message.Message) error {
			var n models.Notification
			if err := json.Unmarshal(msg.Payload, &n); err != nil {
				return err
			}
			got <- n
			return nil
		})
	})

	want := models.Notification{ID: "n1", Location: "Ameerpet", Type: models.NotifyAlert, Title: "High Density Alert"}
	if err := bus.Publish(TopicNotification, want.Location, want); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case n := <-got:
		if n.ID != want.ID || n.Title != want.Title {
			t.Errorf("consumer got %+v", n)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("consumer not called")
	}
	select {
	case f := <-fwd:
		if f.topic != TopicNotification {
			t.Errorf("forwarded topic = %s", f.topic)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("forwarder not called")
	}
}

func TestPublish_MarshalError(t *testing.T) {
	t.Parallel()

	bus := NewBus(nil)
	defer bus.Close()
	if err := bus.Publish(TopicDensityTick, "", make(chan int)); err == nil {
		t.Error("expected marshal error")
	}
}
