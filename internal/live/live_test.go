// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package live

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/crowdanalyzer/internal/crowd"
	"github.com/tomtom215/crowdanalyzer/internal/events"
	"github.com/tomtom215/crowdanalyzer/internal/models"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

// constRand returns the same value forever.
type constRand float64

func (c constRand) Float64() float64 { return float64(c) }

// seqRand cycles through values.
type seqRand struct {
	values []float64
	i      int
}

func (s *seqRand) Float64() float64 {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v
}

type published struct {
	topic    string
	location string
	payload  interface{}
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *recordingPublisher) Publish(topic, location string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{topic, location, payload})
	return p.err
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.msgs))
	for i, m := range p.msgs {
		out[i] = m.topic
	}
	return out
}

func newTestTicker(tracker *Tracker, pub events.Publisher, rnd crowd.Rand) *Ticker {
	t := NewTicker(tracker, pub, time.Minute)
	t.rnd = rnd
	t.now = func() time.Time { return testNow }
	return t
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	r := NewRegistry(tracker)
	r.now = func() time.Time { return testNow }

	s, err := r.Register("u1", "  Uppal ")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !strings.HasPrefix(s.ConnectionID, ConnectionIDPrefix) || len(s.ConnectionID) != len(ConnectionIDPrefix)+8 {
		t.Errorf("ConnectionID = %q", s.ConnectionID)
	}
	for _, c := range strings.TrimPrefix(s.ConnectionID, ConnectionIDPrefix) {
		if !strings.ContainsRune(base36, c) {
			t.Errorf("non base36 character %q", c)
		}
	}
	if s.Location != "Uppal" || !s.StartedAt.Equal(testNow) {
		t.Errorf("session = %+v", s)
	}
	if got := tracker.Locations(); len(got) != 1 || got[0] != "Uppal" {
		t.Errorf("tracked = %v", got)
	}

	if _, err := r.Register("u1", " "); err == nil {
		t.Error("blank location accepted")
	}

	got, err := r.Get(s.ConnectionID)
	if err != nil || got != s {
		t.Errorf("Get = %+v, %v", got, err)
	}
	if _, err := r.Register("u2", "Miyapur"); err != nil {
		t.Fatal(err)
	}
	if n := len(r.List("u1")); n != 1 {
		t.Errorf("List(u1) = %d, want 1", n)
	}
	if n := len(r.List("")); n != 2 {
		t.Errorf("List() = %d, want 2", n)
	}

	if err := r.Remove(s.ConnectionID); err != nil {
		t.Errorf("Remove: %v", err)
	}
	if err := r.Remove(s.ConnectionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second Remove = %v", err)
	}
	if _, err := r.Get(s.ConnectionID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get after Remove = %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d", r.Len())
	}
}

func TestNewConnectionID_Unique(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id, err := newConnectionID()
		if err != nil {
			t.Fatal(err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestTracker(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	if got := tr.Current("Nowhere"); got != crowd.DefaultDensity {
		t.Errorf("untracked Current = %d", got)
	}
	tr.Track("Uppal")
	tr.set("Uppal", 77)
	tr.Track("Uppal")
	if got := tr.Current("Uppal"); got != 77 {
		t.Errorf("re-Track reset value to %d", got)
	}
	tr.Track("Ameerpet")
	if got := tr.Locations(); fmt.Sprint(got) != "[Ameerpet Uppal]" {
		t.Errorf("Locations = %v", got)
	}
}

func TestTracker_KnownLocations(t *testing.T) {
	t.Parallel()

	tr := NewTracker(WithKnownLocations(func(name string) bool { return name == "Uppal" }))
	for _, name := range []string{"junk", "", "   ", "uppal"} {
		if tr.Track(name) {
			t.Errorf("Track(%q) accepted", name)
		}
	}
	if !tr.Track(" Uppal ") {
		t.Error("Track(Uppal) rejected")
	}
	if got := tr.Locations(); fmt.Sprint(got) != "[Uppal]" {
		t.Errorf("Locations = %v", got)
	}
}

func TestTracker_EvictsLeastRecent(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	tr := NewTracker(WithLimits(2, time.Hour))
	tr.now = func() time.Time { return clock }

	tr.Track("A")
	clock = clock.Add(time.Minute)
	tr.Track("B")
	clock = clock.Add(time.Minute)
	tr.Track("A")
	clock = clock.Add(time.Minute)
	tr.Track("C")

	if got := tr.Locations(); fmt.Sprint(got) != "[A C]" {
		t.Errorf("Locations = %v, want [A C]", got)
	}
	if tr.Len() != 2 {
		t.Errorf("Len = %d, want 2", tr.Len())
	}
}

func TestTracker_Prune(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	tr := NewTracker(WithLimits(0, 10*time.Minute))
	tr.now = func() time.Time { return clock }

	tr.Track("Old")
	clock = clock.Add(8 * time.Minute)
	tr.Track("Fresh")
	clock = clock.Add(5 * time.Minute)

	if n := tr.Prune(); n != 1 {
		t.Errorf("Prune = %d, want 1", n)
	}
	if got := tr.Locations(); fmt.Sprint(got) != "[Fresh]" {
		t.Errorf("Locations = %v", got)
	}
	tr.set("Old", 90)
	if tr.Len() != 1 {
		t.Error("set re-added a pruned location")
	}
}

func TestFeed_Limit(t *testing.T) {
	t.Parallel()

	f := NewFeed()
	for i := 0; i < FeedLimit+5; i++ {
		f.Add(models.Notification{ID: fmt.Sprint(i), Location: "Uppal"})
	}
	f.Add(models.Notification{ID: "other", Location: "Miyapur"})

	got := f.Recent("Uppal")
	if len(got) != FeedLimit {
		t.Fatalf("len = %d, want %d", len(got), FeedLimit)
	}
	if got[0].ID != "14" || got[FeedLimit-1].ID != "5" {
		t.Errorf("order = %s..%s, want 14..5", got[0].ID, got[FeedLimit-1].ID)
	}
	got[0].ID = "mutated"
	if f.Recent("Uppal")[0].ID != "14" {
		t.Error("Recent returned internal slice")
	}
	if len(f.Recent("Nowhere")) != 0 {
		t.Error("unknown location not empty")
	}
}

func TestFeed_Handle(t *testing.T) {
	t.Parallel()

	f := NewFeed()
	payload, _ := json.Marshal(models.Notification{ID: "n1", Location: "Uppal"})
	if err := f.Handle(message.NewMessage("m1", payload)); err != nil {
		t.Fatal(err)
	}
	if err := f.Handle(message.NewMessage("m2", []byte("not json"))); err != nil {
		t.Errorf("bad payload should be acknowledged, got %v", err)
	}
	if got := f.Recent("Uppal"); len(got) != 1 || got[0].ID != "n1" {
		t.Errorf("Recent = %+v", got)
	}
}

func TestFeed_ReadState(t *testing.T) {
	t.Parallel()

	f := NewFeed()
	f.Add(models.Notification{ID: "old", Location: "Uppal", Timestamp: testNow.Add(-2 * time.Hour)})
	f.Add(models.Notification{ID: "new", Location: "Uppal", Timestamp: testNow.Add(-5 * time.Second)})
	f.Add(models.Notification{ID: "far", Location: "Miyapur", Timestamp: testNow})

	got, unread := f.ForUser("Uppal", "alice", testNow)
	if unread != 2 || len(got) != 2 || got[0].Read || got[1].Read {
		t.Fatalf("fresh feed = %+v unread %d", got, unread)
	}
	if got[0].Age != "Just now" || got[1].Age != "2 hours ago" {
		t.Errorf("ages = %q %q", got[0].Age, got[1].Age)
	}

	if loc, ok := f.MarkRead("alice", "old"); !ok || loc != "Uppal" {
		t.Errorf("MarkRead(old) = %q %v", loc, ok)
	}
	if _, ok := f.MarkRead("alice", "missing"); ok {
		t.Error("MarkRead(missing) = true")
	}
	got, unread = f.ForUser("Uppal", "alice", testNow)
	if unread != 1 || got[0].Read || !got[1].Read {
		t.Errorf("after MarkRead = %+v unread %d", got, unread)
	}
	if _, unread := f.ForUser("Uppal", "bob", testNow); unread != 2 {
		t.Errorf("bob unread = %d, want 2", unread)
	}
	if f.Recent("Uppal")[1].Read {
		t.Error("MarkRead changed the shared feed")
	}

	if n := f.MarkAllRead("alice", "Uppal"); n != 1 {
		t.Errorf("MarkAllRead = %d, want 1", n)
	}
	if _, unread := f.ForUser("Uppal", "alice", testNow); unread != 0 {
		t.Errorf("unread after MarkAllRead = %d", unread)
	}
	if _, unread := f.ForUser("Miyapur", "alice", testNow); unread != 1 {
		t.Errorf("other location unread = %d, want 1", unread)
	}
}

func TestFeed_ForgetsDroppedReadState(t *testing.T) {
	t.Parallel()

	f := NewFeed()
	f.Add(models.Notification{ID: "first", Location: "Uppal"})
	f.MarkRead("alice", "first")
	for i := 0; i < FeedLimit; i++ {
		f.Add(models.Notification{ID: fmt.Sprint(i), Location: "Uppal"})
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.read) != 0 {
		t.Errorf("read state = %v, want empty once the notification dropped", f.read)
	}
}

func TestTicker_Step(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	tracker.Track("Uppal")
	pub := &recordingPublisher{}

	// 0.99 moves +3 with trend +14, walks the chart +3 and skips the random
	// notification.
	tk := newTestTicker(tracker, pub, constRand(0.99))
	tk.Tick()

	if got := tracker.Current("Uppal"); got != crowd.DefaultDensity+3 {
		t.Errorf("density = %d, want %d", got, crowd.DefaultDensity+3)
	}
	if got := pub.topics(); len(got) != 1 || got[0] != events.TopicDensityTick {
		t.Fatalf("topics = %v", got)
	}
	tick := pub.msgs[0].payload.(models.DensityTick)
	if tick.Previous != crowd.DefaultDensity || tick.Trend != 14 || tick.Level != models.DensityMedium || tick.Alert {
		t.Errorf("tick = %+v", tick)
	}
	if pub.msgs[0].location != "Uppal" || !tick.Timestamp.Equal(testNow) {
		t.Errorf("tick location/time = %q %v", pub.msgs[0].location, tick.Timestamp)
	}
	if tick.Point != (models.DensityPoint{Time: "12:00", Value: crowd.DefaultDensity + 3}) {
		t.Errorf("chart point = %+v", tick.Point)
	}
}

func TestTicker_ChartWalk(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	tracker.Track("Uppal")
	pub := &recordingPublisher{}

	// step, trend, chart, probability: the chart moves -3 per tick while
	// the headline holds.
	tk := newTestTicker(tracker, pub, &seqRand{values: []float64{0.5, 0.5, 0.0, 0.9}})
	tk.Tick()
	tk.Tick()

	var points []int
	for _, m := range pub.msgs {
		if tick, ok := m.payload.(models.DensityTick); ok {
			points = append(points, tick.Point.Value)
		}
	}
	if fmt.Sprint(points) != fmt.Sprint([]int{crowd.DefaultDensity - 3, crowd.DefaultDensity - 6}) {
		t.Errorf("chart points = %v", points)
	}
	if got := tracker.Current("Uppal"); got != crowd.DefaultDensity {
		t.Errorf("headline = %d, want %d", got, crowd.DefaultDensity)
	}
}

func TestTicker_Alert(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	tracker.Track("Uppal")
	tracker.set("Uppal", crowd.HighDensityThreshold)
	pub := &recordingPublisher{}

	tk := newTestTicker(tracker, pub, constRand(0.99))
	tk.Tick()

	got := pub.topics()
	if len(got) != 2 || got[1] != events.TopicNotification {
		t.Fatalf("topics = %v", got)
	}
	n := pub.msgs[1].payload.(models.Notification)
	if n.Title != "High Density Alert" || n.Type != models.NotifyAlert {
		t.Errorf("alert = %+v", n)
	}
}

func TestTicker_RandomNotification(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	tracker.Track("Uppal")
	pub := &recordingPublisher{}

	// step, trend, chart, probability draw, then type and title.
	tk := newTestTicker(tracker, pub, &seqRand{values: []float64{0.5, 0.5, 0.5, 0.1, 0, 0}})
	tk.Tick()

	got := pub.topics()
	if len(got) != 2 || got[1] != events.TopicNotification {
		t.Fatalf("topics = %v", got)
	}
	if n := pub.msgs[1].payload.(models.Notification); n.Location != "Uppal" {
		t.Errorf("notification = %+v", n)
	}
}

func TestTicker_PublishErrorDoesNotStop(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	tracker.Track("A")
	tracker.Track("B")
	pub := &recordingPublisher{err: errors.New("closed")}

	newTestTicker(tracker, pub, constRand(0.99)).Tick()
	if n := len(pub.topics()); n != 2 {
		t.Errorf("publish attempts = %d, want 2", n)
	}
}

func TestTicker_Serve(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	tracker.Track("Uppal")
	pub := &recordingPublisher{}
	tk := NewTicker(tracker, pub, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tk.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for len(pub.topics()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v", err)
	}
	if len(pub.topics()) == 0 {
		t.Error("no ticks published")
	}
	if tk.String() != "live-ticker" {
		t.Errorf("String = %q", tk.String())
	}
}

func TestNewTicker_DefaultInterval(t *testing.T) {
	t.Parallel()
	if tk := NewTicker(NewTracker(), &recordingPublisher{}, 0); tk.interval != DefaultInterval {
		t.Errorf("interval = %v", tk.interval)
	}
}
