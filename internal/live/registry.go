// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package live

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/crowdanalyzer/internal/metrics"
)

// ConnectionIDPrefix starts every live session id.
const ConnectionIDPrefix = "live-"

const (
	base36      = "0123456789abcdefghijklmnopqrstuvwxyz"
	idRandChars = 8
)

// ErrSessionNotFound is returned for an unknown connection id.
var ErrSessionNotFound = errors.New("live session not found")

// Session is a registered live stream.
type Session struct {
	ConnectionID string    `json:"connectionId"`
	UserID       string    `json:"userId"`
	Location     string    `json:"location"`
	StartedAt    time.Time `json:"startedAt"`
}

// Registry holds live sessions keyed by connection id. Registering a
// session starts tracking its location.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
	tracker  *Tracker
	now      func() time.Time
}

// NewRegistry creates a registry that tracks session locations in tracker.
func NewRegistry(tracker *Tracker) *Registry {
	return &Registry{
		sessions: make(map[string]Session),
		tracker:  tracker,
		now:      time.Now,
	}
}

// Register opens a session for userID at location.
func (r *Registry) Register(userID, location string) (Session, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return Session{}, errors.New("location is required")
	}

	id, err := newConnectionID()
	if err != nil {
		return Session{}, err
	}
	s := Session{
		ConnectionID: id,
		UserID:       userID,
		Location:     location,
		StartedAt:    r.now().UTC(),
	}

	r.mu.Lock()
	r.sessions[id] = s
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.LiveSessions.Set(float64(n))
	if r.tracker != nil {
		r.tracker.Track(location)
	}
	return s, nil
}

// Get returns the session with the given connection id.
func (r *Registry) Get(connectionID string) (Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[connectionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

// Remove ends a session.
func (r *Registry) Remove(connectionID string) error {
	r.mu.Lock()
	_, ok := r.sessions[connectionID]
	delete(r.sessions, connectionID)
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	metrics.LiveSessions.Set(float64(n))
	return nil
}

// List returns the sessions owned by userID, newest first. An empty userID
// lists every session.
func (r *Registry) List(userID string) []Session {
	r.mu.RLock()
	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if userID == "" || s.UserID == userID {
			out = append(out, s)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ConnectionID < out[j].ConnectionID
	})
	return out
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// newConnectionID returns "live-" followed by eight base36 characters.
func newConnectionID() (string, error) {
	buf := make([]byte, idRandChars)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate connection id: %w", err)
	}
	for i, b := range buf {
		buf[i] = base36[int(b)%len(base36)]
	}
	return ConnectionIDPrefix + string(buf), nil
}
