// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"
)

// stateEntry records which provider issued a state and when it lapses.
type stateEntry struct {
	provider  string
	expiresAt time.Time
}

// StateStore holds single-use OAuth state values in memory.
type StateStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	states map[string]stateEntry
	now    func() time.Time
}

// NewStateStore creates a state store whose entries expire after ttl.
func NewStateStore(ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StateStore{
		ttl:    ttl,
		states: make(map[string]stateEntry),
		now:    time.Now,
	}
}

// Issue generates and records a new state for provider. Expired entries
// are swept on every call.
func (s *StateStore) Issue(provider string) (string, error) {
	state, err := generateSecureRandom(32)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupLocked()
	s.states[state] = stateEntry{provider: provider, expiresAt: s.now().Add(s.ttl)}
	return state, nil
}

// Consume validates and removes state. The state must exist, belong to
// provider and be unexpired.
func (s *StateStore) Consume(provider, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.states[state]
	if !ok {
		return ErrInvalidState
	}
	delete(s.states, state)

	if entry.provider != provider || s.now().After(entry.expiresAt) {
		return ErrInvalidState
	}
	return nil
}

// CleanupExpired removes lapsed entries and returns how many were dropped.
func (s *StateStore) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleanupLocked()
}

// Len returns the number of outstanding states.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

func (s *StateStore) cleanupLocked() int {
	now := s.now()
	removed := 0
	for key, entry := range s.states {
		if now.After(entry.expiresAt) {
			delete(s.states, key)
			removed++
		}
	}
	return removed
}

func generateSecureRandom(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
