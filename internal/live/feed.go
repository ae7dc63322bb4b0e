// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package live

import (
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/crowdanalyzer/internal/crowd"
	"github.com/tomtom215/crowdanalyzer/internal/logging"
	"github.com/tomtom215/crowdanalyzer/internal/models"
)

// FeedLimit is the number of notifications kept per location.
const FeedLimit = 10

// Feed keeps the most recent notifications per location along with which
// of them each user has read. Read state covers only notifications still in
// the feed.
type Feed struct {
	mu    sync.RWMutex
	items map[string][]models.Notification
	read  map[string]map[string]struct{} // user ID -> notification IDs
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{
		items: make(map[string][]models.Notification),
		read:  make(map[string]map[string]struct{}),
	}
}

// Add prepends n to its location's feed, dropping the oldest beyond FeedLimit.
func (f *Feed) Add(n models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := append([]models.Notification{n}, f.items[n.Location]...)
	if len(list) > FeedLimit {
		f.forgetLocked(list[FeedLimit:])
		list = list[:FeedLimit]
	}
	f.items[n.Location] = list
}

func (f *Feed) forgetLocked(dropped []models.Notification) {
	for user, ids := range f.read {
		for i := range dropped {
			delete(ids, dropped[i].ID)
		}
		if len(ids) == 0 {
			delete(f.read, user)
		}
	}
}

// Recent returns the location's notifications, newest first.
func (f *Feed) Recent(location string) []models.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]models.Notification, len(f.items[location]))
	copy(out, f.items[location])
	return out
}

// ForUser returns the location's notifications as seen by userID, newest
// first, with Read and Age filled in, and the number still unread.
func (f *Feed) ForUser(location, userID string, now time.Time) ([]models.Notification, int) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	read := f.read[userID]
	out := make([]models.Notification, len(f.items[location]))
	unread := 0
	for i, n := range f.items[location] {
		_, n.Read = read[n.ID]
		n.Age = crowd.TimeAgo(n.Timestamp, now)
		if !n.Read {
			unread++
		}
		out[i] = n
	}
	return out, unread
}

// MarkRead marks notification id read for userID and returns its location.
// ok is false when the notification is not in the feed.
func (f *Feed) MarkRead(userID, id string) (location string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for loc, list := range f.items {
		for i := range list {
			if list[i].ID == id {
				f.markLocked(userID, id)
				return loc, true
			}
		}
	}
	return "", false
}

// MarkAllRead marks every notification of location read for userID and
// returns how many were previously unread.
func (f *Feed) MarkAllRead(userID, location string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	marked := 0
	for i := range f.items[location] {
		if f.markLocked(userID, f.items[location][i].ID) {
			marked++
		}
	}
	return marked
}

func (f *Feed) markLocked(userID, id string) bool {
	ids, ok := f.read[userID]
	if !ok {
		ids = make(map[string]struct{})
		f.read[userID] = ids
	}
	if _, seen := ids[id]; seen {
		return false
	}
	ids[id] = struct{}{}
	return true
}

// Handle consumes notification events from the bus. Undecodable payloads
// are logged and acknowledged so they are not redelivered.
func (f *Feed) Handle(msg *message.Message) error {
	var n models.Notification
	if err := json.Unmarshal(msg.Payload, &n); err != nil {
		logging.Warn().Err(err).Str("message_id", msg.UUID).Msg("dropping undecodable notification")
		return nil
	}
	f.Add(n)
	return nil
}
