// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package locations

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/crowdanalyzer/internal/config"
	"github.com/tomtom215/crowdanalyzer/internal/logging"
	"github.com/tomtom215/crowdanalyzer/internal/models"
)

// Key prefix for BadgerDB storage
const prefsKeyPrefix = "prefs:"

// maxTxnRetries bounds retries of a read-modify-write that lost a conflict.
const maxTxnRetries = 3

// PreferenceStore keeps each user's current location, bookmarks and recent
// locations in BadgerDB as JSON documents keyed by user id.
type PreferenceStore struct {
	db  *badger.DB
	now func() time.Time
}

// OpenPreferences opens (or creates) the preference database.
func OpenPreferences(cfg config.PreferencesConfig) (*PreferenceStore, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open preferences store: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("Preference store opened")

	return NewPreferenceStore(db), nil
}

// NewPreferenceStore wraps an open BadgerDB.
func NewPreferenceStore(db *badger.DB) *PreferenceStore {
	return &PreferenceStore{db: db, now: time.Now}
}

// Close closes the underlying database.
func (s *PreferenceStore) Close() error {
	return s.db.Close()
}

func defaultPreferences() models.LocationPreferences {
	return models.LocationPreferences{
		Current:   DefaultLocation,
		Bookmarks: []string{},
		Recents:   []string{},
	}
}

func prefsKey(userID string) []byte {
	return []byte(prefsKeyPrefix + userID)
}

func readPrefs(txn *badger.Txn, userID string) (models.LocationPreferences, error) {
	prefs := defaultPreferences()
	item, err := txn.Get(prefsKey(userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return prefs, nil
	}
	if err != nil {
		return prefs, fmt.Errorf("get preferences: %w", err)
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &prefs)
	})
	if err != nil {
		return prefs, fmt.Errorf("decode preferences: %w", err)
	}
	if prefs.Bookmarks == nil {
		prefs.Bookmarks = []string{}
	}
	if prefs.Recents == nil {
		prefs.Recents = []string{}
	}
	return prefs, nil
}

// Get returns a user's preferences, or the defaults for an unknown user.
func (s *PreferenceStore) Get(ctx context.Context, userID string) (models.LocationPreferences, error) {
	var prefs models.LocationPreferences
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		prefs, err = readPrefs(txn, userID)
		return err
	})
	return prefs, err
}

// update runs a read-modify-write of one user's preferences, retrying when
// a concurrent writer wins the transaction.
func (s *PreferenceStore) update(ctx context.Context, userID string, mutate func(*models.LocationPreferences)) (models.LocationPreferences, error) {
	var prefs models.LocationPreferences
	var err error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return prefs, ctxErr
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			var rerr error
			prefs, rerr = readPrefs(txn, userID)
			if rerr != nil {
				return rerr
			}
			mutate(&prefs)
			prefs.UpdatedAt = s.now().UTC()

			data, merr := json.Marshal(prefs)
			if merr != nil {
				return fmt.Errorf("marshal preferences: %w", merr)
			}
			return txn.Set(prefsKey(userID), data)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return prefs, err
		}
	}
	return prefs, fmt.Errorf("update preferences for %s: %w", userID, err)
}

// pushRecent moves name to the front of recents, capped at MaxRecents.
func pushRecent(recents []string, name string) []string {
	out := make([]string, 0, MaxRecents)
	out = append(out, name)
	for _, r := range recents {
		if r != name && len(out) < MaxRecents {
			out = append(out, r)
		}
	}
	return out
}

// SetCurrent selects the user's current location and records it as recent.
func (s *PreferenceStore) SetCurrent(ctx context.Context, userID, name string) (models.LocationPreferences, error) {
	return s.update(ctx, userID, func(p *models.LocationPreferences) {
		p.Current = name
		p.Recents = pushRecent(p.Recents, name)
	})
}

// AddRecent moves name to the front of the user's recent locations.
func (s *PreferenceStore) AddRecent(ctx context.Context, userID, name string) (models.LocationPreferences, error) {
	return s.update(ctx, userID, func(p *models.LocationPreferences) {
		p.Recents = pushRecent(p.Recents, name)
	})
}

// ClearRecents empties the user's recent locations.
func (s *PreferenceStore) ClearRecents(ctx context.Context, userID string) (models.LocationPreferences, error) {
	return s.update(ctx, userID, func(p *models.LocationPreferences) {
		p.Recents = []string{}
	})
}

// ToggleBookmark adds name to the user's bookmarks, or removes it if already
// present. It reports whether name is bookmarked afterwards.
func (s *PreferenceStore) ToggleBookmark(ctx context.Context, userID, name string) (bool, models.LocationPreferences, error) {
	var bookmarked bool
	prefs, err := s.update(ctx, userID, func(p *models.LocationPreferences) {
		if i := slices.Index(p.Bookmarks, name); i >= 0 {
			p.Bookmarks = slices.Delete(p.Bookmarks, i, i+1)
			bookmarked = false
			return
		}
		p.Bookmarks = append(p.Bookmarks, name)
		bookmarked = true
	})
	return bookmarked, prefs, err
}

// IsBookmarked reports whether the user has bookmarked name.
func (s *PreferenceStore) IsBookmarked(ctx context.Context, userID, name string) (bool, error) {
	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(prefs.Bookmarks, name), nil
}
