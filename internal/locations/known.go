// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package locations

import (
	"context"
	"time"

	"github.com/tomtom215/crowdanalyzer/internal/models"
)

const knownLookupTimeout = 2 * time.Second

// LocationLookup finds a stored location by its exact name.
type LocationLookup interface {
	GetLocationByName(ctx context.Context, name string) (*models.Location, error)
}

// KnownFunc returns a check accepting catalog names and, when lookup is
// non-nil, names stored in lookup. Lookup errors count as unknown.
func KnownFunc(lookup LocationLookup) func(string) bool {
	return func(name string) bool {
		if Contains(name) {
			return true
		}
		if lookup == nil {
			return false
		}
		ctx, cancel := context.WithTimeout(context.Background(), knownLookupTimeout)
		defer cancel()
		_, err := lookup.GetLocationByName(ctx, name)
		return err == nil
	}
}
