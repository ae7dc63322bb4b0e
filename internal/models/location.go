// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package models

import "time"

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

// Location is a named place that sensors and analyses refer to by name.
type Location struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// CreateLocationRequest is the body of POST /api/locations.
type CreateLocationRequest struct {
	Name        string       `json:"name" validate:"required,max=200"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// LocationPreferences is a user's saved location state.
type LocationPreferences struct {
	Current   string    `json:"currentLocation"`
	Bookmarks []string  `json:"bookmarks"`
	Recents   []string  `json:"recentLocations"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SetCurrentLocationRequest is the body of PUT /api/preferences.
type SetCurrentLocationRequest struct {
	Location string `json:"location" validate:"required,max=200"`
}

// LocationNameRequest names a single location (bookmark toggle, add recent).
type LocationNameRequest struct {
	Location string `json:"location" validate:"required,max=200"`
}

// BookmarkResponse reports the bookmark state after a toggle.
type BookmarkResponse struct {
	Location   string   `json:"location"`
	Bookmarked bool     `json:"bookmarked"`
	Bookmarks  []string `json:"bookmarks"`
}
