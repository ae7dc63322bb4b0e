// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/crowdanalyzer/internal/models"
	"github.com/tomtom215/crowdanalyzer/internal/response"
)

// GetPreferences returns the caller's current location, bookmarks and
// recents.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}
	prefs, err := h.prefs.Get(r.Context(), claims.ID)
	if err != nil {
		response.New(w, r).InternalError("Failed to load preferences")
		return
	}
	response.New(w, r).Success(prefs)
}

// SetCurrentLocation changes the caller's current location, which also
// moves it to the front of recents.
func (h *Handler) SetCurrentLocation(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}
	var req models.SetCurrentLocationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	name, ok := trimmedLocation(w, r, req.Location)
	if !ok {
		return
	}

	prefs, err := h.prefs.SetCurrent(r.Context(), claims.ID, name)
	if err != nil {
		response.New(w, r).InternalError("Failed to save preferences")
		return
	}
	if h.tracker != nil {
		h.tracker.Track(name)
	}
	response.New(w, r).Success(prefs)
}

// ToggleBookmark adds the location to bookmarks, or removes it when
// already bookmarked.
func (h *Handler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}
	var req models.LocationNameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	name, ok := trimmedLocation(w, r, req.Location)
	if !ok {
		return
	}

	bookmarked, prefs, err := h.prefs.ToggleBookmark(r.Context(), claims.ID, name)
	if err != nil {
		response.New(w, r).InternalError("Failed to save preferences")
		return
	}
	response.New(w, r).Success(models.BookmarkResponse{
		Location:   name,
		Bookmarked: bookmarked,
		Bookmarks:  prefs.Bookmarks,
	})
}

// AddRecent records a visited location without changing the current one.
func (h *Handler) AddRecent(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}
	var req models.LocationNameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	name, ok := trimmedLocation(w, r, req.Location)
	if !ok {
		return
	}

	prefs, err := h.prefs.AddRecent(r.Context(), claims.ID, name)
	if err != nil {
		response.New(w, r).InternalError("Failed to save preferences")
		return
	}
	response.New(w, r).Success(prefs)
}

// ClearRecents empties the caller's recent locations.
func (h *Handler) ClearRecents(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}
	prefs, err := h.prefs.ClearRecents(r.Context(), claims.ID)
	if err != nil {
		response.New(w, r).InternalError("Failed to save preferences")
		return
	}
	response.New(w, r).Success(prefs)
}

func trimmedLocation(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		response.New(w, r).BadRequest("Location is required")
		return "", false
	}
	return name, true
}
