// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/crowdanalyzer/internal/database"
	"github.com/tomtom215/crowdanalyzer/internal/locations"
	"github.com/tomtom215/crowdanalyzer/internal/models"
	"github.com/tomtom215/crowdanalyzer/internal/response"
)

// LocationsResponse is the payload of GET /api/locations.
type LocationsResponse struct {
	Locations []models.Location `json:"locations"`
}

// LocationResponse is returned by POST /api/locations.
type LocationResponse struct {
	Message  string           `json:"message"`
	Location *models.Location `json:"location"`
}

// CatalogSearchResponse is the payload of GET /api/locations/catalog/search.
type CatalogSearchResponse struct {
	Query   string   `json:"query"`
	Results []string `json:"results"`
}

// ListLocations returns stored locations, optionally filtered by a
// case-insensitive substring.
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := h.store.ListLocations(r.Context(), strings.TrimSpace(r.URL.Query().Get("search")))
	if err != nil {
		response.New(w, r).DatabaseError(err)
		return
	}
	response.New(w, r).Success(LocationsResponse{Locations: locs})
}

// CreateLocation adds a location (admin).
func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLocationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		response.New(w, r).BadRequest("Location name is required")
		return
	}

	loc, err := h.store.CreateLocation(r.Context(), req)
	if errors.Is(err, database.ErrConflict) {
		response.New(w, r).Conflict("Location already exists")
		return
	}
	if err != nil {
		response.New(w, r).DatabaseError(err)
		return
	}
	response.New(w, r).Created(LocationResponse{Message: "Location added successfully", Location: loc})
}

// SearchCatalog fuzzy-matches the location catalog. A blank query returns
// no results.
func (h *Handler) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	response.New(w, r).Success(CatalogSearchResponse{
		Query:   q,
		Results: locations.Search(q, locations.Catalog),
	})
}
