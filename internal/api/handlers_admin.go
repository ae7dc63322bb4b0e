// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/crowdanalyzer/internal/database"
	"github.com/tomtom215/crowdanalyzer/internal/logging"
	"github.com/tomtom215/crowdanalyzer/internal/models"
	"github.com/tomtom215/crowdanalyzer/internal/response"
)

// UsersResponse is the payload of GET /api/admin/users.
type UsersResponse struct {
	Users []models.User `json:"users"`
}

// UserResponse is returned by PUT /api/admin/users/{id}.
type UserResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// ListUsers returns every account. Password hashes are never serialized.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		response.New(w, r).DatabaseError(err)
		return
	}
	response.New(w, r).Success(UsersResponse{Users: users})
}

// UpdateUser changes a user's role or active flag.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	u, err := h.store.UpdateUser(r.Context(), id, req)
	if errors.Is(err, database.ErrNotFound) {
		response.New(w, r).NotFound("User not found")
		return
	}
	if err != nil {
		response.New(w, r).DatabaseError(err)
		return
	}

	event := logging.Ctx(r.Context()).Info().Str("target_user", id)
	if req.Role != nil {
		event = event.Str("role", string(*req.Role))
	}
	if req.IsActive != nil {
		event = event.Bool("is_active", *req.IsActive)
	}
	event.Msg("User updated")

	response.New(w, r).Success(UserResponse{Message: "User updated successfully", User: u})
}
