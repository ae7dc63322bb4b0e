// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/crowdanalyzer/internal/logging"
	"github.com/tomtom215/crowdanalyzer/internal/models"
	"github.com/tomtom215/crowdanalyzer/internal/response"
)

// NotificationsResponse is the payload of GET /api/notifications.
type NotificationsResponse struct {
	Location      string                `json:"location"`
	UnreadCount   int                   `json:"unreadCount"`
	Notifications []models.Notification `json:"notifications"`
}

// WebSocket upgrades an authenticated request and attaches the connection
// to the hub. An optional location query parameter subscribes the client
// to that location's density ticks and notifications.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}
	if h.wsHub == nil {
		response.New(w, r).ServiceUnavailable("Live updates unavailable")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client, err := h.wsHub.Attach(r.Context(), conn, claims.ID)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket attach failed")
		_ = conn.Close()
		return
	}
	if location := strings.TrimSpace(r.URL.Query().Get("location")); location != "" {
		client.SetLocation(location)
		if h.tracker != nil {
			h.tracker.Track(location)
		}
	}
	logging.Ctx(r.Context()).Debug().Msg("WebSocket client connected")
}

// Notifications returns the ten most recent live notifications for a
// location with the caller's read state. Without a location parameter the
// caller's current location is used.
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}
	location, ok := h.notificationLocation(w, r, claims.ID)
	if !ok {
		return
	}
	if h.tracker != nil {
		h.tracker.Track(location)
	}
	response.New(w, r).Success(h.notificationsFor(location, claims.ID))
}

// MarkNotificationRead marks one notification read for the caller and
// returns its location's feed.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}
	location, ok := h.feed.MarkRead(claims.ID, chi.URLParam(r, "id"))
	if !ok {
		response.New(w, r).NotFound("Notification not found")
		return
	}
	response.New(w, r).Success(h.notificationsFor(location, claims.ID))
}

// MarkAllNotificationsRead marks every notification of a location read for
// the caller.
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}
	location, ok := h.notificationLocation(w, r, claims.ID)
	if !ok {
		return
	}
	h.feed.MarkAllRead(claims.ID, location)
	response.New(w, r).Success(h.notificationsFor(location, claims.ID))
}

// notificationLocation resolves the location query parameter, falling back
// to the user's current location. It writes the error response itself.
func (h *Handler) notificationLocation(w http.ResponseWriter, r *http.Request, userID string) (string, bool) {
	location := strings.TrimSpace(r.URL.Query().Get("location"))
	if location == "" && h.prefs != nil {
		prefs, err := h.prefs.Get(r.Context(), userID)
		if err != nil {
			response.New(w, r).InternalError("Failed to load preferences")
			return "", false
		}
		location = prefs.Current
	}
	if location == "" {
		response.New(w, r).BadRequest("Location is required")
		return "", false
	}
	return location, true
}

func (h *Handler) notificationsFor(location, userID string) NotificationsResponse {
	items, unread := h.feed.ForUser(location, userID, h.now())
	return NotificationsResponse{
		Location:      location,
		UnreadCount:   unread,
		Notifications: items,
	}
}
