// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/crowdanalyzer/internal/events"
	"github.com/tomtom215/crowdanalyzer/internal/live"
	"github.com/tomtom215/crowdanalyzer/internal/logging"
	"github.com/tomtom215/crowdanalyzer/internal/models"
	"github.com/tomtom215/crowdanalyzer/internal/response"
)

const msgLiveEstablished = "Live feed connection established"

// AnalysesResponse is the payload of GET /api/analysis.
type AnalysesResponse struct {
	Analyses []models.Analysis `json:"analyses"`
}

// LiveSessionsResponse is the payload of GET /api/livestream.
type LiveSessionsResponse struct {
	Sessions []live.Session `json:"sessions"`
}

// ListAnalyses returns the caller's analyses, newest first. The date range
// applies only when both startDate and endDate are given.
func (h *Handler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	q := r.URL.Query()
	filter := models.AnalysisFilter{
		Location: strings.TrimSpace(q.Get("location")),
		Type:     models.FileType(q.Get("type")),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		response.New(w, r).BadRequest("Invalid analysis type")
		return
	}

	start, end := q.Get("startDate"), q.Get("endDate")
	if start != "" && end != "" {
		var err error
		if filter.StartDate, err = parseDateParam(start); err != nil {
			response.New(w, r).BadRequest("Invalid startDate")
			return
		}
		if filter.EndDate, err = parseDateParam(end); err != nil {
			response.New(w, r).BadRequest("Invalid endDate")
			return
		}
	}

	analyses, err := h.store.ListAnalyses(r.Context(), claims.ID, filter)
	if err != nil {
		response.New(w, r).DatabaseError(err)
		return
	}
	response.New(w, r).Success(AnalysesResponse{Analyses: analyses})
}

// LiveStream opens a simulated live feed. The session's location starts
// receiving density ticks and a live analysis record is stored.
func (h *Handler) LiveStream(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	var req models.LiveStreamRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.sessions.Register(claims.ID, req.Location)
	if err != nil {
		response.New(w, r).BadRequest("Location is required")
		return
	}

	analysis := &models.Analysis{
		UserID:    claims.ID,
		FileType:  models.FileLive,
		Location:  session.Location,
		Results:   map[string]interface{}{"connectionId": session.ConnectionID},
		Timestamp: session.StartedAt,
	}
	if err := h.store.CreateAnalysis(r.Context(), analysis); err != nil {
		_ = h.sessions.Remove(session.ConnectionID)
		response.New(w, r).DatabaseError(err)
		return
	}
	h.publish(r, events.TopicAnalysisCreated, session.Location, analysis)

	logging.Ctx(r.Context()).Info().
		Str("connection_id", session.ConnectionID).
		Str("location", sanitizeLogValue(session.Location)).
		Msg("Live feed connection established")

	response.New(w, r).Success(models.LiveStreamResponse{
		Message:      msgLiveEstablished,
		ConnectionID: session.ConnectionID,
		Location:     session.Location,
		Timestamp:    session.StartedAt,
	})
}

// ListLiveSessions returns the caller's open live sessions.
func (h *Handler) ListLiveSessions(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}
	response.New(w, r).Success(LiveSessionsResponse{Sessions: h.sessions.List(claims.ID)})
}

// EndLiveSession closes one of the caller's live sessions. Sessions owned
// by other users are reported as not found.
func (h *Handler) EndLiveSession(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	id := chi.URLParam(r, "id")
	session, err := h.sessions.Get(id)
	if errors.Is(err, live.ErrSessionNotFound) || (err == nil && session.UserID != claims.ID) {
		response.New(w, r).NotFound("Live session not found")
		return
	}
	if err != nil {
		response.New(w, r).InternalError("Failed to end live session")
		return
	}

	if err := h.sessions.Remove(id); err != nil && !errors.Is(err, live.ErrSessionNotFound) {
		response.New(w, r).InternalError("Failed to end live session")
		return
	}
	response.New(w, r).Success(map[string]string{"message": "Live feed connection closed"})
}
