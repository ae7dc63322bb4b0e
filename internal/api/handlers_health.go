// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/crowdanalyzer/internal/response"
)

// Version is reported by the health endpoint. Set at build time with
// -ldflags "-X github.com/tomtom215/crowdanalyzer/internal/api.Version=...".
var Version = "dev"

// HealthStatus is the payload of GET /api/health.
type HealthStatus struct {
	Status            string  `json:"status"` // healthy or degraded
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"databaseConnected"`
	WebSocketClients  int     `json:"websocketClients"`
	LiveSessions      int     `json:"liveSessions"`
	Uptime            float64 `json:"uptime"` // seconds
}

// Health reports liveness and database connectivity. A failed ping is
// reported as degraded with status 503 so load balancers stop routing.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.store != nil && h.store.Ping(r.Context()) == nil

	health := HealthStatus{
		Status:            "healthy",
		Version:           Version,
		DatabaseConnected: dbConnected,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if h.wsHub != nil {
		health.WebSocketClients = h.wsHub.GetClientCount()
	}
	if h.sessions != nil {
		health.LiveSessions = h.sessions.Len()
	}

	if !dbConnected {
		health.Status = "degraded"
		response.New(w, r).ErrorWithDetails(http.StatusServiceUnavailable,
			response.CodeServiceUnavailable, "Database unavailable", health)
		return
	}
	response.New(w, r).Success(health)
}
