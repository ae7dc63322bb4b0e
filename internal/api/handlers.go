// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/crowdanalyzer/internal/auth"
	"github.com/tomtom215/crowdanalyzer/internal/cache"
	"github.com/tomtom215/crowdanalyzer/internal/config"
	"github.com/tomtom215/crowdanalyzer/internal/events"
	"github.com/tomtom215/crowdanalyzer/internal/live"
	"github.com/tomtom215/crowdanalyzer/internal/logging"
	"github.com/tomtom215/crowdanalyzer/internal/models"
	ws "github.com/tomtom215/crowdanalyzer/internal/websocket"
)

// Store is the persistence the handlers need. *database.DB satisfies it.
type Store interface {
	Ping(ctx context.Context) error

	ListSensors(ctx context.Context, filter models.SensorFilter) ([]models.Sensor, error)
	CreateSensor(ctx context.Context, req models.CreateSensorRequest) (*models.Sensor, error)
	UpdateSensor(ctx context.Context, id string, req models.UpdateSensorRequest) (*models.Sensor, error)
	DeleteSensor(ctx context.Context, id string) error

	ListLocations(ctx context.Context, search string) ([]models.Location, error)
	CreateLocation(ctx context.Context, req models.CreateLocationRequest) (*models.Location, error)

	CreateAnalysis(ctx context.Context, a *models.Analysis) error
	ListAnalyses(ctx context.Context, userID string, filter models.AnalysisFilter) ([]models.Analysis, error)

	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error)
}

// Preferences backs /api/preferences. *locations.PreferenceStore satisfies it.
type Preferences interface {
	Get(ctx context.Context, userID string) (models.LocationPreferences, error)
	SetCurrent(ctx context.Context, userID, name string) (models.LocationPreferences, error)
	AddRecent(ctx context.Context, userID, name string) (models.LocationPreferences, error)
	ClearRecents(ctx context.Context, userID string) (models.LocationPreferences, error)
	ToggleBookmark(ctx context.Context, userID, name string) (bool, models.LocationPreferences, error)
}

// Deps are the collaborators of a Handler. Publisher may be nil, in which
// case no events are emitted.
type Deps struct {
	Config      *config.Config
	Store       Store
	Auth        *auth.Service
	Providers   *auth.Providers
	Preferences Preferences
	Publisher   events.Publisher
	Hub         *ws.Hub
	Sessions    *live.Registry
	Tracker     *live.Tracker
	Feed        *live.Feed
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files by resource:
//   - handlers_health.go: liveness and database ping
//   - handlers_auth.go: register, login, verify, OAuth
//   - handlers_sensors.go, handlers_locations.go: CRUD
//   - handlers_analysis.go: analyses and live stream sessions
//   - handlers_admin.go: user management
//   - handlers_dashboard.go: cached dashboard widgets
//   - handlers_preferences.go: per-user location preferences
//   - handlers_live.go: websocket upgrade and notification feed
type Handler struct {
	config     *config.Config
	store      Store
	auth       *auth.Service
	providers  *auth.Providers
	prefs      Preferences
	publisher  events.Publisher
	wsHub      *ws.Hub
	sessions   *live.Registry
	tracker    *live.Tracker
	feed       *live.Feed
	dashboards *cache.Cache
	upgrader   websocket.Upgrader
	startTime  time.Time
	now        func() time.Time
}

// NewHandler creates the API handler. The dashboard cache is owned by the
// handler; call Close on shutdown.
func NewHandler(deps Deps) *Handler {
	ttl := time.Minute
	if deps.Config != nil && deps.Config.Cache.DashboardTTL > 0 {
		ttl = deps.Config.Cache.DashboardTTL
	}

	h := &Handler{
		config:     deps.Config,
		store:      deps.Store,
		auth:       deps.Auth,
		providers:  deps.Providers,
		prefs:      deps.Preferences,
		publisher:  deps.Publisher,
		wsHub:      deps.Hub,
		sessions:   deps.Sessions,
		tracker:    deps.Tracker,
		feed:       deps.Feed,
		dashboards: cache.New("dashboard", ttl),
		startTime:  time.Now(),
		now:        time.Now,
	}
	h.upgrader = h.getUpgrader()
	return h
}

// Close stops the dashboard cache.
func (h *Handler) Close() {
	h.dashboards.Close()
}

// publish emits an event, logging rather than failing the request when
// the bus is unavailable.
func (h *Handler) publish(r *http.Request, topic, location string, payload interface{}) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(topic, location, payload); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("topic", topic).Msg("Failed to publish event")
	}
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts the configured CORS origins. Browsers always
// send Origin on a websocket handshake, so a missing header is rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}
	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
