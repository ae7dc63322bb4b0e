// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

/*
Package api provides the HTTP REST API layer for Crowd Analyzer.

It serves the dashboard frontend: authentication, sensor and location
management, media uploads, live feed sessions, dashboard widgets, user
preferences and the WebSocket stream of density ticks and notifications.

Key Components:

  - Router: chi route tree with the global middleware stack
  - Handler: request handlers for every endpoint
  - ChiMiddleware: CORS and per-IP rate limiting (go-chi/cors, go-chi/httprate)

Route Groups:

 1. Public (/api/): health, auth/register, auth/login, auth/{provider}
 2. Authenticated (/api/): upload, livestream, sensors, locations, analysis,
    dashboard/{location}, preferences, notifications, ws
 3. Admin (/api/admin/): user listing and role or activation updates
 4. Operational: /metrics (Prometheus)

Every JSON response uses the envelope from internal/response. Protected
routes run auth.Middleware.Authenticate followed by an authz check on the
route's object; denials return 401 or 403 before the handler runs.

Usage Example:

	handler := api.NewHandler(api.Deps{
	    Config:      cfg,
	    Store:       db,
	    Auth:        authService,
	    Preferences: prefs,
	    Publisher:   bus,
	    Hub:         hub,
	})
	router := api.NewRouter(handler, uploads, authMW, authzMW)
	http.ListenAndServe(cfg.Server.Addr(), router.SetupChi())

Dashboard payloads are cached per location and wall-clock minute. Sensor
writes clear that cache so sensor lists never lag behind a change.
*/
package api
