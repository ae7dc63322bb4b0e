// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

/*
Package middleware provides the infrastructure HTTP middleware shared by
every route: request IDs, access logging, security headers and Prometheus
instrumentation. Authentication and authorization live in internal/auth and
internal/authz.

All middleware uses chi's func(http.Handler) http.Handler shape:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	r.Use(middleware.PrometheusMetrics)

The response writer wrapper used by AccessLog and PrometheusMetrics
implements http.Hijacker and http.Flusher, so websocket upgrades pass
through it.
*/
package middleware
