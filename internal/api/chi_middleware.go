// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/crowdanalyzer/internal/config"
	"github.com/tomtom215/crowdanalyzer/internal/logging"
	"github.com/tomtom215/crowdanalyzer/internal/metrics"
	"github.com/tomtom215/crowdanalyzer/internal/response"
)

// Rate limit messages returned with 429.
const (
	MsgRateLimited       = "Too many requests from this IP, please try again later."
	MsgUploadRateLimited = "Too many upload requests from this IP, please try again after a minute"
)

// ChiMiddlewareConfig holds configuration for Chi middleware factories.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSExposedHeaders   []string
	CORSAllowCredentials bool
	CORSMaxAge           int // seconds

	RateLimitRequests       int
	RateLimitWindow         time.Duration
	UploadRateLimitRequests int
	UploadRateLimitWindow   time.Duration
	RateLimitDisabled       bool
}

// DefaultChiMiddlewareConfig returns the defaults used when no security
// configuration is supplied. CORS origins default to empty, requiring
// explicit configuration.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins:   []string{},
		CORSAllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		CORSExposedHeaders:   []string{"X-Request-ID"},
		CORSAllowCredentials: true,
		CORSMaxAge:           86400,

		RateLimitRequests:       100,
		RateLimitWindow:         15 * time.Minute,
		UploadRateLimitRequests: 10,
		UploadRateLimitWindow:   time.Minute,
	}
}

// ChiMiddlewareConfigFromSecurity bridges the security configuration to the
// middleware factories.
func ChiMiddlewareConfigFromSecurity(sec *config.SecurityConfig) *ChiMiddlewareConfig {
	cfg := DefaultChiMiddlewareConfig()
	if sec == nil {
		return cfg
	}
	cfg.CORSAllowedOrigins = sec.CORSOrigins
	cfg.RateLimitDisabled = sec.RateLimitDisabled
	if sec.RateLimitReqs > 0 && sec.RateLimitWindow > 0 {
		cfg.RateLimitRequests = sec.RateLimitReqs
		cfg.RateLimitWindow = sec.RateLimitWindow
	}
	if sec.UploadRateLimitReqs > 0 && sec.UploadRateWindow > 0 {
		cfg.UploadRateLimitRequests = sec.UploadRateLimitReqs
		cfg.UploadRateLimitWindow = sec.UploadRateWindow
	}
	return cfg
}

// ChiMiddleware provides Chi-compatible middleware factories built on the
// go-chi ecosystem.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware creates a new Chi middleware factory with the given configuration.
func NewChiMiddleware(cfg *ChiMiddlewareConfig) *ChiMiddleware {
	if cfg == nil {
		cfg = DefaultChiMiddlewareConfig()
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   cfg.CORSAllowedMethods,
		AllowedHeaders:   cfg.CORSAllowedHeaders,
		ExposedHeaders:   cfg.CORSExposedHeaders,
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           cfg.CORSMaxAge,
	})

	return &ChiMiddleware{
		config: cfg,
		cors:   corsHandler,
	}
}

// CORS returns the go-chi/cors handler. It must be global so OPTIONS
// preflights are answered before routing.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimitAPI limits every /api route per client IP.
func (m *ChiMiddleware) RateLimitAPI() func(http.Handler) http.Handler {
	return m.rateLimit("api", m.config.RateLimitRequests, m.config.RateLimitWindow, MsgRateLimited)
}

// RateLimitUpload adds the stricter per-IP limit for uploads.
func (m *ChiMiddleware) RateLimitUpload() func(http.Handler) http.Handler {
	return m.rateLimit("upload", m.config.UploadRateLimitRequests, m.config.UploadRateLimitWindow, MsgUploadRateLimited)
}

func (m *ChiMiddleware) rateLimit(scope string, requests int, window time.Duration, message string) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.APIRateLimitHits.WithLabelValues(scope).Inc()
			logging.Ctx(r.Context()).Warn().
				Str("scope", scope).
				Str("path", r.URL.Path).
				Msg("Rate limit exceeded")
			response.New(w, r).TooManyRequests(message)
		}),
	)
}
