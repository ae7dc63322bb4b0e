// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/crowdanalyzer/internal/auth"
	"github.com/tomtom215/crowdanalyzer/internal/authz"
	"github.com/tomtom215/crowdanalyzer/internal/middleware"
	"github.com/tomtom215/crowdanalyzer/internal/response"
	"github.com/tomtom215/crowdanalyzer/internal/upload"
)

// Router wires handlers and middleware into the chi route tree.
type Router struct {
	handler       *Handler
	uploads       *upload.Handler
	auth          *auth.Middleware
	authz         *authz.Middleware
	chiMiddleware *ChiMiddleware
	production    bool
}

// NewRouter creates a router. Stored uploads are never served over HTTP.
func NewRouter(handler *Handler, uploads *upload.Handler, authMW *auth.Middleware, authzMW *authz.Middleware) *Router {
	router := &Router{
		handler: handler,
		uploads: uploads,
		auth:    authMW,
		authz:   authzMW,
	}
	if handler.config != nil {
		router.chiMiddleware = NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&handler.config.Security))
		router.production = handler.config.IsProduction()
	} else {
		router.chiMiddleware = NewChiMiddleware(nil)
	}
	return router
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.SecurityHeaders(router.production))
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.New(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.New(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitAPI())
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Get("/health", h.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.With(router.auth.Authenticate).Get("/verify", h.Verify)
			r.Get("/{provider}", h.OAuthStart)
			r.Get("/{provider}/callback", h.OAuthCallback)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.auth.Authenticate)
			router.protectedRoutes(r)
		})
	})

	return r
}

// protectedRoutes registers the routes that require a valid token.
func (router *Router) protectedRoutes(r chi.Router) {
	h := router.handler
	allow := router.authz.Authorize

	r.Route("/upload", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitUpload())
		r.Use(allow(authz.ObjectUploads, authz.ActionWrite))
		r.Post("/image", router.uploads.Image)
		r.Post("/video", router.uploads.Video)
	})

	r.Route("/livestream", func(r chi.Router) {
		r.With(allow(authz.ObjectLivestream, authz.ActionWrite)).Post("/", h.LiveStream)
		r.With(allow(authz.ObjectLivestream, authz.ActionRead)).Get("/", h.ListLiveSessions)
		r.With(allow(authz.ObjectLivestream, authz.ActionWrite)).Delete("/{id}", h.EndLiveSession)
	})

	r.Route("/sensors", func(r chi.Router) {
		r.Use(router.authz.AuthorizeByMethod(authz.ObjectSensors))
		r.Get("/", h.ListSensors)
		r.Post("/", h.CreateSensor)
		r.Put("/{id}", h.UpdateSensor)
		r.Delete("/{id}", h.DeleteSensor)
	})

	r.Route("/locations", func(r chi.Router) {
		r.Use(router.authz.AuthorizeByMethod(authz.ObjectLocations))
		r.Get("/", h.ListLocations)
		r.Post("/", h.CreateLocation)
		r.Get("/catalog/search", h.SearchCatalog)
	})

	r.With(allow(authz.ObjectAnalyses, authz.ActionRead)).Get("/analysis", h.ListAnalyses)

	r.Route("/admin", func(r chi.Router) {
		r.Use(router.auth.RequireAdmin)
		r.Use(router.authz.AuthorizeByMethod(authz.ObjectUsers))
		r.Get("/users", h.ListUsers)
		r.Put("/users/{id}", h.UpdateUser)
	})

	r.Route("/dashboard/{location}", func(r chi.Router) {
		r.Use(allow(authz.ObjectDashboard, authz.ActionRead))
		r.Get("/", h.Dashboard)
		r.Get("/density", h.Density)
		r.Get("/trends", h.Trends)
		r.Get("/heatmap", h.HeatMap)
		r.Get("/anomalies", h.Anomalies)
		r.Get("/predictions", h.Predictions)
		r.Get("/readings", h.Readings)
	})

	r.Route("/preferences", func(r chi.Router) {
		write := allow(authz.ObjectPreferences, authz.ActionWrite)
		r.With(allow(authz.ObjectPreferences, authz.ActionRead)).Get("/", h.GetPreferences)
		r.With(write).Put("/", h.SetCurrentLocation)
		r.With(write).Post("/bookmarks", h.ToggleBookmark)
		r.With(write).Post("/recents", h.AddRecent)
		r.With(write).Delete("/recents", h.ClearRecents)
	})

	r.With(allow(authz.ObjectEvents, authz.ActionRead)).Get("/ws", h.WebSocket)
	r.Route("/notifications", func(r chi.Router) {
		write := allow(authz.ObjectNotifications, authz.ActionWrite)
		r.With(allow(authz.ObjectNotifications, authz.ActionRead)).Get("/", h.Notifications)
		r.With(write).Post("/read-all", h.MarkAllNotificationsRead)
		r.With(write).Post("/{id}/read", h.MarkNotificationRead)
	})
}
