// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package authz

import (
	"net/http"

	"github.com/tomtom215/crowdanalyzer/internal/auth"
	"github.com/tomtom215/crowdanalyzer/internal/logging"
	"github.com/tomtom215/crowdanalyzer/internal/response"
)

// Middleware enforces the role policy on HTTP handlers.
type Middleware struct {
	enforcer *Enforcer
}

// NewMiddleware creates authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{enforcer: enforcer}
}

// Authorize returns middleware allowing the request only when the caller's
// role may perform action on object. It must run after auth.Authenticate.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.ClaimsFromContext(r.Context())
			if claims == nil {
				response.New(w, r).Unauthorized(auth.MsgTokenRequired)
				return
			}

			allowed, err := m.enforcer.Enforce(string(claims.Role), object, action)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
				response.New(w, r).InternalError("Authorization failed")
				return
			}
			if !allowed {
				logging.Ctx(r.Context()).Debug().
					Str("role", string(claims.Role)).
					Str("object", object).
					Str("action", action).
					Msg("Access denied")
				response.New(w, r).Forbidden(auth.MsgAdminRequired)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ActionForMethod maps an HTTP method to a policy action.
func ActionForMethod(method string) string {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return ActionWrite
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionRead
	}
}

// AuthorizeByMethod is Authorize with the action derived from the request
// method.
func (m *Middleware) AuthorizeByMethod(object string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.Authorize(object, ActionForMethod(r.Method))(next).ServeHTTP(w, r)
		})
	}
}
