// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/crowdanalyzer/internal/auth"
	"github.com/tomtom215/crowdanalyzer/internal/logging"
	"github.com/tomtom215/crowdanalyzer/internal/models"
	"github.com/tomtom215/crowdanalyzer/internal/response"
)

const (
	msgUserExists         = "User already exists with this email"
	msgInvalidCredentials = "Invalid email or password"
	msgAccountDeactivated = "Account is deactivated"
	msgProviderMissing    = "OAuth provider not configured"
)

// VerifyResponse is the payload of GET /api/auth/verify.
type VerifyResponse struct {
	User models.PublicUser `json:"user"`
}

// Register creates a password account and returns a token (201).
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.auth.Register(r.Context(), req)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		response.New(w, r).BadRequest(msgUserExists)
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Registration failed")
		response.New(w, r).InternalError("Server error during registration")
	default:
		response.New(w, r).Created(resp)
	}
}

// Login checks an email and password and returns a token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		response.New(w, r).BadRequest(msgInvalidCredentials)
	case errors.Is(err, auth.ErrInactiveUser):
		response.New(w, r).Forbidden(msgAccountDeactivated)
	case err != nil:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Login failed")
		response.New(w, r).InternalError("Server error during login")
	default:
		response.New(w, r).Success(resp)
	}
}

// Verify returns the user the token was issued to.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := requireClaims(w, r)
	if claims == nil {
		return
	}

	u, err := h.auth.Verify(r.Context(), claims)
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		response.New(w, r).Forbidden(auth.MsgInvalidToken)
	case errors.Is(err, auth.ErrInactiveUser):
		response.New(w, r).Forbidden(msgAccountDeactivated)
	case err != nil:
		response.New(w, r).DatabaseError(err)
	default:
		response.New(w, r).Success(VerifyResponse{User: u.Public()})
	}
}

// OAuthStart redirects the browser to the provider's consent page.
func (h *Handler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.oauthProvider(w, r)
	if !ok {
		return
	}

	authURL, err := provider.AuthURL(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("provider", provider.Name()).Msg("OAuth start failed")
		response.New(w, r).ServiceUnavailable("OAuth provider unavailable")
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// OAuthCallback completes the login and redirects to the dashboard with
// the issued token. Any failure sends the browser to the login page.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.oauthProvider(w, r)
	if !ok {
		return
	}
	logger := logging.Ctx(r.Context()).With().Str("provider", provider.Name()).Logger()

	q := r.URL.Query()
	if providerErr := q.Get("error"); providerErr != "" {
		logger.Warn().Str("error", sanitizeLogValue(providerErr)).Msg("OAuth provider returned an error")
		http.Redirect(w, r, h.frontendURL("/login"), http.StatusFound)
		return
	}

	identity, err := provider.Exchange(r.Context(), q.Get("code"), q.Get("state"))
	if err != nil {
		logger.Warn().Err(err).Msg("OAuth exchange failed")
		http.Redirect(w, r, h.frontendURL("/login"), http.StatusFound)
		return
	}

	token, u, err := h.auth.LoginWithIdentity(r.Context(), *identity)
	if err != nil {
		logger.Warn().Err(err).Msg("OAuth login failed")
		http.Redirect(w, r, h.frontendURL("/login"), http.StatusFound)
		return
	}

	logger.Info().Str("user_id", u.ID).Msg("OAuth login")
	http.Redirect(w, r, h.frontendURL("/auth/callback?token="+url.QueryEscape(token)), http.StatusFound)
}

func (h *Handler) oauthProvider(w http.ResponseWriter, r *http.Request) (*auth.Provider, bool) {
	if h.providers == nil {
		response.New(w, r).NotFound(msgProviderMissing)
		return nil, false
	}
	provider, err := h.providers.Get(chi.URLParam(r, "provider"))
	if err != nil {
		response.New(w, r).NotFound(msgProviderMissing)
		return nil, false
	}
	return provider, true
}

// frontendURL joins path onto the configured dashboard origin.
func (h *Handler) frontendURL(path string) string {
	base := "http://localhost:3000"
	if h.config != nil && h.config.Server.FrontendURL != "" {
		base = h.config.Server.FrontendURL
	}
	return strings.TrimRight(base, "/") + path
}
