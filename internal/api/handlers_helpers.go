// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/crowdanalyzer/internal/auth"
	"github.com/tomtom215/crowdanalyzer/internal/response"
	"github.com/tomtom215/crowdanalyzer/internal/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// decodeAndValidate reads a JSON body into dst and validates it. On
// failure it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			response.New(w, r).PayloadTooLarge("Request body too large")
		case errors.Is(err, io.EOF):
			response.New(w, r).BadRequest("Request body is required")
		default:
			response.New(w, r).BadRequest("Invalid JSON body")
		}
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		response.New(w, r).ValidationError(verr.Error(), verr.Details())
		return false
	}
	return true
}

// requireClaims returns the caller's claims or writes a 401.
func requireClaims(w http.ResponseWriter, r *http.Request) *auth.Claims {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		response.New(w, r).Unauthorized(auth.MsgTokenRequired)
	}
	return claims
}

// locationParam returns the {location} route parameter, unescaped and
// trimmed.
func locationParam(r *http.Request) string {
	raw := chi.URLParam(r, "location")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	return strings.TrimSpace(raw)
}

// parseDateParam accepts RFC 3339 timestamps and YYYY-MM-DD dates (UTC
// midnight).
func parseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, value)
}
