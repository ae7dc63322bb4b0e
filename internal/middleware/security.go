// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package middleware

import "net/http"

// hstsValue is one year including subdomains.
const hstsValue = "max-age=31536000; includeSubDomains"

// SecurityHeaders adds the standard hardening headers to every response.
// Strict-Transport-Security is sent in production, or whenever the request
// arrived over TLS (directly or through a TLS-terminating proxy).
//
// Cross-Origin-Resource-Policy is cross-origin so the dashboard, served
// from a different origin, can load uploaded media.
func SecurityHeaders(production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Cross-Origin-Resource-Policy", "cross-origin")
			h.Set("X-DNS-Prefetch-Control", "off")

			if production || r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				h.Set("Strict-Transport-Security", hstsValue)
			}

			next.ServeHTTP(w, r)
		})
	}
}
