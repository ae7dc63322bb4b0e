// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

/*
Package auth provides password and social login, JWT issuance and the
HTTP middleware that enforces it.

# Tokens

Tokens are HS256 JWTs carrying the user's id, email, name and role. They are
accepted from the Authorization header ("Bearer <token>"), the token cookie,
or, for WebSocket handshakes only, the token query parameter.

	mw := auth.NewMiddleware(jwtManager)
	r.With(mw.Authenticate, mw.RequireAdmin).Get("/api/admin/users", h.ListUsers)

A missing token is answered with 401 and an invalid or expired one with 403.

# Social Login

Google and LinkedIn are OpenID Connect providers driven by the zitadel
relying party. Discovery happens on first use. Discovery and code exchange
run behind a gobreaker circuit breaker per provider, and callback states are
single-use with a configurable TTL.

A provider identity resolves to an account by provider subject first, then
by email (linking the subject to the existing account), and otherwise
creates a new user account.
*/
package auth
