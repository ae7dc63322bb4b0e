// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package auth

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserExists is returned by Register when the email is taken.
	ErrUserExists = errors.New("user already exists with this email")

	// ErrInactiveUser is returned when a deactivated account signs in.
	ErrInactiveUser = errors.New("account is deactivated")

	// ErrInvalidToken wraps every JWT parse or validation failure.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrProviderNotConfigured is returned for an OAuth provider without a client id.
	ErrProviderNotConfigured = errors.New("oauth provider not configured")

	// ErrInvalidState is returned when an OAuth callback carries an unknown,
	// expired or already used state.
	ErrInvalidState = errors.New("invalid oauth state")

	// ErrEmailNotVerified is returned when a new OAuth identity carries an
	// email the provider has not verified.
	ErrEmailNotVerified = errors.New("oauth email not verified")

	// ErrTokenExchangeFailed is returned when the provider rejects the code.
	ErrTokenExchangeFailed = errors.New("oauth token exchange failed")
)
