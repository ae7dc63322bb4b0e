// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateOAuth(); err != nil {
		return err
	}

	if err := c.validateUpload(); err != nil {
		return err
	}

	if err := c.validateLive(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if c.Server.FrontendURL != "" {
		if _, err := url.ParseRequestURI(c.Server.FrontendURL); err != nil {
			return fmt.Errorf("FRONTEND_URL is not a valid URL: %w", err)
		}
	}
	return nil
}

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	if err := c.validateJWTSecret(); err != nil {
		return err
	}

	if c.Security.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}

	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if (c.Security.AdminEmail == "") != (c.Security.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if c.Security.AdminPassword != "" && containsPlaceholder(c.Security.AdminPassword) {
		return fmt.Errorf("ADMIN_PASSWORD contains a placeholder value - set a secure password")
	}

	if err := c.validateCORS(); err != nil {
		return err
	}

	return c.validateRateLimits()
}

// validateJWTSecret validates the JWT secret configuration
func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for security")
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

// validateCORS rejects wildcard origins in production. Credentials are sent
// cross-origin, so a wildcard would let any site act for a logged-in user.
func (c *Config) validateCORS() error {
	if c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production; " +
			"set specific origins such as CORS_ORIGINS=https://dashboard.example.com")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// Rate limit bounds
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = 24 * time.Hour
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if err := checkRateLimit("RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW",
		c.Security.RateLimitReqs, c.Security.RateLimitWindow); err != nil {
		return err
	}
	return checkRateLimit("UPLOAD_RATE_LIMIT", "UPLOAD_RATE_LIMIT_WINDOW",
		c.Security.UploadRateLimitReqs, c.Security.UploadRateWindow)
}

func checkRateLimit(reqName, windowName string, reqs int, window time.Duration) error {
	if reqs < minRateLimitRequests || reqs > maxRateLimitRequests {
		return fmt.Errorf("%s must be between %d and %d", reqName, minRateLimitRequests, maxRateLimitRequests)
	}
	if window < minRateLimitWindow || window > maxRateLimitWindow {
		return fmt.Errorf("%s must be between %v and %v", windowName, minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validateOAuth validates each enabled provider.
func (c *Config) validateOAuth() error {
	providers := map[string]OAuthProviderConfig{
		"GOOGLE":   c.OAuth.Google,
		"LINKEDIN": c.OAuth.LinkedIn,
	}
	for name, p := range providers {
		if !p.Enabled() {
			continue
		}
		if p.ClientSecret == "" {
			return fmt.Errorf("%s_CLIENT_SECRET is required when %s_CLIENT_ID is set", name, name)
		}
		if p.Issuer == "" {
			return fmt.Errorf("oauth issuer for %s is required", strings.ToLower(name))
		}
		if p.CallbackURL == "" {
			return fmt.Errorf("%s_CALLBACK_URL is required when %s_CLIENT_ID is set", name, name)
		}
	}
	if c.OAuth.StateTTL <= 0 {
		return fmt.Errorf("OAUTH_STATE_TTL must be positive")
	}
	return nil
}

func (c *Config) validateUpload() error {
	if c.Upload.Dir == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if c.Upload.Timeout < 0 {
		return fmt.Errorf("UPLOAD_TIMEOUT must not be negative")
	}
	if len(c.Upload.AllowedTypes) == 0 {
		return fmt.Errorf("UPLOAD_ALLOWED_TYPES must list at least one MIME type")
	}
	for _, t := range c.Upload.AllowedTypes {
		if !strings.HasPrefix(t, "image/") && !strings.HasPrefix(t, "video/") {
			return fmt.Errorf("UPLOAD_ALLOWED_TYPES entry %q is not an image or video type", t)
		}
	}
	return nil
}

func (c *Config) validateLive() error {
	if c.Live.Enabled && c.Live.TickInterval < time.Second {
		return fmt.Errorf("LIVE_TICK_INTERVAL must be at least 1s")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns are values that indicate a secret was never set.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
	"EXAMPLE",
}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
