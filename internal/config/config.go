// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
//
// Config is immutable after Load() and safe for concurrent read access from
// multiple goroutines.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Security    SecurityConfig    `koanf:"security"`
	OAuth       OAuthConfig       `koanf:"oauth"`
	Upload      UploadConfig      `koanf:"upload"`
	Preferences PreferencesConfig `koanf:"preferences"`
	Live        LiveConfig        `koanf:"live"`
	Cache       CacheConfig       `koanf:"cache"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port         int           `koanf:"port"`
	Host         string        `koanf:"host"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	Environment  string        `koanf:"environment"` // development, staging, production

	// FrontendURL is the dashboard origin. OAuth callbacks redirect here and
	// it is the default CORS origin.
	FrontendURL string `koanf:"frontend_url"`
}

// DatabaseConfig holds DuckDB connection settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()

	// SeedData inserts the location catalog and initial sensor fleet when
	// the tables are empty.
	SeedData bool `koanf:"seed_data"`
}

// SecurityConfig holds authentication, CORS and rate limiting settings.
type SecurityConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	// BcryptCost is the work factor for password hashes.
	BcryptCost int `koanf:"bcrypt_cost"`

	// AdminEmail and AdminPassword bootstrap an admin account on startup
	// when both are set and no user with that email exists.
	AdminEmail    string `koanf:"admin_email"`
	AdminPassword string `koanf:"admin_password"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs       int           `koanf:"rate_limit_reqs"`
	RateLimitWindow     time.Duration `koanf:"rate_limit_window"`
	UploadRateLimitReqs int           `koanf:"upload_rate_limit_reqs"`
	UploadRateWindow    time.Duration `koanf:"upload_rate_limit_window"`
	RateLimitDisabled   bool          `koanf:"rate_limit_disabled"`
}

// OAuthConfig holds the social login providers.
type OAuthConfig struct {
	Google   OAuthProviderConfig `koanf:"google"`
	LinkedIn OAuthProviderConfig `koanf:"linkedin"`

	// StateTTL bounds how long an authorization round trip may take.
	StateTTL time.Duration `koanf:"state_ttl"`
}

// OAuthProviderConfig configures one OpenID Connect provider.
// A provider is enabled when ClientID is set.
type OAuthProviderConfig struct {
	Issuer       string   `koanf:"issuer"`
	ClientID     string   `koanf:"client_id"`
	ClientSecret string   `koanf:"client_secret"`
	CallbackURL  string   `koanf:"callback_url"`
	Scopes       []string `koanf:"scopes"`
}

// Enabled reports whether the provider has been configured.
func (p OAuthProviderConfig) Enabled() bool {
	return p.ClientID != ""
}

// UploadConfig holds media upload settings.
type UploadConfig struct {
	Dir          string        `koanf:"dir"`
	MaxBytes     int64         `koanf:"max_bytes"`
	AllowedTypes []string      `koanf:"allowed_types"`
	Timeout      time.Duration `koanf:"timeout"` // read/write deadline of one upload request
}

// PreferencesConfig holds the per-user location preference store settings.
type PreferencesConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// LiveConfig holds the simulated live density feed settings.
type LiveConfig struct {
	Enabled      bool          `koanf:"enabled"`
	TickInterval time.Duration `koanf:"tick_interval"`
}

// CacheConfig holds dashboard response caching settings.
type CacheConfig struct {
	DashboardTTL time.Duration `koanf:"dashboard_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Load reads configuration with the following precedence (highest wins):
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
func Load() (*Config, error) {
	return LoadWithKoanf()
}
