// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/crowdanalyzer/config.yaml",
	"/etc/crowdanalyzer/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Upload defaults shared by the config layer and the upload handlers.
const (
	DefaultUploadMaxBytes = 100 * 1024 * 1024
	DefaultUploadTimeout  = 10 * time.Minute
)

// DefaultAllowedUploadTypes is the MIME whitelist for media uploads.
var DefaultAllowedUploadTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"video/mp4",
	"video/quicktime",
	"video/webm",
}

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         5000,
			Host:         "0.0.0.0",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			Environment:  "development",
			FrontendURL:  "http://localhost:3000",
		},
		Database: DatabaseConfig{
			Path:      "data/crowd.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
			SeedData:  true,
		},
		Security: SecurityConfig{
			TokenTTL:            24 * time.Hour,
			BcryptCost:          10,
			RateLimitReqs:       100,
			RateLimitWindow:     15 * time.Minute,
			UploadRateLimitReqs: 10,
			UploadRateWindow:    time.Minute,
		},
		OAuth: OAuthConfig{
			Google: OAuthProviderConfig{
				Issuer:      "https://accounts.google.com",
				CallbackURL: "http://localhost:5000/api/auth/google/callback",
				Scopes:      []string{"openid", "profile", "email"},
			},
			LinkedIn: OAuthProviderConfig{
				Issuer:      "https://www.linkedin.com/oauth",
				CallbackURL: "http://localhost:5000/api/auth/linkedin/callback",
				Scopes:      []string{"openid", "profile", "email"},
			},
			StateTTL: 10 * time.Minute,
		},
		Upload: UploadConfig{
			Dir:          "uploads",
			MaxBytes:     DefaultUploadMaxBytes,
			AllowedTypes: append([]string(nil), DefaultAllowedUploadTypes...),
			Timeout:      DefaultUploadTimeout,
		},
		Preferences: PreferencesConfig{
			Path: "data/prefs",
		},
		Live: LiveConfig{
			Enabled:      true,
			TickInterval: time.Minute,
		},
		Cache: CacheConfig{
			DashboardTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.applyDerivedDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyDerivedDefaults fills values that default to other settings.
func (c *Config) applyDerivedDefaults() {
	if len(c.Security.CORSOrigins) == 0 && c.Server.FrontendURL != "" {
		c.Security.CORSOrigins = []string{c.Server.FrontendURL}
	}
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"upload.allowed_types",
	"oauth.google.scopes",
	"oauth.linkedin.scopes",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// The short names are the ones the dashboard deployment already uses.
var envMappings = map[string]string{
	"port":         "server.port",
	"host":         "server.host",
	"environment":  "server.environment",
	"node_env":     "server.environment",
	"frontend_url": "server.frontend_url",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"seed_data":         "database.seed_data",

	"jwt_secret":               "security.jwt_secret",
	"jwt_ttl":                  "security.token_ttl",
	"bcrypt_cost":              "security.bcrypt_cost",
	"admin_email":              "security.admin_email",
	"admin_password":           "security.admin_password",
	"cors_origins":             "security.cors_origins",
	"rate_limit_requests":      "security.rate_limit_reqs",
	"rate_limit_window":        "security.rate_limit_window",
	"upload_rate_limit":        "security.upload_rate_limit_reqs",
	"upload_rate_limit_window": "security.upload_rate_limit_window",
	"disable_rate_limit":       "security.rate_limit_disabled",

	"google_client_id":       "oauth.google.client_id",
	"google_client_secret":   "oauth.google.client_secret",
	"google_callback_url":    "oauth.google.callback_url",
	"linkedin_client_id":     "oauth.linkedin.client_id",
	"linkedin_client_secret": "oauth.linkedin.client_secret",
	"linkedin_callback_url":  "oauth.linkedin.callback_url",
	"oauth_state_ttl":        "oauth.state_ttl",

	"upload_dir":           "upload.dir",
	"upload_max_bytes":     "upload.max_bytes",
	"upload_allowed_types": "upload.allowed_types",
	"upload_timeout":       "upload.timeout",

	"prefs_path":      "preferences.path",
	"prefs_in_memory": "preferences.in_memory",

	"live_enabled":       "live.enabled",
	"live_tick_interval": "live.tick_interval",

	"dashboard_cache_ttl": "cache.dashboard_ttl",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - PORT -> server.port
//   - JWT_SECRET -> security.jwt_secret
//   - GOOGLE_CLIENT_ID -> oauth.google.client_id
//
// Unmapped variables return an empty key and are skipped, so unrelated
// environment variables never leak into the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
