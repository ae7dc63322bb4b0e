// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

/*
Package config provides centralized configuration management for the crowd
analyzer service.

# Configuration Sources

Configuration is layered with Koanf v2, later sources overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. YAML file: CONFIG_PATH, or the first of DefaultConfigPaths that exists
 3. Environment variables (see envMappings)

# Environment Variables

Server:
  - PORT: Listen port (default: 5000)
  - HOST: Bind address (default: 0.0.0.0)
  - FRONTEND_URL: Dashboard origin (default: http://localhost:3000)
  - ENVIRONMENT / NODE_ENV: development, staging, production

Security:
  - JWT_SECRET: Token signing secret, at least 32 characters (required)
  - JWT_TTL: Token lifetime (default: 24h)
  - CORS_ORIGINS: Comma-separated origins (default: FRONTEND_URL)
  - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: API limit (default: 100 per 15m)
  - UPLOAD_RATE_LIMIT / UPLOAD_RATE_LIMIT_WINDOW: Upload limit (default: 10 per 1m)
  - ADMIN_EMAIL / ADMIN_PASSWORD: Optional admin bootstrap account

OAuth:
  - GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, GOOGLE_CALLBACK_URL
  - LINKEDIN_CLIENT_ID, LINKEDIN_CLIENT_SECRET, LINKEDIN_CALLBACK_URL

Storage:
  - DUCKDB_PATH: Database file (default: data/crowd.duckdb)
  - UPLOAD_DIR: Media upload directory (default: uploads)
  - PREFS_PATH: Location preference store (default: data/prefs)

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	addr := cfg.Server.Addr()
*/
package config
