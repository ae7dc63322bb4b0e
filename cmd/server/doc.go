// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

/*
Package main is the entry point for the Crowd Analyzer server.

Crowd Analyzer backs a crowd density dashboard: it stores sensors, locations
and analysis records in DuckDB, serves simulated density analytics per
location, accepts image and video uploads, and streams live density ticks
and notifications over WebSocket.

# Startup

 1. Configuration: koanf defaults, optional config.yaml, then environment
 2. Logging: zerolog, bridged to slog for suture and watermill
 3. Storage: DuckDB (users, sensors, locations, analyses) and BadgerDB
    (per-user location preferences)
 4. Auth: JWT, bcrypt passwords, optional Google and LinkedIn OIDC, casbin
 5. Messaging: watermill in-process bus, event router, WebSocket hub
 6. Supervisor tree: event router, hub, live ticker, OAuth state cleanup
    and the HTTP server

# Configuration

Common environment variables:

	PORT=5000
	JWT_SECRET=$(openssl rand -base64 32)
	DUCKDB_PATH=/data/crowd.duckdb
	PREFS_PATH=/data/prefs
	CORS_ORIGINS=https://dashboard.example.com
	ADMIN_EMAIL=admin@example.com
	ADMIN_PASSWORD=change-me
	SEED_DATA=true
	LIVE_ENABLED=true

# Signals

SIGINT and SIGTERM cancel the root context. The HTTP server drains for up to
10s, the hub closes every client, and storage is closed last.
*/
package main
