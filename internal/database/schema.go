// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

/*
schema.go - Database Schema Management

Tables:
  - users: accounts (password or OAuth), role, active flag
  - sensors: sensor catalog with the last reading inline
  - locations: named places with optional coordinates
  - analyses: upload and live session results; results stored as JSON text

Mutable columns carry no secondary index. DuckDB rewrites an update of an
indexed column as delete plus insert, so only write-once columns (ids,
email, location name) are indexed.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT,
		google_id TEXT,
		linkedin_id TEXT,
		role TEXT NOT NULL DEFAULT 'user',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS sensors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		location TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'online',
		battery INTEGER NOT NULL DEFAULT 100,
		data_value DOUBLE,
		data_unit TEXT,
		last_updated TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS locations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		lat DOUBLE,
		lng DOUBLE,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		file_type TEXT NOT NULL,
		file_path TEXT,
		location TEXT NOT NULL,
		results TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_analyses_user_time ON analyses(user_id, timestamp)`,
}
