// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

/*
Package database provides the DuckDB store for users, sensors, locations
and analysis records.

# Usage

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	sensors, err := db.ListSensors(ctx, models.SensorFilter{Location: "Uppal"})

# Errors

Lookups and updates of missing records return ErrNotFound. Inserts that
collide with an existing email or location name return ErrConflict. Both
are wrapped where context is added, so callers test with errors.Is.

# Seeding

When DatabaseConfig.SeedData is set, New inserts the location catalog and an
initial sensor fleet into empty tables. The fleet is generated from a fixed
PCG seed so fresh databases are identical.

# Metrics

Every query records duckdb_query_duration_seconds and, on failure,
duckdb_query_errors_total labelled by operation and table.
*/
package database
