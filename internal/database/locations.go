// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/crowdanalyzer/internal/models"
)

const locationColumns = `id, name, lat, lng, created_at`

func scanLocation(row rowScanner) (*models.Location, error) {
	var (
		l        models.Location
		lat, lng sql.NullFloat64
	)
	if err := row.Scan(&l.ID, &l.Name, &lat, &lng, &l.CreatedAt); err != nil {
		return nil, err
	}
	if lat.Valid && lng.Valid {
		l.Coordinates = &models.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &l, nil
}

// ListLocations returns locations whose name contains search,
// case-insensitively. An empty search returns all locations.
func (db *DB) ListLocations(ctx context.Context, search string) (locations []models.Location, err error) {
	start := time.Now()
	defer func() { observe("select", "locations", start, err) }()

	var rows *sql.Rows
	search = strings.TrimSpace(search)
	if search == "" {
		rows, err = db.conn.QueryContext(ctx,
			`SELECT `+locationColumns+` FROM locations ORDER BY name`)
	} else {
		rows, err = db.conn.QueryContext(ctx,
			`SELECT `+locationColumns+` FROM locations
			WHERE strpos(lower(name), lower(?)) > 0 ORDER BY name`, search)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	locations = make([]models.Location, 0)
	for rows.Next() {
		l, scanErr := scanLocation(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan location: %w", scanErr)
		}
		locations = append(locations, *l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate locations: %w", err)
	}
	return locations, nil
}

// GetLocationByName returns the location with exactly this name.
func (db *DB) GetLocationByName(ctx context.Context, name string) (l *models.Location, err error) {
	start := time.Now()
	defer func() { observe("select", "locations", start, err) }()

	l, err = scanLocation(db.conn.QueryRowContext(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return l, nil
}

// CreateLocation adds a named location. Returns ErrConflict when the name
// is taken.
func (db *DB) CreateLocation(ctx context.Context, req models.CreateLocationRequest) (*models.Location, error) {
	l := &models.Location{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Coordinates: req.Coordinates,
		CreatedAt:   db.now().UTC(),
	}

	if _, err := db.GetLocationByName(ctx, l.Name); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if err := db.insertLocation(ctx, db.conn, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (db *DB) insertLocation(ctx context.Context, ex execer, l *models.Location) (err error) {
	start := time.Now()
	defer func() { observe("insert", "locations", start, err) }()

	var lat, lng sql.NullFloat64
	if l.Coordinates != nil {
		lat = sql.NullFloat64{Float64: l.Coordinates.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: l.Coordinates.Lng, Valid: true}
	}
	_, err = ex.ExecContext(ctx, `INSERT INTO locations (`+locationColumns+`) VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.Name, lat, lng, l.CreatedAt.UTC())
	if err != nil {
		if isConstraintError(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to insert location: %w", err)
	}
	return nil
}
