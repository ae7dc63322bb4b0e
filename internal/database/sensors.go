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

const sensorColumns = `id, name, location, type, status, battery, data_value, data_unit, last_updated`

func scanSensor(row rowScanner) (*models.Sensor, error) {
	var (
		s           models.Sensor
		typ, status string
		value       sql.NullFloat64
		unit        sql.NullString
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Location, &typ, &status, &s.Battery, &value, &unit, &s.LastUpdated); err != nil {
		return nil, err
	}
	s.Type = models.SensorType(typ)
	s.Status = models.SensorStatus(status)
	if value.Valid {
		s.Data = &models.SensorData{Value: value.Float64, Unit: unit.String}
	}
	return &s, nil
}

func sensorDataArgs(d *models.SensorData) (sql.NullFloat64, sql.NullString) {
	if d == nil {
		return sql.NullFloat64{}, sql.NullString{}
	}
	return sql.NullFloat64{Float64: d.Value, Valid: true}, sql.NullString{String: d.Unit, Valid: true}
}

// ListSensors returns sensors matching the filter. Empty filter fields
// match everything; location matches exactly.
func (db *DB) ListSensors(ctx context.Context, filter models.SensorFilter) (sensors []models.Sensor, err error) {
	start := time.Now()
	defer func() { observe("select", "sensors", start, err) }()

	var (
		where []string
		args  []any
	)
	if filter.Location != "" {
		where = append(where, "location = ?")
		args = append(args, filter.Location)
	}
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := `SELECT ` + sensorColumns + ` FROM sensors`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY location, id`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sensors: %w", err)
	}
	defer rows.Close()

	sensors = make([]models.Sensor, 0)
	for rows.Next() {
		s, scanErr := scanSensor(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan sensor: %w", scanErr)
		}
		sensors = append(sensors, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sensors: %w", err)
	}
	return sensors, nil
}

// GetSensor returns a sensor by id.
func (db *DB) GetSensor(ctx context.Context, id string) (s *models.Sensor, err error) {
	start := time.Now()
	defer func() { observe("select", "sensors", start, err) }()

	s, err = scanSensor(db.conn.QueryRowContext(ctx,
		`SELECT `+sensorColumns+` FROM sensors WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sensor: %w", err)
	}
	return s, nil
}

// CreateSensor registers a new sensor. New sensors start online with a
// full battery.
func (db *DB) CreateSensor(ctx context.Context, req models.CreateSensorRequest) (*models.Sensor, error) {
	s := &models.Sensor{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Location:    req.Location,
		Type:        req.Type,
		Status:      models.StatusOnline,
		Battery:     100,
		Data:        req.Data,
		LastUpdated: db.now().UTC(),
	}
	if err := db.insertSensor(ctx, db.conn, s); err != nil {
		return nil, err
	}
	return s, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (db *DB) insertSensor(ctx context.Context, ex execer, s *models.Sensor) (err error) {
	start := time.Now()
	defer func() { observe("insert", "sensors", start, err) }()

	value, unit := sensorDataArgs(s.Data)
	_, err = ex.ExecContext(ctx, `INSERT INTO sensors (`+sensorColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Location, string(s.Type), string(s.Status), s.Battery, value, unit, s.LastUpdated.UTC())
	if err != nil {
		if isConstraintError(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to insert sensor: %w", err)
	}
	return nil
}

// UpdateSensor applies a partial update and stamps LastUpdated.
func (db *DB) UpdateSensor(ctx context.Context, id string, req models.UpdateSensorRequest) (*models.Sensor, error) {
	s, err := db.GetSensor(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		s.Name = *req.Name
	}
	if req.Location != nil {
		s.Location = *req.Location
	}
	if req.Type != nil {
		s.Type = *req.Type
	}
	if req.Status != nil {
		s.Status = *req.Status
	}
	if req.Battery != nil {
		s.Battery = *req.Battery
	}
	if req.Data != nil {
		s.Data = req.Data
	}
	s.LastUpdated = db.now().UTC()

	value, unit := sensorDataArgs(s.Data)
	start := time.Now()
	res, err := db.conn.ExecContext(ctx, `UPDATE sensors
		SET name = ?, location = ?, type = ?, status = ?, battery = ?,
			data_value = ?, data_unit = ?, last_updated = ?
		WHERE id = ?`,
		s.Name, s.Location, string(s.Type), string(s.Status), s.Battery, value, unit, s.LastUpdated, id)
	if err == nil {
		// The sensor may have been deleted since it was read.
		err = requireAffected(res)
	}
	observe("update", "sensors", start, err)
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update sensor: %w", err)
	}
	return s, nil
}

// DeleteSensor removes a sensor.
func (db *DB) DeleteSensor(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { observe("delete", "sensors", start, err) }()

	res, err := db.conn.ExecContext(ctx, `DELETE FROM sensors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sensor: %w", err)
	}
	return requireAffected(res)
}
