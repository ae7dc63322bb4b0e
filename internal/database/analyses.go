// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/crowdanalyzer/internal/models"
)

// CreateAnalysis stores an analysis record. ID and Timestamp are filled in
// when empty.
func (db *DB) CreateAnalysis(ctx context.Context, a *models.Analysis) (err error) {
	start := time.Now()
	defer func() { observe("insert", "analyses", start, err) }()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = db.now().UTC()
	}
	if a.Results == nil {
		a.Results = map[string]interface{}{}
	}

	results, err := json.Marshal(a.Results)
	if err != nil {
		return fmt.Errorf("failed to encode analysis results: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `INSERT INTO analyses
		(id, user_id, file_type, file_path, location, results, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, string(a.FileType), nullString(a.FilePath), a.Location, string(results), a.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

// ListAnalyses returns a user's analyses, newest first. The date range
// applies only when both bounds are set and is inclusive.
func (db *DB) ListAnalyses(ctx context.Context, userID string, filter models.AnalysisFilter) (analyses []models.Analysis, err error) {
	start := time.Now()
	defer func() { observe("select", "analyses", start, err) }()

	where := []string{"user_id = ?"}
	args := []any{userID}
	if filter.Location != "" {
		where = append(where, "location = ?")
		args = append(args, filter.Location)
	}
	if !filter.StartDate.IsZero() && !filter.EndDate.IsZero() {
		where = append(where, "timestamp >= ?", "timestamp <= ?")
		args = append(args, filter.StartDate.UTC(), filter.EndDate.UTC())
	}
	if filter.Type != "" {
		where = append(where, "file_type = ?")
		args = append(args, string(filter.Type))
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, user_id, file_type, file_path, location, results, timestamp
		FROM analyses
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY timestamp DESC, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	analyses = make([]models.Analysis, 0)
	for rows.Next() {
		var (
			a        models.Analysis
			fileType string
			path     sql.NullString
			results  string
		)
		if err = rows.Scan(&a.ID, &a.UserID, &fileType, &path, &a.Location, &results, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		a.FileType = models.FileType(fileType)
		a.FilePath = path.String
		if err = json.Unmarshal([]byte(results), &a.Results); err != nil {
			return nil, fmt.Errorf("failed to decode results for analysis %s: %w", a.ID, err)
		}
		analyses = append(analyses, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}
	return analyses, nil
}
