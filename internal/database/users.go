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

const userColumns = `id, name, email, password_hash, google_id, linkedin_id, role, is_active, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                          models.User
		role                       string
		hash, googleID, linkedinID sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &hash, &googleID, &linkedinID, &role, &u.IsActive, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.PasswordHash = hash.String
	u.GoogleID = googleID.String
	u.LinkedInID = linkedinID.String
	u.Role = models.Role(role)
	return &u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// normalizeEmail lowercases and trims an address so lookups are case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts a new user. ID, CreatedAt and Role are filled in when
// empty. Returns ErrConflict when the email is already registered.
func (db *DB) CreateUser(ctx context.Context, u *models.User) (err error) {
	start := time.Now()
	defer func() { observe("insert", "users", start, err) }()

	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = db.now().UTC()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}

	var exists bool
	if err = db.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, u.Email).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return ErrConflict
	}

	_, err = db.conn.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, nullString(u.PasswordHash), nullString(u.GoogleID),
		nullString(u.LinkedInID), string(u.Role), u.IsActive, u.CreatedAt.UTC())
	if err != nil {
		if isConstraintError(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByEmail returns the user registered with email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.getUser(ctx, "email", normalizeEmail(email))
}

// GetUserByID returns the user with the given id.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return db.getUser(ctx, "id", id)
}

// GetUserByProvider returns the user linked to an OAuth subject.
func (db *DB) GetUserByProvider(ctx context.Context, provider, subject string) (*models.User, error) {
	column, err := providerColumn(provider)
	if err != nil {
		return nil, err
	}
	return db.getUser(ctx, column, subject)
}

// column is always a fixed identifier chosen by the caller, never user input.
func (db *DB) getUser(ctx context.Context, column, value string) (u *models.User, err error) {
	start := time.Now()
	defer func() { observe("select", "users", start, err) }()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value)
	u, err = scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func providerColumn(provider string) (string, error) {
	switch provider {
	case models.ProviderGoogle:
		return "google_id", nil
	case models.ProviderLinkedIn:
		return "linkedin_id", nil
	default:
		return "", fmt.Errorf("unknown provider %q", provider)
	}
}

// LinkProvider attaches an OAuth subject to an existing user.
func (db *DB) LinkProvider(ctx context.Context, userID, provider, subject string) (err error) {
	start := time.Now()
	defer func() { observe("update", "users", start, err) }()

	column, err := providerColumn(provider)
	if err != nil {
		return err
	}
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET `+column+` = ? WHERE id = ?`, subject, userID)
	if err != nil {
		return fmt.Errorf("failed to link provider: %w", err)
	}
	return requireAffected(res)
}

// ListUsers returns every user ordered by creation time. Password hashes are
// not read.
func (db *DB) ListUsers(ctx context.Context) (users []models.User, err error) {
	start := time.Now()
	defer func() { observe("select", "users", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, email, CAST(NULL AS TEXT), google_id, linkedin_id, role, is_active, created_at
		FROM users ORDER BY created_at, email`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users = make([]models.User, 0)
	for rows.Next() {
		u, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan user: %w", scanErr)
		}
		users = append(users, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// UpdateUser applies a role and/or active flag change and returns the
// updated user. Nil fields are left unchanged.
func (db *DB) UpdateUser(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	u, err := db.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	start := time.Now()
	_, err = db.conn.ExecContext(ctx,
		`UPDATE users SET role = ?, is_active = ? WHERE id = ?`, string(u.Role), u.IsActive, id)
	observe("update", "users", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

// CountUsers returns the number of registered users.
func (db *DB) CountUsers(ctx context.Context) (int, error) {
	return db.count(ctx, "users")
}

func (db *DB) count(ctx context.Context, table string) (n int, err error) {
	start := time.Now()
	defer func() { observe("count", table, start, err) }()

	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// requireAffected maps a zero-row update or delete to ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
