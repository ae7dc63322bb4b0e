// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/crowdanalyzer/internal/database"
	"github.com/tomtom215/crowdanalyzer/internal/logging"
	"github.com/tomtom215/crowdanalyzer/internal/metrics"
	"github.com/tomtom215/crowdanalyzer/internal/models"
)

// UserStore is the subset of the database the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByProvider(ctx context.Context, provider, subject string) (*models.User, error)
	LinkProvider(ctx context.Context, userID, provider, subject string) error
}

// Identity is the verified profile returned by an OAuth provider.
type Identity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// Service registers users, checks passwords and issues tokens.
type Service struct {
	store      UserStore
	jwt        *JWTManager
	bcryptCost int
}

// NewService creates an auth service.
func NewService(store UserStore, jwtManager *JWTManager, bcryptCost int) *Service {
	return &Service{
		store:      store,
		jwt:        jwtManager,
		bcryptCost: bcryptCost,
	}
}

// JWT returns the token manager used by the service.
func (s *Service) JWT() *JWTManager {
	return s.jwt
}

func (s *Service) respond(message string, u *models.User) (*models.AuthResponse, error) {
	token, err := s.jwt.GenerateToken(u)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		Message: message,
		Token:   token,
		User:    u.Public(),
	}, nil
}

// Register creates a password account with the user role.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if _, err := s.store.GetUserByEmail(ctx, req.Email); err == nil {
		metrics.RecordAuthAttempt("register", false)
		return nil, ErrUserExists
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, database.ErrConflict) {
			metrics.RecordAuthAttempt("register", false)
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.RecordAuthAttempt("register", true)
	logging.Ctx(ctx).Info().Str("user_id", u.ID).Msg("User registered")
	return s.respond("User registered successfully", u)
}

// Login checks an email and password.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	u, err := s.store.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, database.ErrNotFound) {
		metrics.RecordAuthAttempt("password", false)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, req.Password) {
		metrics.RecordAuthAttempt("password", false)
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		metrics.RecordAuthAttempt("password", false)
		return nil, ErrInactiveUser
	}

	metrics.RecordAuthAttempt("password", true)
	return s.respond("Login successful", u)
}

// Verify returns the current record of the user a token was issued to.
func (s *Service) Verify(ctx context.Context, claims *Claims) (*models.User, error) {
	u, err := s.store.GetUserByID(ctx, claims.ID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}
	return u, nil
}

// LoginWithIdentity finds the user linked to an OAuth identity, links the
// identity to an existing account with the same email, or creates a new
// account. It returns a signed token. Linking and creation require the
// provider to have verified the email.
func (s *Service) LoginWithIdentity(ctx context.Context, id Identity) (string, *models.User, error) {
	u, err := s.store.GetUserByProvider(ctx, id.Provider, id.Subject)
	switch {
	case err == nil:
	case errors.Is(err, database.ErrNotFound):
		u, err = s.linkOrCreate(ctx, id)
		if err != nil {
			metrics.RecordAuthAttempt(id.Provider, false)
			return "", nil, err
		}
	default:
		return "", nil, err
	}

	if !u.IsActive {
		metrics.RecordAuthAttempt(id.Provider, false)
		return "", nil, ErrInactiveUser
	}

	token, err := s.jwt.GenerateToken(u)
	if err != nil {
		return "", nil, err
	}
	metrics.RecordAuthAttempt(id.Provider, true)
	return token, u, nil
}

func (s *Service) linkOrCreate(ctx context.Context, id Identity) (*models.User, error) {
	if id.Email == "" {
		return nil, fmt.Errorf("%s did not return an email address", id.Provider)
	}
	if !id.EmailVerified {
		logging.Ctx(ctx).Warn().Str("provider", id.Provider).Msg("OAuth login refused: email not verified")
		return nil, ErrEmailNotVerified
	}

	u, err := s.store.GetUserByEmail(ctx, id.Email)
	if err == nil {
		if err := s.store.LinkProvider(ctx, u.ID, id.Provider, id.Subject); err != nil {
			return nil, fmt.Errorf("failed to link %s account: %w", id.Provider, err)
		}
		setProviderID(u, id)
		logging.Ctx(ctx).Info().Str("user_id", u.ID).Str("provider", id.Provider).Msg("Linked OAuth identity")
		return u, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	name := id.Name
	if name == "" {
		name = id.Email
	}
	u = &models.User{
		Name:     name,
		Email:    id.Email,
		Role:     models.RoleUser,
		IsActive: true,
	}
	setProviderID(u, id)
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	logging.Ctx(ctx).Info().Str("user_id", u.ID).Str("provider", id.Provider).Msg("User registered via OAuth")
	return u, nil
}

func setProviderID(u *models.User, id Identity) {
	switch id.Provider {
	case models.ProviderGoogle:
		u.GoogleID = id.Subject
	case models.ProviderLinkedIn:
		u.LinkedInID = id.Subject
	}
}

// EnsureAdmin creates an admin account when email is not yet registered.
// An existing account is left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, database.ErrNotFound) {
		return err
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	u := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, u); err != nil && !errors.Is(err, database.ErrConflict) {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	logging.Info().Str("email", u.Email).Msg("Bootstrap admin account created")
	return nil
}
