// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/tomtom215/crowdanalyzer/internal/config"
	"github.com/tomtom215/crowdanalyzer/internal/logging"
	"github.com/tomtom215/crowdanalyzer/internal/metrics"
	"github.com/tomtom215/crowdanalyzer/internal/models"
)

// Provider is one OpenID Connect login provider. Discovery runs on first
// use so the server starts without reaching the network.
type Provider struct {
	name    string
	cfg     config.OAuthProviderConfig
	client  *http.Client
	states  *StateStore
	breaker *gobreaker.CircuitBreaker[any]

	mu sync.Mutex
	rp rp.RelyingParty
}

// NewProvider creates a provider. cfg must be enabled.
func NewProvider(name string, cfg config.OAuthProviderConfig, states *StateStore) *Provider {
	p := &Provider{
		name:   name,
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		states: states,
	}

	breakerName := "oauth_" + name
	p.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String(), breakerStateValue(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("OAuth circuit breaker state changed")
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	return p
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Name returns the provider key, e.g. "google".
func (p *Provider) Name() string {
	return p.name
}

// execute runs fn through the breaker and records the outcome.
func (p *Provider) execute(fn func() (any, error)) (any, error) {
	result, err := p.breaker.Execute(fn)
	label := "success"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		label = "rejected"
	case err != nil:
		label = "failure"
	}
	metrics.CircuitBreakerRequests.WithLabelValues(p.breaker.Name(), label).Inc()
	return result, err
}

// relyingParty returns the discovered client, performing discovery once.
// A failed discovery is retried on the next call.
func (p *Provider) relyingParty(ctx context.Context) (rp.RelyingParty, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rp != nil {
		return p.rp, nil
	}

	scopes := p.cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail}
	}

	result, err := p.execute(func() (any, error) {
		return rp.NewRelyingPartyOIDC(ctx,
			p.cfg.Issuer,
			p.cfg.ClientID,
			p.cfg.ClientSecret,
			p.cfg.CallbackURL,
			scopes,
			rp.WithHTTPClient(p.client),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("%s discovery: %w", p.name, err)
	}
	p.rp = result.(rp.RelyingParty)
	return p.rp, nil
}

// AuthURL issues a state and returns the provider's authorization URL.
func (p *Provider) AuthURL(ctx context.Context) (string, error) {
	relyingParty, err := p.relyingParty(ctx)
	if err != nil {
		return "", err
	}
	state, err := p.states.Issue(p.name)
	if err != nil {
		return "", err
	}
	return rp.AuthURL(state, relyingParty), nil
}

// Exchange validates the callback state and trades code for the user's
// verified identity.
func (p *Provider) Exchange(ctx context.Context, code, state string) (*Identity, error) {
	if err := p.states.Consume(p.name, state); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, fmt.Errorf("%w: missing code", ErrTokenExchangeFailed)
	}

	relyingParty, err := p.relyingParty(ctx)
	if err != nil {
		return nil, err
	}

	result, err := p.execute(func() (any, error) {
		return rp.CodeExchange[*oidc.IDTokenClaims](ctx, code, relyingParty)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenExchangeFailed, err)
	}

	tokens := result.(*oidc.Tokens[*oidc.IDTokenClaims])
	if tokens.IDTokenClaims == nil || tokens.IDTokenClaims.Subject == "" {
		return nil, fmt.Errorf("%w: no id token claims", ErrTokenExchangeFailed)
	}
	claims := tokens.IDTokenClaims
	return &Identity{
		Provider:      p.name,
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: bool(claims.EmailVerified),
		Name:          claims.Name,
	}, nil
}

// Providers indexes the configured OAuth providers by name.
type Providers struct {
	byName map[string]*Provider
	states *StateStore
}

// NewProviders builds the enabled providers from cfg.
func NewProviders(cfg config.OAuthConfig) *Providers {
	states := NewStateStore(cfg.StateTTL)
	ps := &Providers{
		byName: make(map[string]*Provider),
		states: states,
	}
	if cfg.Google.Enabled() {
		ps.byName[models.ProviderGoogle] = NewProvider(models.ProviderGoogle, cfg.Google, states)
	}
	if cfg.LinkedIn.Enabled() {
		ps.byName[models.ProviderLinkedIn] = NewProvider(models.ProviderLinkedIn, cfg.LinkedIn, states)
	}
	return ps
}

// Get returns the named provider or ErrProviderNotConfigured.
func (ps *Providers) Get(name string) (*Provider, error) {
	p, ok := ps.byName[name]
	if !ok {
		return nil, ErrProviderNotConfigured
	}
	return p, nil
}

// States returns the shared state store.
func (ps *Providers) States() *StateStore {
	return ps.states
}
