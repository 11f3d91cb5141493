// Package session tracks who is logged in. Identity is derived from the
// stored access token and is never persisted on its own.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/naveenspark/marquee/pkg/client"
	"github.com/naveenspark/marquee/pkg/domain"
	"github.com/naveenspark/marquee/pkg/tokenstore"
)

// ErrNotAuthenticated is returned by Require when nobody is logged in.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// State is the authentication state.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// AuthAPI is the subset of the API client the session needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.AuthTokens, error)
	Register(ctx context.Context, r client.RegisterRequest) (*domain.AuthTokens, error)
	Logout(ctx context.Context) error
}

// Manager owns the session state machine. It is safe for concurrent use;
// listeners run on the goroutine that caused the change.
type Manager struct {
	api   AuthAPI
	store tokenstore.Store
	log   zerolog.Logger

	mu        sync.Mutex
	identity  *domain.Identity
	listeners map[int]func(*domain.Identity)
	nextID    int
}

// New creates an anonymous session. Call Restore to pick up stored tokens.
func New(api AuthAPI, store tokenstore.Store, log zerolog.Logger) *Manager {
	return &Manager{
		api:       api,
		store:     store,
		log:       log.With().Str("component", "session").Logger(),
		listeners: make(map[int]func(*domain.Identity)),
	}
}

// Restore adopts a stored access token without a network round trip. An
// access token that does not decode is discarded and the session stays
// anonymous; the refresh token is left for the request pipeline.
func (m *Manager) Restore() *domain.Identity {
	raw, ok := m.store.Get(tokenstore.Access)
	if !ok {
		return nil
	}
	id, err := Decode(raw)
	if err != nil {
		m.log.Warn().Err(err).Msg("invalid stored access token")
		if err := m.store.Clear(tokenstore.Access); err != nil {
			m.log.Error().Err(err).Msg("clear access token")
		}
		return nil
	}
	m.set(id)
	m.log.Debug().Str("username", id.Username).Msg("session restored")
	return id
}

// Login authenticates with email and password.
func (m *Manager) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	toks, err := m.api.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("session.Login: %w", err)
	}
	id, err := m.adopt(toks)
	if err != nil {
		return nil, fmt.Errorf("session.Login: %w", err)
	}
	return id, nil
}

// Register creates an account and logs into it.
func (m *Manager) Register(ctx context.Context, r client.RegisterRequest) (*domain.Identity, error) {
	toks, err := m.api.Register(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("session.Register: %w", err)
	}
	id, err := m.adopt(toks)
	if err != nil {
		return nil, fmt.Errorf("session.Register: %w", err)
	}
	return id, nil
}

func (m *Manager) adopt(toks *domain.AuthTokens) (*domain.Identity, error) {
	id, err := Decode(toks.Access)
	if err != nil {
		return nil, err
	}
	if err := m.store.Set(tokenstore.Access, toks.Access); err != nil {
		return nil, fmt.Errorf("store access token: %w", err)
	}
	if err := m.store.Set(tokenstore.Refresh, toks.Refresh); err != nil {
		m.clearTokens()
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	m.set(id)
	m.log.Info().Str("username", id.Username).Msg("logged in")
	return id, nil
}

// Logout tells the backend and then drops the local session whatever the
// backend said. The backend error, if any, is returned for reporting only.
func (m *Manager) Logout(ctx context.Context) error {
	var backendErr error
	if _, ok := m.store.Get(tokenstore.Access); ok {
		backendErr = m.api.Logout(ctx)
		if backendErr != nil {
			m.log.Warn().Err(backendErr).Msg("backend logout failed, clearing local tokens anyway")
		}
	}
	m.clearTokens()
	m.set(nil)
	if backendErr != nil {
		return fmt.Errorf("session.Logout: %w", backendErr)
	}
	return nil
}

// Expire drops the identity after the API client has invalidated the
// tokens. Calling it on an anonymous session does nothing.
func (m *Manager) Expire() {
	if !m.Authenticated() {
		return
	}
	m.log.Warn().Msg("session expired")
	m.set(nil)
}

// Identity returns a copy of the current identity, or nil.
func (m *Manager) Identity() *domain.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return nil
	}
	id := *m.identity
	return &id
}

// State returns the current state.
func (m *Manager) State() State {
	if m.Authenticated() {
		return Authenticated
	}
	return Anonymous
}

// Authenticated reports whether someone is logged in.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity != nil
}

// Require returns the identity or ErrNotAuthenticated.
func (m *Manager) Require() (*domain.Identity, error) {
	if id := m.Identity(); id != nil {
		return id, nil
	}
	return nil, ErrNotAuthenticated
}

// Subscribe registers fn to be called with the new identity (nil when
// logged out) on every change. The returned func unregisters it.
func (m *Manager) Subscribe(fn func(*domain.Identity)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	key := m.nextID
	m.listeners[key] = fn
	return func() {
		m.mu.Lock()
		delete(m.listeners, key)
		m.mu.Unlock()
	}
}

func (m *Manager) set(id *domain.Identity) {
	m.mu.Lock()
	if m.identity == nil && id == nil {
		m.mu.Unlock()
		return
	}
	m.identity = id
	fns := make([]func(*domain.Identity), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		if id == nil {
			fn(nil)
			continue
		}
		cp := *id
		fn(&cp)
	}
}

func (m *Manager) clearTokens() {
	for _, name := range []string{tokenstore.Access, tokenstore.Refresh} {
		if err := m.store.Clear(name); err != nil {
			m.log.Error().Err(err).Str("token", name).Msg("clear token")
		}
	}
}
