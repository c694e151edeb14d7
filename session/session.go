// Package session owns the process-wide authentication state. It is the only
// writer of the token store: login writes the credential, logout and
// authorization failures clear it.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-sales-client/gateway"
	apperrors "github.com/jrsteele09/go-sales-client/internal/errors"
	"github.com/jrsteele09/go-sales-client/internal/metrics"
	"github.com/jrsteele09/go-sales-client/token"
	"github.com/jrsteele09/go-sales-client/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// LoginPath is where the session sends the user after a forced teardown
	LoginPath = "/login"

	DefaultResolveTimeout = 10 * time.Second
)

// Authenticator is the part of the backend the session talks to
type Authenticator interface {
	Login(ctx context.Context, creds users.Credentials) (*gateway.LoginResponse, error)
	Me(ctx context.Context) (*users.User, error)
}

var _ Authenticator = (*gateway.Client)(nil)

type Session struct {
	store          token.Store
	auth           Authenticator
	logger         zerolog.Logger
	navigate       func(path string)
	resolveTimeout time.Duration
	metrics        *metrics.Metrics

	mu    sync.RWMutex
	state State
	// generation changes on every login, logout and teardown so a slow
	// resolver cannot overwrite a newer outcome
	generation        uint64
	resolveGeneration uint64

	resolveStarted atomic.Bool
	ready          chan struct{}
}

type Option func(*Session)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithNavigator sets the callback used to force navigation after an
// authorization failure
func WithNavigator(fn func(path string)) Option {
	return func(s *Session) {
		s.navigate = fn
	}
}

// WithResolveTimeout bounds the startup /auth/me call. Zero disables the bound.
func WithResolveTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.resolveTimeout = d
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// New creates a session in the Resolving state. Call Resolve or Start once
// to leave it.
func New(store token.Store, auth Authenticator, opts ...Option) *Session {
	s := &Session{
		store:          store,
		auth:           auth,
		logger:         log.Logger,
		navigate:       func(string) {},
		resolveTimeout: DefaultResolveTimeout,
		state:          State{Loading: true},
		ready:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the current session
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns the authenticated user, or nil
func (s *Session) User() *users.User {
	return s.State().User
}

// Login exchanges credentials for a token, persists it and marks the session
// authenticated. A rejection is returned unchanged so the backend's detail
// message reaches the caller, and the session is left as it was.
func (s *Session) Login(ctx context.Context, creds users.Credentials) error {
	resp, err := s.auth.Login(ctx, creds)
	if err != nil {
		s.logger.Info().Str("email", creds.Email).Err(err).Msg("login rejected")
		return err
	}
	if resp.User == nil || resp.AccessToken == "" {
		return apperrors.Wrapf(apperrors.ErrInternal, "[Session Login] incomplete login response")
	}

	cred := token.StoredCredential{Token: resp.AccessToken, User: copyUser(resp.User)}

	s.mu.Lock()
	if err := s.store.Write(cred); err != nil {
		s.mu.Unlock()
		return apperrors.Wrapf(err, "[Session Login] persisting credential")
	}
	s.generation++
	s.setUserLocked(cred.User)
	s.mu.Unlock()

	s.metrics.Transition("authenticated", "login")
	s.logger.Info().Str("email", cred.User.Email).Str("role", string(cred.User.Role)).Msg("logged in")
	return nil
}

// Logout clears the stored credential and the in-memory user. It never
// fails; storage errors are logged.
func (s *Session) Logout() {
	s.mu.Lock()
	s.generation++
	s.clearStoreLocked("logout")
	s.setUserLocked(nil)
	s.mu.Unlock()

	s.metrics.Transition("anonymous", "logout")
	s.logger.Info().Msg("logged out")
}

// HandleAuthFailure tears the session down after the backend rejected the
// stored token. Subscribe it to the gateway with OnAuthFailure.
func (s *Session) HandleAuthFailure(f gateway.AuthFailure) {
	s.mu.Lock()
	if s.state.Loading {
		// the resolver owns the outcome; only drop a credential it is still checking
		if s.generation == s.resolveGeneration {
			s.clearStoreLocked("auth failure")
		}
		s.mu.Unlock()
		s.logger.Debug().Str("path", f.Path).Msg("authorization failure while resolving")
		return
	}
	s.generation++
	s.clearStoreLocked("auth failure")
	s.setUserLocked(nil)
	s.mu.Unlock()

	s.metrics.Transition("anonymous", "auth_failure")
	s.logger.Warn().Str("method", f.Method).Str("path", f.Path).Str("request_id", f.RequestID).Msg("session expired, redirecting to login")
	s.navigate(LoginPath)
}

func (s *Session) setUserLocked(u *users.User) {
	s.state.User = u
	s.state.Authenticated = u != nil
}

func (s *Session) clearStoreLocked(reason string) {
	if err := s.store.Clear(); err != nil {
		s.logger.Error().Err(err).Str("reason", reason).Msg("clearing token store")
	}
}

func copyUser(u *users.User) *users.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
