package session

import (
	"context"
	"errors"

	apperrors "github.com/jrsteele09/go-sales-client/internal/errors"
	"github.com/jrsteele09/go-sales-client/token"
	"github.com/jrsteele09/go-sales-client/users"
)

const (
	reasonNoCredential = "no stored credential"
	reasonPartial      = "partial stored credential"
	reasonStoreRead    = "store read failed"
	reasonVerification = "verification failed"
)

// Resolve reconciles the stored credential with the backend and ends the
// Resolving state. Failures are not returned: they become the Anonymous
// state. It runs at most once; later calls return ErrAlreadyResolved.
func (s *Session) Resolve(ctx context.Context) error {
	if !s.resolveStarted.CompareAndSwap(false, true) {
		return apperrors.ErrAlreadyResolved
	}

	s.mu.Lock()
	s.resolveGeneration = s.generation
	s.mu.Unlock()

	cred, reason := s.resolve(ctx)
	s.finishResolve(cred, reason)
	return nil
}

// Start runs Resolve in the background. Use Ready or Wait to observe the end.
func (s *Session) Start(ctx context.Context) {
	go func() {
		if err := s.Resolve(ctx); err != nil {
			s.logger.Debug().Err(err).Msg("resolve skipped")
		}
	}()
}

// Ready is closed once resolution has finished
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// Wait blocks until resolution has finished or ctx is done
func (s *Session) Wait(ctx context.Context) (State, error) {
	select {
	case <-s.ready:
		return s.State(), nil
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}

// resolve returns the stored token paired with the verified user, or nil
// with the reason it gave up
func (s *Session) resolve(ctx context.Context) (*token.StoredCredential, string) {
	cred, err := s.store.Read()
	if err != nil {
		s.logger.Error().Err(err).Msg("reading stored credential")
		return nil, reasonStoreRead
	}
	if cred.Empty() {
		return nil, reasonNoCredential
	}
	if !cred.Complete() {
		return nil, reasonPartial
	}

	if s.resolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.resolveTimeout)
		defer cancel()
	}

	user, err := s.auth.Me(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = errors.Join(apperrors.ErrResolveTimeout, err)
		}
		s.logger.Warn().Err(err).Msg("stored credential rejected")
		return nil, reasonVerification
	}
	if user == nil {
		return nil, reasonVerification
	}
	return &token.StoredCredential{Token: cred.Token, User: copyUser(user)}, ""
}

func (s *Session) finishResolve(cred *token.StoredCredential, reason string) {
	var user *users.User
	if cred != nil {
		user = cred.User
	}

	s.mu.Lock()
	superseded := s.generation != s.resolveGeneration
	if !superseded {
		switch {
		case cred != nil:
			// refresh the cached profile, the token is unchanged
			if err := s.store.Write(*cred); err != nil {
				s.logger.Error().Err(err).Msg("refreshing cached user")
			}
		case reason != reasonNoCredential:
			s.clearStoreLocked(reason)
		}
		s.setUserLocked(user)
	}
	s.state.Loading = false
	s.mu.Unlock()
	close(s.ready)

	switch {
	case superseded:
		s.logger.Debug().Msg("resolution superseded by a login or logout")
	case user != nil:
		s.metrics.Transition("authenticated", "resolve")
		s.logger.Info().Str("email", user.Email).Str("role", string(user.Role)).Msg("session restored")
	default:
		s.metrics.Transition("anonymous", "resolve")
		s.logger.Info().Str("reason", reason).Msg("starting anonymous")
	}
}
