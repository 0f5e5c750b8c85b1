package session

import (
	"context"
	"fmt"

	"github.com/leavalz/Natural-Triade-Shop/internal/commerce"
	"github.com/leavalz/Natural-Triade-Shop/internal/logger"
	"github.com/leavalz/Natural-Triade-Shop/internal/metrics"
	"github.com/leavalz/Natural-Triade-Shop/internal/remote"
)

// Login exchanges credentials for a token, confirms it by fetching the
// identity, then commits both. Any failure leaves the previous state as it
// was and a token that was issued but not confirmed is dropped.
func (s *Store) Login(ctx context.Context, usernameOrEmail, password string) error {
	s.beginLoading()
	defer s.endLoading()

	token, err := s.remote.Login(ctx, usernameOrEmail, password)
	if err != nil {
		return s.loginFailed(usernameOrEmail, err)
	}

	identity, err := s.remote.Me(ctx, token)
	if err != nil {
		return s.loginFailed(usernameOrEmail, fmt.Errorf("session: confirm identity: %w", err))
	}

	s.txMu.Lock()
	prevToken, _ := s.Credential()
	if err := s.persist(ctx, token, identity, prevToken); err != nil {
		s.txMu.Unlock()
		return s.loginFailed(usernameOrEmail, err)
	}

	s.mu.Lock()
	s.credential = token
	s.identity = identity
	s.mu.Unlock()
	s.txMu.Unlock()

	metrics.ObserveSession(metrics.EventLogin)
	logger.Info("login succeeded", map[string]any{
		"username": identity.Username,
		"role":     identity.Role,
	})
	s.notifier.Success(msgLoggedIn)
	return nil
}

func (s *Store) loginFailed(usernameOrEmail string, err error) error {
	metrics.ObserveSession(metrics.EventLoginFailure)
	logger.Warn("login failed", map[string]any{
		"username": usernameOrEmail,
		"error":    err.Error(),
	})
	s.notifier.Error(remote.Detail(err, msgLoginFailed))
	return err
}

// Register forwards profile to the commerce API. It never logs in.
func (s *Store) Register(ctx context.Context, profile commerce.Profile) error {
	s.beginLoading()
	defer s.endLoading()

	if err := s.remote.Register(ctx, profile); err != nil {
		logger.Warn("registration rejected", map[string]any{
			"username": profile.Username,
			"error":    err.Error(),
		})
		s.notifier.Error(remote.Detail(err, msgRegisterFailed))
		return fmt.Errorf("session: register: %w", err)
	}

	logger.Info("registration accepted", map[string]any{
		"username": profile.Username,
	})
	s.notifier.Success(msgRegistered)
	return nil
}

// Logout ends the session unconditionally. Durable failures are logged; the
// in-memory session is cleared regardless.
func (s *Store) Logout(ctx context.Context) {
	s.txMu.Lock()
	s.discardDurable(ctx)

	s.mu.Lock()
	username := ""
	if s.identity != nil {
		username = s.identity.Username
	}
	s.credential = ""
	s.identity = nil
	s.mu.Unlock()
	s.txMu.Unlock()

	s.runEnd(ctx)

	metrics.ObserveSession(metrics.EventLogout)
	logger.Info("logged out", map[string]any{
		"username": username,
	})
	s.notifier.Success(msgLoggedOut)
}

// Expire moves to anonymous after the server rejected credential. It is a
// no-op when the store no longer holds that credential, so a late rejection
// of an old token cannot end a newer session.
func (s *Store) Expire(ctx context.Context, credential string) {
	s.txMu.Lock()
	current, ok := s.Credential()
	if !ok || current != credential {
		s.txMu.Unlock()
		return
	}

	s.discardDurable(ctx)

	s.mu.Lock()
	s.credential = ""
	s.identity = nil
	s.mu.Unlock()
	s.txMu.Unlock()

	s.runEnd(ctx)

	metrics.ObserveSession(metrics.EventExpired)
	logger.Warn("session credential rejected by server", nil)
	s.notifier.Error(msgSessionExpired)
}
