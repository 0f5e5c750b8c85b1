// Package session owns the client's authentication lifecycle: the bearer
// credential, the identity it belongs to, and their durable copies.
//
// Committed state always holds both or neither. Login confirms a fresh token
// by fetching the identity before anything is written, durable writes happen
// before the in-memory transition, and a durable state found holding only one
// half is discarded at startup.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/leavalz/Natural-Triade-Shop/internal/commerce"
	"github.com/leavalz/Natural-Triade-Shop/internal/kv"
	"github.com/leavalz/Natural-Triade-Shop/internal/logger"
	"github.com/leavalz/Natural-Triade-Shop/internal/metrics"
	"github.com/leavalz/Natural-Triade-Shop/internal/notify"
)

// Durable keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

const (
	msgLoggedIn       = "Logged in"
	msgLoginFailed    = "Login failed"
	msgRegistered     = "Registration successful"
	msgRegisterFailed = "Registration failed"
	msgLoggedOut      = "Logged out"
	msgSessionExpired = "Your session has expired, please log in again"
)

var ErrInconsistentState = errors.New("session: durable state is inconsistent")

// Remote is the slice of the commerce API the session needs.
type Remote interface {
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context, token string) (*commerce.Identity, error)
	Register(ctx context.Context, profile commerce.Profile) error
}

// EndFunc runs after a session ends, by logout or by expiry.
type EndFunc func(ctx context.Context)

type Store struct {
	remote   Remote
	kv       kv.Store
	notifier notify.Notifier

	// txMu serializes commit sections (durable + memory). It is never held
	// across a remote call.
	txMu sync.Mutex

	mu         sync.RWMutex
	credential string
	identity   *commerce.Identity
	loading    int
	onEnd      []EndFunc
}

type Option func(*Store)

func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// New builds the store and rehydrates it from durable storage. No network
// call is made; a rehydrated credential may already be revoked server-side.
func New(ctx context.Context, r Remote, store kv.Store, opts ...Option) *Store {
	s := &Store{
		remote:   r,
		kv:       store,
		notifier: notify.Discard{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.rehydrate(ctx)
	return s
}

// State is a read-only snapshot for presentation.
type State struct {
	User          *commerce.Identity `json:"user"`
	Authenticated bool               `json:"authenticated"`
	IsAdmin       bool               `json:"is_admin"`
	IsLoading     bool               `json:"is_loading"`
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return State{
		User:          copyIdentity(s.identity),
		Authenticated: s.credential != "",
		IsAdmin:       s.identity.IsAdmin(),
		IsLoading:     s.loading > 0,
	}
}

func (s *Store) User() *commerce.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyIdentity(s.identity)
}

func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity.IsAdmin()
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential != ""
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// Credential implements remote.CredentialSource.
func (s *Store) Credential() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential, s.credential != ""
}

// OnEnd registers fn to run after every logout or expiry.
func (s *Store) OnEnd(fn EndFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnd = append(s.onEnd, fn)
}

func (s *Store) beginLoading() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
}

func (s *Store) endLoading() {
	s.mu.Lock()
	s.loading--
	s.mu.Unlock()
}

func copyIdentity(i *commerce.Identity) *commerce.Identity {
	if i == nil {
		return nil
	}
	cp := *i
	return &cp
}

func (s *Store) rehydrate(ctx context.Context) {
	token, tokenErr := s.kv.Get(ctx, KeyToken)
	raw, userErr := s.kv.Get(ctx, KeyUser)

	tokenMissing := errors.Is(tokenErr, kv.ErrNotFound)
	userMissing := errors.Is(userErr, kv.ErrNotFound)

	if tokenMissing && userMissing {
		return
	}

	if (tokenErr != nil && !tokenMissing) || (userErr != nil && !userMissing) {
		logger.Error("session rehydration failed", map[string]any{
			"token_error": errString(tokenErr),
			"user_error":  errString(userErr),
		})
		return
	}

	var identity commerce.Identity
	switch {
	case tokenMissing || userMissing || token == "":
		logger.Warn("discarding half-present durable session", map[string]any{
			"error":         ErrInconsistentState.Error(),
			"token_present": !tokenMissing,
			"user_present":  !userMissing,
		})
		s.discardDurable(ctx)
		return
	case json.Unmarshal([]byte(raw), &identity) != nil:
		logger.Warn("discarding unreadable durable identity", map[string]any{
			"error": ErrInconsistentState.Error(),
		})
		s.discardDurable(ctx)
		return
	}

	s.mu.Lock()
	s.credential = token
	s.identity = &identity
	s.mu.Unlock()

	metrics.ObserveSession(metrics.EventRehydrated)
	logger.Info("session rehydrated", map[string]any{
		"username": identity.Username,
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// discardDurable removes both durable keys, logging failures.
func (s *Store) discardDurable(ctx context.Context) {
	for _, key := range []string{KeyToken, KeyUser} {
		if err := s.kv.Delete(ctx, key); err != nil {
			logger.Error("failed to clear durable session key", map[string]any{
				"key":   key,
				"error": err.Error(),
			})
		}
	}
}

// persist writes token then identity. If the identity write fails the token
// key is restored to its previous value so durable state never pairs a new
// token with an old identity.
func (s *Store) persist(ctx context.Context, token string, identity *commerce.Identity, prevToken string) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("session: encode identity: %w", err)
	}

	if err := s.kv.Set(ctx, KeyToken, token); err != nil {
		return fmt.Errorf("session: persist token: %w", err)
	}

	if err := s.kv.Set(ctx, KeyUser, string(data)); err != nil {
		var rollbackErr error
		if prevToken != "" {
			rollbackErr = s.kv.Set(ctx, KeyToken, prevToken)
		} else {
			rollbackErr = s.kv.Delete(ctx, KeyToken)
		}
		if rollbackErr != nil {
			logger.Error("failed to roll back durable token", map[string]any{
				"error": rollbackErr.Error(),
			})
		}
		return fmt.Errorf("session: persist identity: %w", err)
	}

	return nil
}

func (s *Store) runEnd(ctx context.Context) {
	s.mu.RLock()
	hooks := append([]EndFunc(nil), s.onEnd...)
	s.mu.RUnlock()

	for _, fn := range hooks {
		fn(ctx)
	}
}
