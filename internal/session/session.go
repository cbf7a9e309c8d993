// Package session owns the client-side authentication lifecycle: the current
// user, the silent-refresh protocol and the refresh-then-retry policy for
// authenticated operations.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/and161185/phonebook/internal/api"
	"github.com/and161185/phonebook/internal/model"
)

// Status is the session lifecycle state.
type Status int

const (
	// Uninitialized means no bootstrap has run yet (or an explicit logout reset it).
	Uninitialized Status = iota
	// Loading is the one blocking state: the initial bootstrap is in flight.
	Loading
	// Refreshing is a background sub-state; it must not gate the whole UI.
	Refreshing
	// Ready means the bootstrap (or a later auth operation) has resolved,
	// authenticated or not.
	Ready
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Refreshing:
		return "refreshing"
	case Ready:
		return "ready"
	default:
		return "uninitialized"
	}
}

// State is a point-in-time snapshot of the session.
// Invariant: Authenticated implies User != nil.
type State struct {
	User          *model.User
	Authenticated bool
	Status        Status
	LastError     string
}

// Store is the session state container. All mutation goes through its
// operations; snapshots are returned by value.
type Store struct {
	api *api.Client
	log *zap.Logger

	mu    sync.Mutex
	state State

	// refresh serializes overlapping silent-refresh attempts: concurrent
	// unauthorized callers await the same in-flight request instead of
	// stampeding the refresh endpoint.
	refresh singleflight.Group
}

// New creates an uninitialized session store bound to the given API client.
func New(client *api.Client, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{api: client, log: log, state: State{Status: Uninitialized}}
}

// Snapshot returns the current session state by value.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Bootstrap runs the one-time initial silent refresh. A failure here is the
// expected steady state for an anonymous visitor, not an escalation: the
// session simply resolves to Ready/unauthenticated with the message recorded.
func (s *Store) Bootstrap(ctx context.Context) State {
	s.setStatus(Loading)

	user, err := s.api.GenerateToken(ctx)
	if err != nil {
		s.log.Debug("bootstrap resolved unauthenticated", zap.Error(err))
		return s.resolveUnauthenticated(err.Error())
	}
	return s.resolveAuthenticated(user)
}

// Refresh silently renews the access token. Overlapping calls share one
// in-flight request. On failure the session drops to unauthenticated and the
// error is recorded.
func (s *Store) Refresh(ctx context.Context) error {
	_, err, _ := s.refresh.Do("refresh", func() (any, error) {
		s.setStatus(Refreshing)

		user, err := s.api.GenerateToken(ctx)
		if err != nil {
			s.log.Debug("refresh failed", zap.Error(err))
			s.resolveUnauthenticated(err.Error())
			return nil, err
		}
		s.resolveAuthenticated(user)
		return nil, nil
	})
	return err
}

// SignIn exchanges credentials for an authenticated session. On failure the
// server message is recorded and the session stays unauthenticated.
func (s *Store) SignIn(ctx context.Context, creds api.Credentials) error {
	s.setStatus(Loading)
	user, err := s.api.Login(ctx, creds)
	if err != nil {
		s.resolveUnauthenticated(err.Error())
		return err
	}
	s.log.Info("signed in", zap.String("user", user.DisplayName()))
	s.resolveAuthenticated(user)
	return nil
}

// SignUp registers an account; on success it behaves like a successful sign-in.
func (s *Store) SignUp(ctx context.Context, p api.Profile) error {
	s.setStatus(Loading)
	user, err := s.api.Register(ctx, p)
	if err != nil {
		s.resolveUnauthenticated(err.Error())
		return err
	}
	s.log.Info("registered", zap.String("user", user.DisplayName()))
	s.resolveAuthenticated(user)
	return nil
}

// SignOut calls the logout endpoint and forces the local session to
// unauthenticated regardless of the outcome; logout never leaves the client
// in an ambiguous authenticated state.
func (s *Store) SignOut(ctx context.Context) error {
	err := s.api.Logout(ctx)
	if err != nil {
		s.log.Warn("server logout failed, clearing local session anyway", zap.Error(err))
	}
	s.ForceLogout()
	return err
}

// ForceLogout resets the session to Uninitialized/unauthenticated and drops
// held cookies without contacting the server.
func (s *Store) ForceLogout() {
	s.api.ResetSession()
	s.mu.Lock()
	s.state = State{Status: Uninitialized}
	s.mu.Unlock()
}

func (s *Store) setStatus(st Status) {
	s.mu.Lock()
	s.state.Status = st
	s.state.LastError = ""
	s.mu.Unlock()
}

func (s *Store) resolveAuthenticated(user *model.User) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{User: user, Authenticated: true, Status: Ready}
	return s.state
}

func (s *Store) resolveUnauthenticated(msg string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{Status: Ready, LastError: msg}
	return s.state
}
