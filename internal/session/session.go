// Package session holds the current shopkeeper identity and token, drives
// the login/register/logout lifecycle, and persists the token so a restart
// restores the authenticated state.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/sadopc/storeflow/internal/api"
)

// State is the session lifecycle position.
type State int

const (
	// StateAnonymous: no identity, no token.
	StateAnonymous State = iota
	// StateAuthenticating: a login or register call is in flight.
	StateAuthenticating
	// StateAuthenticated: identity and token are set.
	StateAuthenticated
	// StateError: the last attempt failed; routes like anonymous.
	StateError
)

// MinPasswordLength is enforced client-side before any network call.
const MinPasswordLength = 6

// Gateway is the remote API surface the session depends on.
type Gateway interface {
	Login(ctx context.Context, email, password string) (api.AuthResponse, error)
	Register(ctx context.Context, reg api.RegisterRequest) (api.AuthResponse, error)
	UpdateProfile(ctx context.Context, token string, fields api.ProfileUpdate) (api.User, error)
}

// TokenStorage is the durable storage slot for the session token.
type TokenStorage interface {
	LoadToken() (string, error)
	SaveToken(token string) error
	ClearToken() error
}

// Store owns the session state. Views hold a read reference only; all
// mutation goes through the operations below.
type Store struct {
	gw      Gateway
	storage TokenStorage

	mu      sync.Mutex
	state   State
	user    api.User
	token   string
	lastErr error
}

func New(gw Gateway, storage TokenStorage) *Store {
	return &Store{gw: gw, storage: storage, state: StateAnonymous}
}

// Restore loads a previously persisted token. With a token present the
// session starts authenticated; the identity fills in after the first
// profile-bearing fetch.
func (s *Store) Restore() error {
	token, err := s.storage.LoadToken()
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if token == "" {
		return nil
	}
	s.mu.Lock()
	s.token = token
	s.state = StateAuthenticated
	s.mu.Unlock()
	return nil
}

// Login authenticates and, on success, stores identity and token and
// persists the token.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.setState(StateAuthenticating)

	resp, err := s.gw.Login(ctx, email, password)
	if err != nil {
		s.fail(err)
		return err
	}
	return s.establish(resp)
}

// ValidateRegistration applies the client-side rules: minimum password
// length and confirmation equality. Violations never reach the network.
func ValidateRegistration(reg api.RegisterRequest, confirmPassword string) error {
	if reg.Password != confirmPassword {
		return api.NewError(api.KindValidation, "Passwords do not match!")
	}
	if len(reg.Password) < MinPasswordLength {
		return api.NewError(api.KindValidation,
			fmt.Sprintf("Password must be at least %d characters long!", MinPasswordLength))
	}
	return nil
}

// Register validates locally, then creates the account and establishes the
// session exactly like Login.
func (s *Store) Register(ctx context.Context, reg api.RegisterRequest, confirmPassword string) error {
	if err := ValidateRegistration(reg, confirmPassword); err != nil {
		s.fail(err)
		return err
	}

	s.setState(StateAuthenticating)

	resp, err := s.gw.Register(ctx, reg)
	if err != nil {
		s.fail(err)
		return err
	}
	return s.establish(resp)
}

// UpdateProfile replaces the editable identity fields in place. Email is
// immutable and is preserved. On any failure the identity is unchanged.
func (s *Store) UpdateProfile(ctx context.Context, fields api.ProfileUpdate) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		err := api.NewError(api.KindUnauthorized, "You must be logged in to update your profile")
		s.recordErr(err)
		return err
	}

	user, err := s.gw.UpdateProfile(ctx, token, fields)
	if err != nil {
		s.recordErr(err)
		return err
	}

	s.mu.Lock()
	email := s.user.Email
	s.user = user
	if s.user.Email == "" {
		s.user.Email = email
	}
	s.lastErr = nil
	s.mu.Unlock()
	return nil
}

// Logout clears the token and identity unconditionally. Calling it on an
// anonymous session is a no-op.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.state = StateAnonymous
	s.user = api.User{}
	s.token = ""
	s.lastErr = nil
	s.mu.Unlock()

	if err := s.storage.ClearToken(); err != nil {
		return fmt.Errorf("clear persisted token: %w", err)
	}
	return nil
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateAuthenticated
}

func (s *Store) User() api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Err returns the failure recorded by the most recent operation, if any.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Store) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	s.state = StateError
	s.lastErr = err
	s.mu.Unlock()
}

func (s *Store) recordErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func (s *Store) establish(resp api.AuthResponse) error {
	s.mu.Lock()
	s.user = resp.User
	s.token = resp.Token
	s.state = StateAuthenticated
	s.lastErr = nil
	s.mu.Unlock()

	if err := s.storage.SaveToken(resp.Token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}
