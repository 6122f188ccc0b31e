// Package session owns the authenticated session: the bearer token, the
// user profile, and the persisted token file.
package session

import (
	"context"
	"sync"

	"golang.org/x/oauth2"

	"taskcli/internal/api"
	"taskcli/internal/config"
)

// API is the slice of the backend client the session store uses.
type API interface {
	Login(ctx context.Context, username, password string) (*oauth2.Token, error)
	Register(ctx context.Context, username, password string) (*oauth2.Token, error)
	Me(ctx context.Context) (api.User, error)

	// SetToken and ClearToken control the credential attached to requests.
	// The session store is the only caller.
	SetToken(tok *oauth2.Token)
	ClearToken()
}

// State is a snapshot of the session.
// Loading is true only between New and the end of Init.
type State struct {
	User    *api.User
	Token   string
	Loading bool
}

// Store holds the session for the process lifetime. It starts in the
// loading state and resolves to authenticated or anonymous during Init.
type Store struct {
	cfg *config.Config
	api API

	mu      sync.RWMutex
	user    *api.User
	token   *oauth2.Token
	loading bool
	subs    []func(State)
}

// New creates a session store in the loading state.
func New(cfg *config.Config, backend API) *Store {
	return &Store{cfg: cfg, api: backend, loading: true}
}

// Subscribe registers fn to run after every state change. Subscribers are
// invoked synchronously, in registration order.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// State returns the current session snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Authenticated reports whether a user is logged in.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Token returns the current access token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

// Init rehydrates the session from the persisted token, validating it with
// a profile fetch. A rejected token is cleared silently: the store lands in
// the anonymous state and no error is returned for it. Runs once per
// process.
func (s *Store) Init(ctx context.Context) error {
	tok, err := s.cfg.LoadToken()
	if err != nil || tok == nil || tok.AccessToken == "" {
		// Unreadable token files are treated the same as absent ones.
		s.setAnonymous()
		return nil
	}

	s.api.SetToken(tok)
	user, err := s.api.Me(ctx)
	if err != nil {
		s.api.ClearToken()
		if rmErr := s.cfg.RemoveToken(); rmErr != nil {
			s.setAnonymous()
			return rmErr
		}
		s.setAnonymous()
		return nil
	}

	s.setAuthenticated(&user, tok)
	return nil
}

// Login authenticates, persists the token, and fetches the profile.
// Errors from either call are propagated unmodified.
func (s *Store) Login(ctx context.Context, username, password string) error {
	return s.authenticate(ctx, username, password, s.api.Login)
}

// Register has the same contract as Login, via the register endpoint.
func (s *Store) Register(ctx context.Context, username, password string) error {
	return s.authenticate(ctx, username, password, s.api.Register)
}

func (s *Store) authenticate(ctx context.Context, username, password string, exchange func(context.Context, string, string) (*oauth2.Token, error)) error {
	tok, err := exchange(ctx, username, password)
	if err != nil {
		return err
	}
	if err := s.cfg.SaveToken(tok); err != nil {
		return err
	}
	s.api.SetToken(tok)

	user, err := s.api.Me(ctx)
	if err != nil {
		return err
	}

	s.setAuthenticated(&user, tok)
	return nil
}

// Logout clears the persisted token and resets to the anonymous state.
// No network call is made.
func (s *Store) Logout() error {
	err := s.cfg.RemoveToken()
	s.api.ClearToken()
	s.setAnonymous()
	return err
}

func (s *Store) setAuthenticated(user *api.User, tok *oauth2.Token) {
	s.mu.Lock()
	s.user = user
	s.token = tok
	s.loading = false
	snap := s.snapshotLocked()
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store) setAnonymous() {
	s.mu.Lock()
	s.user = nil
	s.token = nil
	s.loading = false
	snap := s.snapshotLocked()
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() State {
	st := State{Loading: s.loading}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	if s.token != nil {
		st.Token = s.token.AccessToken
	}
	return st
}
