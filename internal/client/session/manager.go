// Package session owns the client's belief about who is logged in.
//
// A single Manager is created per process and injected into every component
// that needs it. It is the only writer of the credential store and the
// request pipeline reads the credential through it; all state changes go
// through Login, Logout, RefreshProfile, Invalidate, Bootstrap and Get.
// Within each operation the store is written before the new State becomes
// observable, so no reader sees StatusAuthenticated without a stored
// credential.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/scholarhub/internal/client/api"
	"github.com/dmitrijs2005/scholarhub/internal/client/models"
	"github.com/dmitrijs2005/scholarhub/internal/client/store"
	"github.com/dmitrijs2005/scholarhub/internal/logging"
)

var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrAlreadyBootstrapped = errors.New("session already bootstrapped")
	ErrProfileMismatch     = errors.New("profile belongs to another user")
)

// AuthAPI is the subset of the REST client the session needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (string, error)
	Verify(ctx context.Context) (bool, error)
	Me(ctx context.Context) (*models.UserSummary, error)
}

type Option func(*Manager)

// WithStrictRestore keeps the session in StatusRestoring during bootstrap
// until the server has confirmed the stored credential, instead of trusting
// the cached profile right away.
func WithStrictRestore(strict bool) Option {
	return func(m *Manager) { m.strict = strict }
}

type Manager struct {
	store  store.CredentialStore
	api    AuthAPI
	log    logging.Logger
	strict bool

	mu      sync.Mutex
	state   State
	token   string
	started bool

	// notifyMu serializes listener calls; delivered is the Seq of the
	// newest snapshot handed out, older ones are dropped.
	notifyMu  sync.Mutex
	delivered uint64
	listeners map[int]func(State)
	nextID    int

	profiles singleflight.Group
}

func NewManager(st store.CredentialStore, a AuthAPI, log logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:     st,
		api:       a,
		log:       log,
		state:     State{Status: StatusRestoring},
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Subscribe registers fn to receive every later snapshot, in transition
// order. fn runs synchronously on the goroutine that caused the transition
// and must not call back into the Manager.
func (m *Manager) Subscribe(fn func(State)) (cancel func()) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return func() {
		m.notifyMu.Lock()
		defer m.notifyMu.Unlock()
		delete(m.listeners, id)
	}
}

// transition replaces the state. Callers hold m.mu and pass the returned
// snapshot to publish after unlocking.
func (m *Manager) transition(next State) State {
	next.Seq = m.state.Seq + 1
	m.state = next
	return next.clone()
}

func (m *Manager) publish(s State) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	if s.Seq <= m.delivered {
		return
	}
	m.delivered = s.Seq
	for _, fn := range m.listeners {
		fn(s.clone())
	}
}

// Login authenticates against the server, persists the credential and then
// moves to StatusAuthenticated. On failure the current state is kept and the
// classified api error is returned.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.log.Info(ctx, "login failed", "email", email, "error", err)
		return err
	}

	cred := models.Credential{Token: resp.Token, Profile: resp.User}

	m.mu.Lock()
	if err := m.store.Put(ctx, cred); err != nil {
		m.mu.Unlock()
		m.log.Error(ctx, "could not persist credential", "error", err)
		return fmt.Errorf("login: %w", err)
	}
	m.token = cred.Token
	user := cred.Profile
	snap := m.transition(State{Status: StatusAuthenticated, User: &user})
	m.mu.Unlock()

	m.log.Info(ctx, "logged in", "user_id", user.ID, "role", user.Role)
	m.publish(snap)
	return nil
}

// Get returns the credential to attach to an outgoing request, read from the
// store at call time so nothing cleared by Logout or Invalidate is ever sent.
// Unreadable stored data ends the session here: the store is wiped and the
// state moves to StatusAnonymous without a pending error.
func (m *Manager) Get(ctx context.Context) (*models.Credential, error) {
	m.mu.Lock()
	cred, err := m.store.Peek(ctx)
	if !errors.Is(err, store.ErrCorruptLocalState) {
		m.mu.Unlock()
		return cred, err
	}

	m.log.Warn(ctx, "discarding stored credential", "error", err)
	if cerr := m.store.Clear(ctx); cerr != nil {
		m.mu.Unlock()
		m.log.Error(ctx, "could not clear corrupt credential", "error", cerr)
		return nil, fmt.Errorf("clear corrupt credential: %w", cerr)
	}
	m.token = ""

	var snap State
	changed := m.state.Status != StatusAnonymous
	if changed {
		snap = m.transition(State{Status: StatusAnonymous})
	}
	m.mu.Unlock()

	if changed {
		m.log.Info(ctx, "session ended, stored credential was unreadable")
		m.publish(snap)
	}
	return nil, nil
}

// Register creates an account. It never touches the session.
func (m *Manager) Register(ctx context.Context, req api.RegisterRequest) (string, error) {
	msg, err := m.api.Register(ctx, req)
	if err != nil {
		m.log.Info(ctx, "registration failed", "email", req.Email, "error", err)
		return "", err
	}
	return msg, nil
}

// Logout clears the stored credential and moves to StatusAnonymous. It needs
// no network and is idempotent. A store failure is returned, but the
// in-memory session is ended regardless.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	err := m.store.Clear(ctx)
	m.token = ""

	var snap State
	changed := m.state.Status != StatusAnonymous || m.state.PendingError != nil
	if changed {
		snap = m.transition(State{Status: StatusAnonymous})
	}
	m.mu.Unlock()

	if err != nil {
		m.log.Error(ctx, "could not clear credential", "error", err)
		err = fmt.Errorf("logout: %w", err)
	}
	if changed {
		m.log.Info(ctx, "logged out")
		m.publish(snap)
	}
	return err
}

// Invalidate is the forced logout run when the server rejects token. It only
// tears the session down while token is still the current credential, so
// several concurrent rejections, or a rejection of a credential that was
// already replaced, end the session at most once. It reports whether this
// call performed the teardown.
func (m *Manager) Invalidate(ctx context.Context, token string) bool {
	m.mu.Lock()
	if token == "" || m.token != token {
		m.mu.Unlock()
		return false
	}

	if err := m.store.Clear(ctx); err != nil {
		m.log.Error(ctx, "could not clear rejected credential", "error", err)
	}
	m.token = ""
	snap := m.transition(State{Status: StatusAnonymous, PendingError: api.ErrSessionExpired})
	m.mu.Unlock()

	m.log.Warn(ctx, "session invalidated by server")
	m.publish(snap)
	return true
}

// RefreshProfile replaces the cached profile in both the store and the
// state, keeping the token. The profile is replaced whole.
func (m *Manager) RefreshProfile(ctx context.Context, profile models.UserSummary) error {
	m.mu.Lock()
	snap, err := m.refreshLocked(ctx, m.token, profile)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	m.publish(snap)
	return nil
}

func (m *Manager) refreshLocked(ctx context.Context, token string, profile models.UserSummary) (State, error) {
	if m.state.Status != StatusAuthenticated || m.token == "" || m.token != token {
		return State{}, ErrNotAuthenticated
	}
	if err := profile.Validate(); err != nil {
		return State{}, fmt.Errorf("refresh profile: %w", err)
	}
	if m.state.User != nil && m.state.User.ID != profile.ID {
		return State{}, ErrProfileMismatch
	}

	if err := m.store.Put(ctx, models.Credential{Token: token, Profile: profile}); err != nil {
		return State{}, fmt.Errorf("refresh profile: %w", err)
	}
	return m.transition(State{Status: StatusAuthenticated, User: &profile}), nil
}

// ReloadProfile fetches the profile from the server and stores it with
// RefreshProfile semantics. Concurrent calls share one request.
func (m *Manager) ReloadProfile(ctx context.Context) error {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()
	if token == "" {
		return ErrNotAuthenticated
	}

	v, err, _ := m.profiles.Do(token, func() (any, error) {
		return m.api.Me(ctx)
	})
	if err != nil {
		return err
	}
	profile := *(v.(*models.UserSummary))

	m.mu.Lock()
	snap, err := m.refreshLocked(ctx, token, profile)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	m.publish(snap)
	return nil
}
