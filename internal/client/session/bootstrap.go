package session

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/scholarhub/internal/client/api"
	"github.com/dmitrijs2005/scholarhub/internal/client/models"
)

// Bootstrap restores the session from the credential store. It runs once per
// Manager; later calls return ErrAlreadyBootstrapped.
//
// With an empty store the session becomes anonymous immediately and no
// request is made. Otherwise the cached profile is published as
// authenticated right away (unless strict restore is on) and the credential
// is verified against the server in the background. A 401 or a
// {"valid": false} answer ends the session; an unreachable or failing server
// leaves it in place.
//
// The returned channel is closed once the sequence, including verification,
// has finished.
func (m *Manager) Bootstrap(ctx context.Context) (<-chan struct{}, error) {
	done := make(chan struct{})

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil, ErrAlreadyBootstrapped
	}
	m.started = true

	cred, err := m.store.Get(ctx)
	if err != nil || cred == nil {
		snap := m.transition(State{Status: StatusAnonymous, PendingError: err})
		m.mu.Unlock()

		if err != nil {
			m.log.Error(ctx, "could not read stored credential", "error", err)
		} else {
			m.log.Debug(ctx, "no stored credential")
		}
		m.publish(snap)
		close(done)
		return done, err
	}

	m.token = cred.Token
	var snap State
	if !m.strict {
		user := cred.Profile
		snap = m.transition(State{Status: StatusAuthenticated, User: &user})
	}
	m.mu.Unlock()

	if !m.strict {
		m.log.Info(ctx, "session restored from cache", "user_id", cred.Profile.ID)
		m.publish(snap)
	}

	go func() {
		defer close(done)
		m.verify(ctx, *cred)
	}()
	return done, nil
}

func (m *Manager) verify(ctx context.Context, cred models.Credential) {
	valid, err := m.api.Verify(ctx)

	switch {
	case err == nil && valid:
		m.log.Debug(ctx, "stored credential verified")
		m.settle(ctx, cred, nil)

	case err == nil, errors.Is(err, api.ErrSessionExpired):
		if m.Invalidate(ctx, cred.Token) {
			m.log.Info(ctx, "stored credential rejected by server")
		}

	default:
		m.log.Warn(ctx, "could not verify stored credential", "error", err)
		m.settle(ctx, cred, err)
	}
}

// settle publishes the restored session when it is still pending (strict
// restore) or records a verification problem on it. Nothing happens when the
// credential was replaced in the meantime.
func (m *Manager) settle(ctx context.Context, cred models.Credential, verifyErr error) {
	m.mu.Lock()
	if m.token != cred.Token {
		m.mu.Unlock()
		return
	}

	var snap State
	switch m.state.Status {
	case StatusRestoring:
		user := cred.Profile
		snap = m.transition(State{Status: StatusAuthenticated, User: &user, PendingError: verifyErr})
	case StatusAuthenticated:
		if verifyErr == nil {
			m.mu.Unlock()
			return
		}
		snap = m.transition(State{Status: StatusAuthenticated, User: m.state.User, PendingError: verifyErr})
	case StatusAnonymous:
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.log.Info(ctx, "session restored", "user_id", cred.Profile.ID, "verified", verifyErr == nil)
	m.publish(snap)
}
