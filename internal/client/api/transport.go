// Package api is the client's only path to the REST service.
//
// Transport is an http.RoundTripper decorator composed once around the real
// transport. For every request it, in order:
//
//  1. reads the current credential and attaches "Authorization: Bearer <token>"
//     unless the request is marked anonymous;
//  2. sends the request through the wrapped transport;
//  3. on a 401 answer to a request that carried a credential, asks the
//     session to invalidate that credential and, if this tore a session down,
//     navigates to the login route;
//  4. returns the response unchanged to the caller.
//
// Client builds the typed REST calls on top of it.
package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/scholarhub/internal/client/models"
	"github.com/dmitrijs2005/scholarhub/internal/logging"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
)

// CredentialReader yields the credential to send. In the client it is the
// session manager, which reads the store on every call.
type CredentialReader interface {
	Get(ctx context.Context) (*models.Credential, error)
}

// Invalidator performs the forced-logout transition. It must tear down only
// when token is still the current credential and report whether it did.
type Invalidator interface {
	Invalidate(ctx context.Context, token string) bool
}

// Navigator exposes the client's current route and lets the pipeline move
// the user to another one.
type Navigator interface {
	Current() string
	Navigate(route string)
}

type anonymousKey struct{}

// Anonymous marks ctx so that requests made with it never carry the stored
// credential. Login and registration use it.
func Anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

func isAnonymous(ctx context.Context) bool {
	v, _ := ctx.Value(anonymousKey{}).(bool)
	return v
}

type Transport struct {
	base http.RoundTripper
	log  logging.Logger

	mu          sync.RWMutex
	creds       CredentialReader
	invalidator Invalidator
	navigator   Navigator
	loginRoute  string
}

// NewTransport wraps base. creds may be nil and installed later with
// SetCredentials when the reader itself depends on the client.
func NewTransport(base http.RoundTripper, creds CredentialReader, log logging.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base, creds: creds, log: log}
}

// SetCredentials replaces the credential source. With none installed requests
// go out without a credential.
func (t *Transport) SetCredentials(creds CredentialReader) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.creds = creds
}

// SetInvalidator installs the session hook called on 401.
func (t *Transport) SetInvalidator(inv Invalidator) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.invalidator = inv
}

// SetNavigator installs the navigator used to redirect to loginRoute after a
// session was torn down.
func (t *Transport) SetNavigator(nav Navigator, loginRoute string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.navigator = nav
	t.loginRoute = loginRoute
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	req = req.Clone(ctx)

	if req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}
	log := t.log.With("request_id", req.Header.Get(HeaderRequestID), "method", req.Method, "path", req.URL.Path)

	t.mu.RLock()
	creds := t.creds
	t.mu.RUnlock()

	var token string
	req.Header.Del(HeaderAuthorization)
	if !isAnonymous(ctx) && creds != nil {
		cred, err := creds.Get(ctx)
		if err != nil {
			log.Error(ctx, "credential lookup failed", "error", err)
			return nil, &Error{Kind: ErrLocalState, Err: err}
		}
		if cred != nil {
			token = cred.Token
			req.Header.Set(HeaderAuthorization, "Bearer "+token)
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		log.Debug(ctx, "request failed", "error", err)
		return nil, err
	}
	log.Debug(ctx, "request done", "status", resp.StatusCode)
	// the request as sent, so callers can tell whether a credential went out
	resp.Request = req

	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		t.sessionRejected(context.WithoutCancel(ctx), log, token)
	}
	return resp, nil
}

func (t *Transport) sessionRejected(ctx context.Context, log logging.Logger, token string) {
	t.mu.RLock()
	inv, nav, loginRoute := t.invalidator, t.navigator, t.loginRoute
	t.mu.RUnlock()

	if inv == nil {
		return
	}
	if !inv.Invalidate(ctx, token) {
		log.Debug(ctx, "401 for a credential that is no longer current")
		return
	}

	log.Info(ctx, "session rejected by server")
	if nav != nil && nav.Current() != loginRoute {
		nav.Navigate(loginRoute)
	}
}
