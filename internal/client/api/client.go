package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/scholarhub/internal/client/models"
	"github.com/dmitrijs2005/scholarhub/internal/logging"
)

const maxBodySize = 4 << 20

// LoginResponse is the body of POST /auth/login.
type LoginResponse struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone,omitempty"`
	Province  string `json:"province,omitempty"`
	City      string `json:"city,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	Gender    string `json:"gender,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

// Client issues the REST calls of the session core. All requests go through
// the Transport it was built with.
type Client struct {
	base *url.URL
	http *http.Client
	log  logging.Logger
}

// NewClient builds a client for baseURL (e.g. "http://localhost:8080/api").
// timeout bounds every request; a timeout is reported as ErrUnreachable.
func NewClient(baseURL string, timeout time.Duration, rt http.RoundTripper, log logging.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	return &Client{
		base: u,
		http: &http.Client{Transport: rt, Timeout: timeout},
		log:  log,
	}, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(Anonymous(ctx), http.MethodPost, "auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &Error{Kind: ErrServer, Status: http.StatusOK, Message: "login response carries no token"}
	}
	if err := resp.User.Validate(); err != nil {
		return nil, &Error{Kind: ErrServer, Status: http.StatusOK, Err: err}
	}
	return &resp, nil
}

// Register creates an account. It never establishes a session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var resp messageResponse
	if err := c.do(Anonymous(ctx), http.MethodPost, "auth/register", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Verify asks the server whether the stored credential is still valid.
func (c *Client) Verify(ctx context.Context) (bool, error) {
	var resp verifyResponse
	if err := c.do(ctx, http.MethodGet, "auth/verify", nil, &resp); err != nil {
		return false, err
	}
	return resp.Valid, nil
}

// Me fetches the profile of the authenticated user.
func (c *Client) Me(ctx context.Context) (*models.UserSummary, error) {
	var u models.UserSummary
	if err := c.do(ctx, http.MethodGet, "users/me", nil, &u); err != nil {
		return nil, err
	}
	if err := u.Validate(); err != nil {
		return nil, &Error{Kind: ErrServer, Status: http.StatusOK, Err: err}
	}
	return &u, nil
}

// Fetch performs an authenticated GET on any other endpoint below the base
// URL (journals, events, submissions, communities, users) and returns the raw
// JSON body.
func (c *Client) Fetch(ctx context.Context, path string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	if ref.IsAbs() || ref.Host != "" {
		return nil, fmt.Errorf("path %q must be relative to the api url", path)
	}
	return c.base.ResolveReference(ref), nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	u, err := c.resolve(path)
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		var local *Error
		if errors.As(err, &local) {
			return local
		}
		return &Error{Kind: ErrUnreachable, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &Error{Kind: ErrUnreachable, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(resp.StatusCode, isAnonymous(ctx), sentCredential(resp), data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: ErrServer, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func sentCredential(resp *http.Response) bool {
	return resp.Request != nil && resp.Request.Header.Get(HeaderAuthorization) != ""
}

func classify(status int, anonymous, credentialed bool, body []byte) error {
	var m messageResponse
	_ = json.Unmarshal(body, &m)

	e := &Error{Status: status, Message: m.Message}
	switch {
	case status == http.StatusUnauthorized && anonymous:
		e.Kind = ErrInvalidCredentials
	case status == http.StatusUnauthorized && !credentialed:
		e.Kind = ErrLoginRequired
	case status == http.StatusUnauthorized:
		e.Kind = ErrSessionExpired
	case status == http.StatusForbidden:
		e.Kind = ErrForbidden
	case status == http.StatusNotFound:
		e.Kind = ErrNotFound
	case status >= 500:
		e.Kind = ErrServer
	default:
		e.Kind = ErrValidation
	}
	return e
}

