package api

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is; the concrete *Error carries the
// HTTP status and the server's message.
var (
	// ErrInvalidCredentials is a 401 answer to a login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionExpired is a 401 answer to any call made with a credential.
	// The pipeline has already torn the session down when callers see it.
	ErrSessionExpired = errors.New("session expired")
	// ErrLoginRequired is a 401 answer to a call that went out without a
	// credential because nobody is logged in. No session is touched.
	ErrLoginRequired = errors.New("login required")
	// ErrValidation covers 400, 409 and other rejected requests.
	ErrValidation = errors.New("validation error")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	// ErrServer covers 5xx answers and responses the client cannot decode.
	ErrServer = errors.New("server error")
	// ErrUnreachable means no response arrived: connection failure or timeout.
	ErrUnreachable = errors.New("server unreachable")
	// ErrLocalState means the credential could not be read locally, so the
	// request was never sent.
	ErrLocalState = errors.New("local session storage failed")
)

// Error is returned by every Client call that did not succeed.
type Error struct {
	Kind    error
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (%d)", msg, e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// UserMessage is the text to show next to a form: the server's message when
// it sent one, otherwise a generic description of the kind. A login-required
// answer always gets the generic text, since the server's wording speaks of a
// token the user never had.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrLoginRequired) {
		return "Please log in first."
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}

	switch {
	case errors.Is(err, ErrUnreachable):
		return "The server cannot be reached. Try again later."
	case errors.Is(err, ErrServer):
		return "The server failed to process the request. Try again later."
	case errors.Is(err, ErrInvalidCredentials):
		return "Wrong email or password."
	case errors.Is(err, ErrSessionExpired):
		return "Your session has expired. Please log in again."
	case errors.Is(err, ErrLocalState):
		return "Local session data could not be read."
	case errors.Is(err, ErrForbidden):
		return "You do not have access to this resource."
	}
	if e != nil {
		return e.Kind.Error()
	}
	return err.Error()
}

// Retryable reports whether err is a transient failure (server error or no
// response) that leaves the session untouched.
func Retryable(err error) bool {
	return errors.Is(err, ErrServer) || errors.Is(err, ErrUnreachable)
}
