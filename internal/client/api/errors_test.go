package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "server message wins", err: &Error{Kind: ErrValidation, Status: 409, Message: "Email already registered"}, want: "Email already registered"},
		{name: "unreachable", err: &Error{Kind: ErrUnreachable, Err: errors.New("dial tcp")}, want: "The server cannot be reached. Try again later."},
		{name: "bare sentinel", err: ErrSessionExpired, want: "Your session has expired. Please log in again."},
		{name: "wrapped", err: fmt.Errorf("reload: %w", &Error{Kind: ErrServer, Status: 502}), want: "The server failed to process the request. Try again later."},
		{name: "login required ignores server text", err: &Error{Kind: ErrLoginRequired, Status: 401, Message: "Token is invalid or expired"}, want: "Please log in first."},
		{name: "local state", err: &Error{Kind: ErrLocalState, Err: errors.New("locked")}, want: "Local session data could not be read."},
		{name: "kind without text", err: &Error{Kind: ErrNotFound, Status: 404}, want: "not found"},
		{name: "foreign error", err: errors.New("disk full"), want: "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestError_UnwrapsToKindAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&Error{Kind: ErrUnreachable, Err: cause})

	assert.ErrorIs(t, err, ErrUnreachable)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrServer)
	assert.True(t, Retryable(err))
	assert.Equal(t, "server unreachable: connection refused", err.Error())
	assert.Equal(t, "validation error (400): bad", (&Error{Kind: ErrValidation, Status: 400, Message: "bad"}).Error())
}
