// Package models defines the client-side view of the authenticated user and
// the credential persisted between runs.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Role is the platform role carried by a user profile. Only the values below
// are accepted; anything else fails to decode.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

var (
	ErrUnknownRole    = errors.New("unknown role")
	ErrIncompleteUser = errors.New("incomplete user profile")
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole parses a role name. Matching is case-insensitive.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.IsValid()
}

func (r Role) String() string { return string(r) }

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("role: %w", err)
	}
	parsed, ok := ParseRole(s)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	*r = parsed
	return nil
}

// UserSummary is the cached copy of the server-owned user profile.
type UserSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Phone     string `json:"phone,omitempty"`
	Province  string `json:"province,omitempty"`
	City      string `json:"city,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	Gender    string `json:"gender,omitempty"`
}

// Validate checks the fields the session core relies on.
func (u UserSummary) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("%w: missing id", ErrIncompleteUser)
	}
	if !u.Role.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, string(u.Role))
	}
	return nil
}

// HasRole reports whether the user holds exactly role r.
func (u UserSummary) HasRole(r Role) bool {
	return u.Role == r
}

// Credential is the persisted authentication material: the opaque bearer
// token and the profile it was issued for. Both are always stored and
// cleared together, so an absent credential is represented by a nil pointer.
type Credential struct {
	Token   string
	Profile UserSummary
}

func (c Credential) Validate() error {
	if c.Token == "" {
		return errors.New("credential: empty token")
	}
	return c.Profile.Validate()
}
