package session

import (
	"fmt"

	"github.com/dmitrijs2005/scholarhub/internal/client/models"
)

// Status is the lifecycle phase of the session.
type Status int

const (
	// StatusRestoring is the initial status until bootstrap resolves.
	StatusRestoring Status = iota
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusRestoring:
		return "RESTORING"
	case StatusAuthenticated:
		return "AUTHENTICATED"
	case StatusAnonymous:
		return "ANONYMOUS"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// State is an immutable snapshot of the session. User is set iff Status is
// StatusAuthenticated. PendingError records why the last transition
// happened when it was not requested by the user (e.g. the server rejected
// the credential). Seq grows by one with every transition.
type State struct {
	Status       Status
	User         *models.UserSummary
	PendingError error
	Seq          uint64
}

func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
