// Package guard decides whether a navigation may proceed, from nothing but a
// session snapshot. The functions here never perform I/O.
package guard

import (
	"fmt"

	"github.com/dmitrijs2005/scholarhub/internal/client/models"
	"github.com/dmitrijs2005/scholarhub/internal/client/session"
)

const (
	RouteLogin   = "/login"
	RouteLanding = "/dashboard"
)

type Outcome int

const (
	Allow Outcome = iota
	// Hold means the session is still being restored; render a loading
	// placeholder and decide again on the next state change.
	Hold
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Hold:
		return "hold"
	case Redirect:
		return "redirect"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Decision is the result of a guard. Target is set for Redirect only.
type Decision struct {
	Outcome Outcome
	Target  string
}

func (d Decision) String() string {
	if d.Outcome == Redirect {
		return "redirect to " + d.Target
	}
	return d.Outcome.String()
}

// RequireAuthenticated admits authenticated sessions, holds while restoring
// and sends anonymous users to the login route.
func RequireAuthenticated(s session.State) Decision {
	switch s.Status {
	case session.StatusAuthenticated:
		if s.User == nil {
			return Decision{Outcome: Redirect, Target: RouteLogin}
		}
		return Decision{Outcome: Allow}
	case session.StatusRestoring:
		return Decision{Outcome: Hold}
	case session.StatusAnonymous:
		return Decision{Outcome: Redirect, Target: RouteLogin}
	default:
		return Decision{Outcome: Redirect, Target: RouteLogin}
	}
}

// RequireRole applies RequireAuthenticated and then demands that the user
// holds role. An authenticated user without it goes to the landing route,
// not to login.
func RequireRole(s session.State, role models.Role) Decision {
	d := RequireAuthenticated(s)
	if d.Outcome != Allow {
		return d
	}

	switch role {
	case models.RoleAdmin, models.RoleUser:
		if s.User.HasRole(role) {
			return Decision{Outcome: Allow}
		}
		return Decision{Outcome: Redirect, Target: RouteLanding}
	default:
		return Decision{Outcome: Redirect, Target: RouteLanding}
	}
}
