package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/scholarhub/internal/client/api"
	"github.com/dmitrijs2005/scholarhub/internal/client/guard"
)

// Open navigates to route through the route guards. A redirect or a held
// navigation is reported, not returned as an error.
func (a *App) Open(_ context.Context, route string) error {
	d := a.open(route)
	if d.Outcome == guard.Redirect && d.Target != route {
		a.println("Access to " + route + " denied, " + d.String())
	}
	return nil
}

// Fetch performs an authenticated GET of a domain endpoint and prints the
// JSON answer.
func (a *App) Fetch(ctx context.Context, path string) error {
	raw, err := a.api.Fetch(ctx, path)
	if err != nil {
		a.reportFailure(ctx, "Request failed: ", err)
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		a.println(string(raw))
		return nil
	}
	a.println(buf.String())
	return nil
}

// Status prints the session status and the current route.
func (a *App) Status(context.Context) error {
	s := a.session.State()
	msg := "Session: " + s.Status.String() + ", route: " + a.Current()
	if s.PendingError != nil {
		msg += ", last error: " + api.UserMessage(s.PendingError)
	}
	a.println(msg)
	return nil
}

// reportFailure prints err after prefix. A rejected session is skipped: the
// state listener has already announced it.
func (a *App) reportFailure(ctx context.Context, prefix string, err error) {
	if errors.Is(err, api.ErrSessionExpired) {
		a.log.Debug(ctx, "failure already reported by session", "error", err)
		return
	}
	a.println(prefix + api.UserMessage(err))
}
