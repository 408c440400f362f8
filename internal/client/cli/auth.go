package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/scholarhub/internal/client/api"
	"github.com/dmitrijs2005/scholarhub/internal/client/guard"
	"github.com/dmitrijs2005/scholarhub/internal/shared"
)

// getSimpleText, getOptional and getPassword are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getOptional = GetOptional
var getPassword = GetPassword

var errAlreadyLoggedIn = errors.New("already logged in")

// Register prompts for the account fields and submits them. Registration
// never signs the user in; on success the client moves to the login route.
func (a *App) Register(ctx context.Context) error {
	var (
		req api.RegisterRequest
		err error
	)

	if req.Name, err = getSimpleText(a.reader, "Enter name", a.out); err != nil {
		return err
	}
	if req.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)
	req.Password = string(password)

	optional := []struct {
		field  *string
		prompt string
	}{
		{&req.Phone, "Phone"},
		{&req.Province, "Province"},
		{&req.City, "City"},
		{&req.BirthDate, "Birth date (YYYY-MM-DD)"},
		{&req.Gender, "Gender"},
	}
	for _, o := range optional {
		if *o.field, err = getOptional(a.reader, o.prompt, a.out); err != nil {
			return err
		}
	}

	msg, err := a.session.Register(ctx, req)
	if err != nil {
		a.println("Registration failed: " + api.UserMessage(err))
		return err
	}

	a.println(msg)
	a.open(guard.RouteLogin)
	return nil
}

// Login prompts for credentials and signs in. On success a client sitting
// on the login route moves on to the landing route.
func (a *App) Login(ctx context.Context) error {
	if s := a.session.State(); s.Authenticated() {
		a.println("Already logged in as " + s.User.Email + ", log out first")
		return errAlreadyLoggedIn
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	if err := a.session.Login(ctx, email, string(password)); err != nil {
		a.println("Login unsuccessful: " + api.UserMessage(err))
		return err
	}

	if route := a.Current(); route == guard.RouteLogin || route == "" {
		a.open(guard.RouteLanding)
	}
	return nil
}

// Logout ends the session locally. The route guards take the client off
// protected routes.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		a.println("Logout: " + err.Error())
		return err
	}
	return nil
}

// WhoAmI prints the cached profile.
func (a *App) WhoAmI(context.Context) error {
	s := a.session.State()
	if !s.Authenticated() {
		a.println("Not logged in (" + s.Status.String() + ")")
		return nil
	}

	u := s.User
	lines := []struct{ label, value string }{
		{"ID", u.ID},
		{"Name", u.Name},
		{"Email", u.Email},
		{"Role", string(u.Role)},
		{"Phone", u.Phone},
		{"Province", u.Province},
		{"City", u.City},
		{"Birth date", u.BirthDate},
		{"Gender", u.Gender},
	}
	for _, l := range lines {
		if l.value != "" {
			a.println(fmt.Sprintf("%-10s %s", l.label+":", l.value))
		}
	}
	return nil
}

// Profile reloads the profile from the server and prints it.
func (a *App) Profile(ctx context.Context) error {
	if err := a.session.ReloadProfile(ctx); err != nil {
		a.reportFailure(ctx, "Could not reload profile: ", err)
		return err
	}
	return a.WhoAmI(ctx)
}
