package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/scholarhub/internal/client/models"
	"github.com/dmitrijs2005/scholarhub/internal/client/session"
)

func authenticated(role models.Role) session.State {
	return session.State{
		Status: session.StatusAuthenticated,
		User:   &models.UserSummary{ID: "u1", Role: role},
	}
}

var (
	restoring = session.State{Status: session.StatusRestoring}
	anonymous = session.State{Status: session.StatusAnonymous}
)

func TestRequireAuthenticated(t *testing.T) {
	tests := []struct {
		name  string
		state session.State
		want  Decision
	}{
		{"authenticated user", authenticated(models.RoleUser), Decision{Outcome: Allow}},
		{"authenticated admin", authenticated(models.RoleAdmin), Decision{Outcome: Allow}},
		{"restoring", restoring, Decision{Outcome: Hold}},
		{"anonymous", anonymous, Decision{Outcome: Redirect, Target: RouteLogin}},
		{"authenticated without user", session.State{Status: session.StatusAuthenticated}, Decision{Outcome: Redirect, Target: RouteLogin}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RequireAuthenticated(tt.state))
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name  string
		state session.State
		role  models.Role
		want  Decision
	}{
		{"admin on admin route", authenticated(models.RoleAdmin), models.RoleAdmin, Decision{Outcome: Allow}},
		{"user on admin route", authenticated(models.RoleUser), models.RoleAdmin, Decision{Outcome: Redirect, Target: RouteLanding}},
		{"user on user route", authenticated(models.RoleUser), models.RoleUser, Decision{Outcome: Allow}},
		{"restoring", restoring, models.RoleAdmin, Decision{Outcome: Hold}},
		{"anonymous", anonymous, models.RoleAdmin, Decision{Outcome: Redirect, Target: RouteLogin}},
		{"unknown role required", authenticated(models.RoleAdmin), models.Role("OWNER"), Decision{Outcome: Redirect, Target: RouteLanding}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RequireRole(tt.state, tt.role))
		})
	}
}

func TestRequireRole_StricterThanRequireAuthenticated(t *testing.T) {
	s := authenticated(models.RoleUser)
	assert.Equal(t, Allow, RequireAuthenticated(s).Outcome)
	assert.Equal(t, Redirect, RequireRole(s, models.RoleAdmin).Outcome)
}

func TestRouter_Resolve(t *testing.T) {
	r := NewRouter()

	tests := []struct {
		path  string
		state session.State
		want  Decision
	}{
		{"/login", anonymous, Decision{Outcome: Allow}},
		{"/about", anonymous, Decision{Outcome: Allow}},
		{"/journals", anonymous, Decision{Outcome: Redirect, Target: RouteLogin}},
		{"/journals/42/issues?page=2", authenticated(models.RoleUser), Decision{Outcome: Allow}},
		{"journals/", restoring, Decision{Outcome: Hold}},
		{"/admin/users", authenticated(models.RoleUser), Decision{Outcome: Redirect, Target: RouteLanding}},
		{"/admin/users", authenticated(models.RoleAdmin), Decision{Outcome: Allow}},
		{"/administrators", authenticated(models.RoleUser), Decision{Outcome: Allow}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.state, tt.path))
		})
	}
}

func TestRouter_HandleOverridesAndLongestPrefixWins(t *testing.T) {
	r := NewRouter()
	r.Handle("/admin/help", Authenticated)
	r.Handle("/events", Public)

	assert.Equal(t, Authenticated, r.PolicyFor("/admin/help/faq"))
	assert.Equal(t, AdminOnly, r.PolicyFor("/admin/settings"))
	assert.Equal(t, Public, r.PolicyFor("/events/7"))
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "allow", Decision{Outcome: Allow}.String())
	assert.Equal(t, "hold", Decision{Outcome: Hold}.String())
	assert.Equal(t, "redirect to /login", Decision{Outcome: Redirect, Target: RouteLogin}.String())
}
