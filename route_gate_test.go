package session_test

import (
	"testing"

	session "github.com/farmvine/go-session"
	"github.com/stretchr/testify/assert"
)

func TestRouteGate_Protected(t *testing.T) {
	gate := session.NewRouteGate()

	farmer := session.Snapshot{
		User:            &session.User{ID: "usr-1", Roles: []session.Role{session.RoleFarmer}},
		CurrentRole:     session.RoleFarmer,
		IsAuthenticated: true,
	}

	tests := []struct {
		name     string
		snap     session.Snapshot
		required []session.Role
		expected session.Decision
	}{
		{
			name:     "loading blocks the decision",
			snap:     session.Snapshot{IsLoading: true},
			required: []session.Role{session.RoleFarmer},
			expected: session.Decision{State: session.RouteStateLoading},
		},
		{
			name: "unauthenticated redirects to login",
			snap: session.Snapshot{},
			expected: session.Decision{
				State:      session.RouteStateUnauthenticated,
				RedirectTo: session.PathLogin,
			},
		},
		{
			name:     "authenticated with required role renders",
			snap:     farmer,
			required: []session.Role{session.RoleFarmer},
			expected: session.Decision{State: session.RouteStateAuthorized, Allow: true},
		},
		{
			name:     "any of several required roles suffices",
			snap:     farmer,
			required: []session.Role{session.RoleOfficer, session.RoleFarmer},
			expected: session.Decision{State: session.RouteStateAuthorized, Allow: true},
		},
		{
			name:     "no role requirement renders for any session",
			snap:     farmer,
			expected: session.Decision{State: session.RouteStateAuthorized, Allow: true},
		},
		{
			name:     "wrong role downgrades to own dashboard",
			snap:     farmer,
			required: []session.Role{session.RoleOfficer},
			expected: session.Decision{
				State:      session.RouteStateUnauthorized,
				RedirectTo: session.PathFarmerDashboard,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, gate.Protected(tt.snap, tt.required...))
		})
	}
}

func TestRouteGate_Public(t *testing.T) {
	gate := session.NewRouteGate()

	t.Run("loading blocks", func(t *testing.T) {
		decision := gate.Public(session.Snapshot{IsLoading: true})
		assert.Equal(t, session.RouteStateLoading, decision.State)
		assert.False(t, decision.Allow)
	})

	t.Run("anonymous session renders the page", func(t *testing.T) {
		decision := gate.Public(session.Snapshot{})
		assert.True(t, decision.Allow)
		assert.Equal(t, session.RouteStateUnauthenticated, decision.State)
	})

	t.Run("authenticated session is bounced to its dashboard", func(t *testing.T) {
		decision := gate.Public(session.Snapshot{
			IsAuthenticated: true,
			CurrentRole:     session.RoleOfficer,
		})
		assert.False(t, decision.Allow)
		assert.Equal(t, session.PathOfficerDashboard, decision.RedirectTo)
	})
}

func TestRouteGate_DashboardIndex(t *testing.T) {
	gate := session.NewRouteGate()

	t.Run("unauthenticated goes to login", func(t *testing.T) {
		decision := gate.DashboardIndex(session.Snapshot{})
		assert.Equal(t, session.PathLogin, decision.RedirectTo)
	})

	t.Run("buyer goes to marketplace", func(t *testing.T) {
		decision := gate.DashboardIndex(session.Snapshot{
			IsAuthenticated: true,
			CurrentRole:     session.RoleBuyer,
		})
		assert.Equal(t, session.PathMarketplace, decision.RedirectTo)
	})

	t.Run("farmer goes to farmer dashboard", func(t *testing.T) {
		decision := gate.DashboardIndex(session.Snapshot{
			IsAuthenticated: true,
			CurrentRole:     session.RoleFarmer,
		})
		assert.Equal(t, session.PathFarmerDashboard, decision.RedirectTo)
	})
}

func TestRouteGate_CustomPaths(t *testing.T) {
	gate := session.NewRouteGate(
		session.WithLoginPath("/signin"),
		session.WithDashboardResolver(func(session.Role) string { return "/home" }),
	)

	decision := gate.Protected(session.Snapshot{})
	assert.Equal(t, "/signin", decision.RedirectTo)

	decision = gate.Public(session.Snapshot{IsAuthenticated: true})
	assert.Equal(t, "/home", decision.RedirectTo)
}
