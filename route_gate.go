package session

// RouteState is the outcome of a navigation decision.
type RouteState string

const (
	// RouteStateLoading blocks all navigation decisions until the
	// bootstrap read finishes; render a placeholder.
	RouteStateLoading RouteState = "loading"
	// RouteStateUnauthenticated means no usable session exists.
	RouteStateUnauthenticated RouteState = "unauthenticated"
	// RouteStateUnauthorized means the session is valid but the active
	// role is not among the target's required roles.
	RouteStateUnauthorized RouteState = "authenticated_unauthorized"
	// RouteStateAuthorized means the target may render.
	RouteStateAuthorized RouteState = "authenticated_authorized"
)

// Decision is what the host UI acts on: render the target, render a
// placeholder, or navigate to RedirectTo.
type Decision struct {
	State      RouteState
	Allow      bool
	RedirectTo string
}

// RouteGate decides navigation outcomes from the session snapshot. It owns
// no state of its own; every decision is a pure function of the snapshot
// and the target's requirements.
type RouteGate struct {
	loginPath string
	dashboard func(Role) string
}

// RouteGateOption customizes RouteGate construction.
type RouteGateOption func(*RouteGate)

// WithLoginPath overrides the unauthenticated entry point.
func WithLoginPath(path string) RouteGateOption {
	return func(g *RouteGate) {
		if path != "" {
			g.loginPath = path
		}
	}
}

// WithDashboardResolver overrides the role-to-dashboard mapping.
func WithDashboardResolver(fn func(Role) string) RouteGateOption {
	return func(g *RouteGate) {
		if fn != nil {
			g.dashboard = fn
		}
	}
}

// NewRouteGate returns a gate with the default marketplace paths.
func NewRouteGate(opts ...RouteGateOption) *RouteGate {
	g := &RouteGate{
		loginPath: PathLogin,
		dashboard: DashboardPath,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g
}

// Protected gates a route that requires authentication and, optionally, a
// role. Unauthorized-but-authenticated sessions are silently downgraded to
// their own dashboard, never shown an error page.
func (g *RouteGate) Protected(snap Snapshot, requiredRoles ...Role) Decision {
	if snap.IsLoading {
		return Decision{State: RouteStateLoading}
	}

	if !snap.IsAuthenticated {
		return Decision{
			State:      RouteStateUnauthenticated,
			RedirectTo: g.loginPath,
		}
	}

	if len(requiredRoles) > 0 && !roleIn(snap.CurrentRole, requiredRoles) {
		return Decision{
			State:      RouteStateUnauthorized,
			RedirectTo: g.dashboard(snap.CurrentRole),
		}
	}

	return Decision{State: RouteStateAuthorized, Allow: true}
}

// Public gates auth pages: an authenticated session is redirected away to
// its dashboard, everyone else may render the page.
func (g *RouteGate) Public(snap Snapshot) Decision {
	if snap.IsLoading {
		return Decision{State: RouteStateLoading}
	}

	if snap.IsAuthenticated {
		return Decision{
			State:      RouteStateAuthorized,
			RedirectTo: g.dashboard(snap.CurrentRole),
		}
	}

	return Decision{State: RouteStateUnauthenticated, Allow: true}
}

// DashboardIndex resolves the dashboard entry point for the current role.
// The mapping is pure: farmer and officer land on their dashboards, any
// other value, including an unset role, lands on the marketplace.
func (g *RouteGate) DashboardIndex(snap Snapshot) Decision {
	if snap.IsLoading {
		return Decision{State: RouteStateLoading}
	}

	if !snap.IsAuthenticated {
		return Decision{
			State:      RouteStateUnauthenticated,
			RedirectTo: g.loginPath,
		}
	}

	return Decision{
		State:      RouteStateAuthorized,
		RedirectTo: g.dashboard(snap.CurrentRole),
	}
}

func roleIn(role Role, roles []Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
