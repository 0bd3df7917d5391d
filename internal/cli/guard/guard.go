// Package guard implements the pre-navigation authorization check applied
// to protected routes.
package guard

import (
	"github.com/rs/zerolog"

	"github.com/gros-dev/gros/internal/cli/roles"
	"github.com/gros-dev/gros/internal/cli/session"
)

// LoginSelectionRoute is where unauthenticated users are sent
const LoginSelectionRoute = "/login-selection"

// HomeRoute is where authenticated users lacking the required role are sent
const HomeRoute = "/"

// Route carries the static metadata the guard evaluates
type Route struct {
	Path          string
	Role          string // required role, empty means any authenticated user
	RequiresAdmin bool
}

// Navigator performs the redirect on a denied navigation
type Navigator interface {
	Navigate(route string)
}

// SessionInfo is the slice of the session service the guard consults
type SessionInfo interface {
	IsLoggedIn() bool
	HasRole(required string) bool
}

// Guard decides allow/deny for each navigation attempt. Stateless and
// synchronous: every decision is made entirely from the session store, and
// denial is communicated via the boolean return plus a redirect side
// effect. It never errors.
type Guard struct {
	auth  SessionInfo
	store session.Store
	nav   Navigator
	log   zerolog.Logger
}

// New creates a guard over the given session service and store
func New(auth SessionInfo, store session.Store, nav Navigator, log zerolog.Logger) *Guard {
	return &Guard{auth: auth, store: store, nav: nav, log: log}
}

// CanActivate evaluates the two gating stages in order: authentication,
// then role. An unauthenticated user is redirected to login selection; an
// authenticated user missing the required role is redirected home.
func (g *Guard) CanActivate(route Route) bool {
	if !g.auth.IsLoggedIn() {
		g.log.Debug().Str("path", route.Path).Msg("Not logged in, redirecting to login selection")
		g.nav.Navigate(LoginSelectionRoute)
		return false
	}

	if route.Role != "" && !g.auth.HasRole(route.Role) {
		g.log.Debug().Str("path", route.Path).Str("required_role", route.Role).Msg("Missing required role")
		g.nav.Navigate(HomeRoute)
		return false
	}

	if route.RequiresAdmin && !roles.IsAdmin(g.store) {
		g.log.Debug().Str("path", route.Path).Msg("Route requires admin access")
		g.nav.Navigate(HomeRoute)
		return false
	}

	g.log.Debug().Str("path", route.Path).Msg("Access granted")
	return true
}
