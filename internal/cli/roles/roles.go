// Package roles derives the current user's role from session state.
//
// Three redundant flags can mark a session as admin because the admin and
// user login flows historically wrote different keys. All three are checked
// for compatibility; anything else defaults to CUSTOMER.
package roles

import (
	"github.com/gros-dev/gros/internal/cli/session"
)

// Role is the resolved user role
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

// Navigation targets per role
const (
	AdminDashboardRoute = "/admin-dashboard"
	UserDashboardRoute  = "/user-dashboard"
	AdminProfileRoute   = "/admin-dashboard/profile"
	UserProfileRoute    = "/user-dashboard/profile"
)

// UserRole resolves the role from whichever flag the active login flow
// wrote. An empty or unrecognized session resolves to CUSTOMER.
func UserRole(store session.Store) Role {
	isAdminFlag, _ := store.Get(session.KeyIsAdmin)
	userRole, _ := store.Get(session.KeyUserRole)
	legacyRole, _ := store.Get(session.KeyRole)

	if isAdminFlag == "true" || userRole == string(RoleAdmin) || legacyRole == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleCustomer
}

// IsAdmin reports whether the session resolves to the admin role
func IsAdmin(store session.Store) bool {
	return UserRole(store) == RoleAdmin
}

// IsCustomer reports whether the session resolves to the customer role
func IsCustomer(store session.Store) bool {
	return UserRole(store) == RoleCustomer
}

// DashboardRoute returns the role-appropriate dashboard target. The caller
// performs the actual navigation.
func DashboardRoute(store session.Store) string {
	if IsAdmin(store) {
		return AdminDashboardRoute
	}
	return UserDashboardRoute
}

// ProfileRoute returns the role-appropriate profile target
func ProfileRoute(store session.Store) string {
	if IsAdmin(store) {
		return AdminProfileRoute
	}
	return UserProfileRoute
}
