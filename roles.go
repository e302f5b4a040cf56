package session

// Dashboard entry points per role. The marketplace is the default surface
// for buyers and for sessions with no role chosen yet.
const (
	PathMarketplace      = "/marketplace"
	PathFarmerDashboard  = "/farmer/dashboard"
	PathOfficerDashboard = "/officer/dashboard"
	PathLogin            = "/login"
)

// IsValidRole checks if the role is one of the predefined marketplace roles
func IsValidRole(r Role) bool {
	switch r {
	case RoleBuyer, RoleFarmer, RoleOfficer:
		return true
	default:
		return false
	}
}

// AllRoles returns the closed set of marketplace roles
func AllRoles() []Role {
	return []Role{RoleBuyer, RoleFarmer, RoleOfficer}
}

// ParseRole safely parses a string into a Role
func ParseRole(raw string) (Role, bool) {
	role := Role(raw)
	return role, IsValidRole(role)
}

// DashboardPath maps the active role to its dashboard entry point.
// Farmers and officers land on their dashboards; everything else,
// including an unset or unknown role, lands on the marketplace.
func DashboardPath(role Role) string {
	switch role {
	case RoleFarmer:
		return PathFarmerDashboard
	case RoleOfficer:
		return PathOfficerDashboard
	case RoleBuyer:
		return PathMarketplace
	default:
		return PathMarketplace
	}
}
