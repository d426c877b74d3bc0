package access

// Role represents a fixed user category, the primary unit of default
// authorization. The set of roles is closed and known at build time.
type Role string

const (
	RoleOwner          Role = "owner"
	RoleDirector       Role = "director"
	RoleManager        Role = "manager"
	RoleSysadmin       Role = "sysadmin"
	RoleAdministration Role = "administration"
	RoleFinance        Role = "finance"
	RoleMarketing      Role = "marketing"
	RoleOps            Role = "ops"
	RoleEngineer       Role = "engineer"
	RoleHR             Role = "hr"
	RoleHSE            Role = "hse"
)

// AllRoles returns the closed role catalog in display order.
func AllRoles() []Role {
	return []Role{
		RoleOwner,
		RoleDirector,
		RoleManager,
		RoleSysadmin,
		RoleAdministration,
		RoleFinance,
		RoleMarketing,
		RoleOps,
		RoleEngineer,
		RoleHR,
		RoleHSE,
	}
}

// Valid reports whether r is part of the role catalog.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleDirector, RoleManager, RoleSysadmin,
		RoleAdministration, RoleFinance, RoleMarketing,
		RoleOps, RoleEngineer, RoleHR, RoleHSE:
		return true
	}
	return false
}

// Dashboard types served by the web UI. Each role maps to a default
// dashboard; a profile may carry an explicit override.
const (
	DashboardExecutive  = "executive"
	DashboardOperations = "operations"
	DashboardFinance    = "finance"
	DashboardHR         = "hr"
	DashboardHSE        = "hse"
	DashboardWorkspace  = "workspace"
)

// defaultDashboards maps each role to the dashboard shown when the
// profile has no override.
func defaultDashboards() map[Role]string {
	return map[Role]string{
		RoleOwner:          DashboardExecutive,
		RoleDirector:       DashboardExecutive,
		RoleManager:        DashboardOperations,
		RoleSysadmin:       DashboardWorkspace,
		RoleAdministration: DashboardWorkspace,
		RoleFinance:        DashboardFinance,
		RoleMarketing:      DashboardWorkspace,
		RoleOps:            DashboardOperations,
		RoleEngineer:       DashboardOperations,
		RoleHR:             DashboardHR,
		RoleHSE:            DashboardHSE,
	}
}
