package access

// Department identifies an organizational domain a manager profile can be
// responsible for. Department scope drives feature inheritance only; it is
// never a display role and never changes default-permission lookup.
type Department string

const (
	DeptMarketing      Department = "marketing"
	DeptEngineering    Department = "engineering"
	DeptAdministration Department = "administration"
	DeptFinance        Department = "finance"
	DeptOperations     Department = "operations"
	DeptAssets         Department = "assets"
	DeptHR             Department = "hr"
	DeptHSE            Department = "hse"
)

// AllDepartments returns the recognized department scopes.
func AllDepartments() []Department {
	return []Department{
		DeptMarketing,
		DeptEngineering,
		DeptAdministration,
		DeptFinance,
		DeptOperations,
		DeptAssets,
		DeptHR,
		DeptHSE,
	}
}

// Valid reports whether d is a recognized department scope. Unrecognized
// values are tolerated everywhere (they simply inherit nothing); this is
// only used for input validation at the administrative surface.
func (d Department) Valid() bool {
	switch d {
	case DeptMarketing, DeptEngineering, DeptAdministration, DeptFinance,
		DeptOperations, DeptAssets, DeptHR, DeptHSE:
		return true
	}
	return false
}

// departmentRoles maps each department scope to the staff roles a manager
// assigned that scope should additionally behave as during feature checks.
// Operations and assets share one staff pool.
func departmentRoles() map[Department][]Role {
	return map[Department][]Role{
		DeptMarketing:      {RoleMarketing},
		DeptEngineering:    {RoleEngineer},
		DeptAdministration: {RoleAdministration},
		DeptFinance:        {RoleFinance},
		DeptOperations:     {RoleOps},
		DeptAssets:         {RoleOps},
		DeptHR:             {RoleHR},
		DeptHSE:            {RoleHSE},
	}
}
