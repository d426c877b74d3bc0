package access

// Profile is the runtime subject of every authorization decision. Profiles
// are loaded by the directory layer and passed here by value; the engine
// never mutates or persists them.
type Profile struct {
	ID          int64        `json:"id"`
	Email       string       `json:"email"`
	Name        string       `json:"name"`
	Role        Role         `json:"role"`
	Permissions Bundle       `json:"permissions"`
	Departments []Department `json:"departments,omitempty"`
	// Dashboard overrides the role's default dashboard when non-empty.
	Dashboard string `json:"dashboard,omitempty"`
	// AuthID links the profile to the upstream identity provider. Empty
	// means the profile was provisioned but has never logged in (pending).
	AuthID string `json:"auth_id,omitempty"`
}

// IsPendingUser reports whether the profile was pre-registered but has no
// identity linkage yet. Pending is a lifecycle state, not a role, and plays
// no part in feature resolution.
func IsPendingUser(p *Profile) bool {
	return p != nil && p.AuthID == ""
}
