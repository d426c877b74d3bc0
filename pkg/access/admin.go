package access

import "fmt"

// CanModifyUser decides whether an actor role may change the access of a
// target role. The owner's assignment is immutable: no actor, however
// privileged, may alter it. Everything else requires an administrative
// actor role.
func (e *Engine) CanModifyUser(actor, target Role) bool {
	if target == RoleOwner {
		return false
	}
	switch actor {
	case RoleOwner, RoleDirector, RoleSysadmin:
		return true
	}
	return false
}

// AssignableRoles returns the roles an administrator may assign: the full
// catalog minus owner, which is only ever auto-derived from the recognized
// owner email.
func (e *Engine) AssignableRoles() []Role {
	all := AllRoles()
	roles := make([]Role, 0, len(all)-1)
	for _, r := range all {
		if r == RoleOwner {
			continue
		}
		roles = append(roles, r)
	}
	return roles
}

// RemovalCheck is the verdict of a last-admin guard check.
type RemovalCheck struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// CanRemoveAdminPermission guards against revoking the user-management
// capability from the last remaining administrator. The caller must invoke
// this before persisting a permission change; the engine does not observe
// the user population itself. Removal is denied only when the sole
// remaining admin would demote themselves.
func CanRemoveAdminPermission(currentAdminCount int, targetUserID, actingUserID int64) RemovalCheck {
	if currentAdminCount <= 1 && targetUserID == actingUserID {
		return RemovalCheck{
			Allowed: false,
			Reason:  fmt.Sprintf("user %d is the last remaining administrator", targetUserID),
		}
	}
	return RemovalCheck{Allowed: true}
}
