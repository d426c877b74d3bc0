package api

import (
	"time"

	"github.com/meridianworks/meridian/pkg/access"
)

// CheckResponse is the result of a single feature check
type CheckResponse struct {
	Feature string `json:"feature"`
	Allowed bool   `json:"allowed"`
}

// FeatureGrantsResponse is the bulk evaluation used for menu building
type FeatureGrantsResponse struct {
	Dashboard string          `json:"dashboard"`
	Features  map[string]bool `json:"features"`
}

// AssignableRolesResponse lists the roles an admin may hand out
type AssignableRolesResponse struct {
	Roles []access.Role `json:"roles"`
}

// UserResponse is a stored profile as returned by the API
type UserResponse struct {
	ID          int64               `json:"id"`
	Email       string              `json:"email"`
	Name        string              `json:"name"`
	Role        access.Role         `json:"role"`
	Permissions access.Bundle       `json:"permissions"`
	Departments []access.Department `json:"departments"`
	Dashboard   string              `json:"dashboard,omitempty"`
	Pending     bool                `json:"pending"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CreateUserRequest provisions a pending invite
type CreateUserRequest struct {
	Email       string              `json:"email"`
	Name        string              `json:"name"`
	Role        access.Role         `json:"role"`
	Departments []access.Department `json:"departments,omitempty"`
}

// UpdateAccessRequest replaces a user's access assignment
type UpdateAccessRequest struct {
	Role        access.Role         `json:"role"`
	Permissions *access.Bundle      `json:"permissions,omitempty"`
	Departments []access.Department `json:"departments,omitempty"`
	Dashboard   string              `json:"dashboard,omitempty"`
}

// LinkIdentityRequest attaches an auth identity to a pending invite
type LinkIdentityRequest struct {
	Email  string `json:"email"`
	AuthID string `json:"auth_id"`
}
