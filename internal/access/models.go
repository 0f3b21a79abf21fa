package access

import (
	"slices"
	"strings"

	dErrors "carecompliance/pkg/domain-errors"
)

// RoleName is an actor's role. Invariant: one of admin, supervisor, staff.
type RoleName string

const (
	RoleAdmin      RoleName = "admin"
	RoleSupervisor RoleName = "supervisor"
	RoleStaff      RoleName = "staff"
)

// ParseRoleName validates a role from external input.
func ParseRoleName(s string) (RoleName, error) {
	r := RoleName(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleSupervisor, RoleStaff:
		return r, nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "unsupported role: "+s)
	}
}

// Role is an actor's role assignment. Admins implicitly cover every location,
// so Locations is ignored for them.
type Role struct {
	SubjectID string   `json:"subject_id"`
	Role      RoleName `json:"role"`
	Locations []string `json:"locations"`
	Email     string   `json:"email,omitempty"`
}

func (r *Role) IsAdmin() bool {
	return r != nil && r.Role == RoleAdmin
}

// HasLocation reports explicit assignment, ignoring the admin shortcut.
func (r *Role) HasLocation(location string) bool {
	return r != nil && slices.Contains(r.Locations, location)
}
