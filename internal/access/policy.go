// Package access decides what an actor may see and change.
//
// Every service entry point resolves the actor through Policy and checks the
// resource's location before touching data. Read paths deny with NotFound so
// a caller cannot probe for resources outside their locations.
package access

import (
	"context"
	"errors"
	"slices"
	"strings"

	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/sentinel"
)

// RoleStore is the external role directory.
type RoleStore interface {
	GetRole(ctx context.Context, actorID string) (*Role, error)
	// ListByLocation returns every role with access to location, admins included.
	ListByLocation(ctx context.Context, location string) ([]*Role, error)
}

// Policy resolves actors and answers allow/deny questions.
type Policy struct {
	roles RoleStore
}

func NewPolicy(roles RoleStore) *Policy {
	return &Policy{roles: roles}
}

// Resolve loads the role for actorID. An empty actor is unauthenticated; an
// actor without a role assignment is forbidden.
func (p *Policy) Resolve(ctx context.Context, actorID string) (*Role, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	role, err := p.roles.GetRole(ctx, actorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeForbidden, "no role assigned")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load role")
	}
	return role, nil
}

// Recipients returns roles with access to location that can receive email.
func (p *Policy) Recipients(ctx context.Context, location string) ([]*Role, error) {
	roles, err := p.roles.ListByLocation(ctx, location)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list roles")
	}
	out := make([]*Role, 0, len(roles))
	for _, r := range roles {
		if strings.TrimSpace(r.Email) != "" && CanAccess(r, location) {
			out = append(out, r)
		}
	}
	return out, nil
}

// CanAccess is true for admins and for roles assigned to location.
func CanAccess(role *Role, location string) bool {
	if role == nil {
		return false
	}
	return role.IsAdmin() || role.HasLocation(location)
}

// RequireRole fails with Forbidden unless role is one of allowed.
func RequireRole(role *Role, allowed ...RoleName) error {
	if role != nil && slices.Contains(allowed, role.Role) {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "insufficient role")
}

// RequireLocation is the read-path and lookup-by-id check. Denial is reported
// as NotFound.
func RequireLocation(role *Role, location string) error {
	if CanAccess(role, location) {
		return nil
	}
	return dErrors.New(dErrors.CodeNotFound, "not found")
}

// RequireLocationAccess is the check for writes that name a location
// explicitly, where the caller already knows the location exists.
func RequireLocationAccess(role *Role, location string) error {
	if CanAccess(role, location) {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "no access to location")
}

// ScopeLocations describes the locations a list query may return. all=true
// means no filter; otherwise only locations are visible.
func ScopeLocations(role *Role) (all bool, locations []string) {
	if role.IsAdmin() {
		return true, nil
	}
	if role == nil {
		return false, nil
	}
	return false, slices.Clone(role.Locations)
}
