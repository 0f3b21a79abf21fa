package access

import (
	"context"
	"slices"
	"sort"
	"sync"

	"carecompliance/pkg/platform/sentinel"
)

// InMemoryRoleStore is a RoleStore for local runs and tests.
type InMemoryRoleStore struct {
	mu    sync.RWMutex
	roles map[string]*Role
}

func NewInMemoryRoleStore() *InMemoryRoleStore {
	return &InMemoryRoleStore{roles: make(map[string]*Role)}
}

// Put inserts or replaces a role assignment.
func (s *InMemoryRoleStore) Put(_ context.Context, role *Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *role
	copied.Locations = slices.Clone(role.Locations)
	s.roles[role.SubjectID] = &copied
	return nil
}

func (s *InMemoryRoleStore) GetRole(_ context.Context, actorID string) (*Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roles[actorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *role
	copied.Locations = slices.Clone(role.Locations)
	return &copied, nil
}

func (s *InMemoryRoleStore) ListByLocation(_ context.Context, location string) ([]*Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Role
	for _, role := range s.roles {
		if CanAccess(role, location) {
			copied := *role
			copied.Locations = slices.Clone(role.Locations)
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectID < out[j].SubjectID })
	return out, nil
}
