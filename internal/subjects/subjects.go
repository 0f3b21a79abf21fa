// Package subjects is the read-only view of residents this service tracks.
// Residents are owned by the care-management domain; only the opaque id and
// the location are known here.
package subjects

import (
	"context"
	"slices"
	"sort"
	"sync"

	"carecompliance/pkg/platform/sentinel"
)

// Subject is a resident reference.
type Subject struct {
	ID       string `json:"id"`
	Location string `json:"location"`
}

// Store is the external subject directory.
type Store interface {
	// List returns subjects in the given locations, or every subject when all is true.
	List(ctx context.Context, all bool, locations []string) ([]Subject, error)
	Get(ctx context.Context, id string) (Subject, error)
}

// InMemory is a Store for local runs and tests.
type InMemory struct {
	mu       sync.RWMutex
	subjects map[string]Subject
}

func NewInMemory(seed ...Subject) *InMemory {
	s := &InMemory{subjects: make(map[string]Subject, len(seed))}
	for _, subj := range seed {
		s.subjects[subj.ID] = subj
	}
	return s
}

// Put inserts or replaces a subject.
func (s *InMemory) Put(_ context.Context, subject Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects[subject.ID] = subject
	return nil
}

func (s *InMemory) List(_ context.Context, all bool, locations []string) ([]Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Subject, 0, len(s.subjects))
	for _, subj := range s.subjects {
		if all || slices.Contains(locations, subj.Location) {
			out = append(out, subj)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) Get(_ context.Context, id string) (Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subj, ok := s.subjects[id]
	if !ok {
		return Subject{}, sentinel.ErrNotFound
	}
	return subj, nil
}
