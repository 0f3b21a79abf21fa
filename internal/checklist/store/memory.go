package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"carecompliance/internal/checklist/models"
	"carecompliance/pkg/platform/sentinel"
)

// InMemoryTemplates holds checklist templates.
type InMemoryTemplates struct {
	mu        sync.RWMutex
	templates map[string]*models.Template
}

func NewInMemoryTemplates() *InMemoryTemplates {
	return &InMemoryTemplates{templates: make(map[string]*models.Template)}
}

// Put inserts or replaces a template.
func (s *InMemoryTemplates) Put(_ context.Context, t *models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *t
	c.Items = slices.Clone(t.Items)
	s.templates[t.ID] = &c
	return nil
}

func (s *InMemoryTemplates) Get(_ context.Context, id string) (*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, fmt.Errorf("checklist template %s: %w", id, sentinel.ErrNotFound)
	}
	c := *t
	c.Items = slices.Clone(t.Items)
	return &c, nil
}

func (s *InMemoryTemplates) List(_ context.Context) ([]*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Template, 0, len(s.templates))
	for _, t := range s.templates {
		c := *t
		c.Items = slices.Clone(t.Items)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// InMemoryLinks holds checklist links indexed by id and token.
type InMemoryLinks struct {
	mu      sync.RWMutex
	links   map[uuid.UUID]*models.Link
	byToken map[string]uuid.UUID
}

func NewInMemoryLinks() *InMemoryLinks {
	return &InMemoryLinks{
		links:   make(map[uuid.UUID]*models.Link),
		byToken: make(map[string]uuid.UUID),
	}
}

func (s *InMemoryLinks) Create(_ context.Context, l *models.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byToken[l.Token]; ok {
		return fmt.Errorf("checklist link token: %w", sentinel.ErrConflict)
	}
	s.links[l.ID] = l.Clone()
	s.byToken[l.Token] = l.ID
	return nil
}

func (s *InMemoryLinks) FindByID(_ context.Context, id uuid.UUID) (*models.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.links[id]
	if !ok {
		return nil, fmt.Errorf("checklist link %s: %w", id, sentinel.ErrNotFound)
	}
	return l.Clone(), nil
}

func (s *InMemoryLinks) FindByToken(_ context.Context, token string) (*models.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byToken[token]
	if !ok {
		return nil, fmt.Errorf("checklist link token: %w", sentinel.ErrNotFound)
	}
	return s.links[id].Clone(), nil
}

// ListByResidents returns links for the given residents, newest first.
func (s *InMemoryLinks) ListByResidents(_ context.Context, residentIDs []string) ([]*models.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Link
	for _, l := range s.links {
		if slices.Contains(residentIDs, l.ResidentID) {
			out = append(out, l.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].SentAt.After(out[j].SentAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// Execute runs validate and mutate against the stored link under the write lock.
func (s *InMemoryLinks) Execute(_ context.Context, id uuid.UUID, validate func(*models.Link) error, mutate func(*models.Link)) (*models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.links[id]
	if !ok {
		return nil, fmt.Errorf("checklist link %s: %w", id, sentinel.ErrNotFound)
	}
	working := stored.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.links[id] = working.Clone()
	return working, nil
}
