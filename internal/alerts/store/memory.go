package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"carecompliance/internal/alerts/models"
	"carecompliance/pkg/platform/sentinel"
)

// InMemoryAlerts keeps alerts plus an index of the active alert per dedup key.
type InMemoryAlerts struct {
	mu     sync.RWMutex
	alerts map[uuid.UUID]*models.Alert
	active map[models.DedupKey]uuid.UUID
}

func NewInMemoryAlerts() *InMemoryAlerts {
	return &InMemoryAlerts{
		alerts: make(map[uuid.UUID]*models.Alert),
		active: make(map[models.DedupKey]uuid.UUID),
	}
}

// InsertIfNoActive stores a unless an active alert with the same key exists.
// It returns the existing alert's id when nothing was inserted.
func (s *InMemoryAlerts) InsertIfNoActive(_ context.Context, a *models.Alert) (bool, uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := a.Key()
	if id, ok := s.active[key]; ok {
		return false, id, nil
	}
	s.alerts[a.ID] = a.Clone()
	s.active[key] = a.ID
	return true, a.ID, nil
}

func (s *InMemoryAlerts) FindByID(_ context.Context, id uuid.UUID) (*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.alerts[id]
	if !ok {
		return nil, fmt.Errorf("alert %s: %w", id, sentinel.ErrNotFound)
	}
	return a.Clone(), nil
}

// Execute validates and mutates one alert atomically.
func (s *InMemoryAlerts) Execute(_ context.Context, id uuid.UUID, validate func(*models.Alert) error, mutate func(*models.Alert)) (*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alerts[id]
	if !ok {
		return nil, fmt.Errorf("alert %s: %w", id, sentinel.ErrNotFound)
	}
	working := a.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)

	key := working.Key()
	if !working.Active && s.active[key] == id {
		delete(s.active, key)
	}
	s.alerts[id] = working
	return working.Clone(), nil
}

// ListActive returns active alerts in scope, ordered by due date.
func (s *InMemoryAlerts) ListActive(_ context.Context, all bool, locations []string) ([]*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Alert
	for _, a := range s.alerts {
		if !a.Active {
			continue
		}
		if all || slices.Contains(locations, a.Location) {
			out = append(out, a.Clone())
		}
	}
	sortAlerts(out)
	return out, nil
}

// Count returns the total number of alerts, active or not.
func (s *InMemoryAlerts) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts), nil
}

func sortAlerts(alerts []*models.Alert) {
	sort.Slice(alerts, func(i, j int) bool {
		if !alerts[i].DueAt.Equal(alerts[j].DueAt) {
			return alerts[i].DueAt.Before(alerts[j].DueAt)
		}
		return alerts[i].Location < alerts[j].Location
	})
}

// InMemorySettings holds the singleton settings record.
type InMemorySettings struct {
	mu       sync.RWMutex
	settings *models.Settings
}

func NewInMemorySettings() *InMemorySettings {
	return &InMemorySettings{}
}

// Get returns ErrNotFound until settings are first saved.
func (s *InMemorySettings) Get(_ context.Context) (*models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil, fmt.Errorf("alert settings: %w", sentinel.ErrNotFound)
	}
	c := *s.settings
	return &c, nil
}

func (s *InMemorySettings) Save(_ context.Context, settings *models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *settings
	s.settings = &c
	return nil
}
