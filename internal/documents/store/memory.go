package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"carecompliance/internal/documents/models"
	"carecompliance/pkg/platform/sentinel"
)

// InMemoryISP keeps ISP files in a map guarded by a RWMutex.
type InMemoryISP struct {
	mu    sync.RWMutex
	files map[uuid.UUID]*models.ISPFile
}

func NewInMemoryISP() *InMemoryISP {
	return &InMemoryISP{files: make(map[uuid.UUID]*models.ISPFile)}
}

// Create inserts a draft. A label already used for the resident is a conflict.
func (s *InMemoryISP) Create(_ context.Context, f *models.ISPFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.files {
		if existing.ResidentID == f.ResidentID && existing.VersionLabel == f.VersionLabel {
			return fmt.Errorf("isp file %s/%s: %w", f.ResidentID, f.VersionLabel, sentinel.ErrConflict)
		}
	}
	s.files[f.ID] = f.Clone()
	return nil
}

func (s *InMemoryISP) FindByID(_ context.Context, id uuid.UUID) (*models.ISPFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("isp file %s: %w", id, sentinel.ErrNotFound)
	}
	return f.Clone(), nil
}

// ListByResident returns every version for the resident, newest first.
func (s *InMemoryISP) ListByResident(_ context.Context, residentID string) ([]*models.ISPFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.ISPFile
	for _, f := range s.files {
		if f.ResidentID == residentID {
			out = append(out, f.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryISP) FindActiveByResident(_ context.Context, residentID string) (*models.ISPFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, f := range s.files {
		if f.ResidentID == residentID && f.IsActive() {
			return f.Clone(), nil
		}
	}
	return nil, fmt.Errorf("active isp file for %s: %w", residentID, sentinel.ErrNotFound)
}

// ListActive returns the active file of every resident, ordered by resident.
func (s *InMemoryISP) ListActive(_ context.Context) ([]*models.ISPFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.ISPFile
	for _, f := range s.files {
		if f.IsActive() {
			out = append(out, f.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ResidentID < out[j].ResidentID
	})
	return out, nil
}

// ArchiveActiveForResident archives every active file of the resident except
// exceptID and returns how many were archived.
func (s *InMemoryISP) ArchiveActiveForResident(_ context.Context, residentID string, exceptID uuid.UUID, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	archived := 0
	for id, f := range s.files {
		if id == exceptID || f.ResidentID != residentID || !f.IsActive() {
			continue
		}
		f.ApplyArchive(now)
		archived++
	}
	return archived, nil
}

// Execute loads a file, validates it, mutates it and saves it as a single
// step. validate errors are returned unchanged.
func (s *InMemoryISP) Execute(_ context.Context, id uuid.UUID, validate func(*models.ISPFile) error, mutate func(*models.ISPFile)) (*models.ISPFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("isp file %s: %w", id, sentinel.ErrNotFound)
	}
	working := f.Clone()
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)

	if working.IsActive() {
		for otherID, other := range s.files {
			if otherID != id && other.ResidentID == working.ResidentID && other.IsActive() {
				return nil, fmt.Errorf("second active isp file for %s: %w", working.ResidentID, sentinel.ErrConflict)
			}
		}
	}
	s.files[id] = working
	return working.Clone(), nil
}

// InMemoryFireEvac keeps Fire-Evac plans plus a per-location version index.
type InMemoryFireEvac struct {
	mu       sync.RWMutex
	plans    map[uuid.UUID]*models.FireEvacPlan
	current  map[string]int
	byVerKey map[string]uuid.UUID
}

func NewInMemoryFireEvac() *InMemoryFireEvac {
	return &InMemoryFireEvac{
		plans:    make(map[uuid.UUID]*models.FireEvacPlan),
		current:  make(map[string]int),
		byVerKey: make(map[string]uuid.UUID),
	}
}

// NextVersion advances and returns the location's version counter.
func (s *InMemoryFireEvac) NextVersion(_ context.Context, location string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current[location]++
	return s.current[location], nil
}

// Create stores an immutable plan. A repeated (location, version) is a conflict.
func (s *InMemoryFireEvac) Create(_ context.Context, p *models.FireEvacPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := versionKey(p.Location, p.Version)
	if _, exists := s.byVerKey[key]; exists {
		return fmt.Errorf("fire evac plan %s: %w", key, sentinel.ErrConflict)
	}
	s.plans[p.ID] = p.Clone()
	s.byVerKey[key] = p.ID
	return nil
}

func (s *InMemoryFireEvac) FindByID(_ context.Context, id uuid.UUID) (*models.FireEvacPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plans[id]
	if !ok {
		return nil, fmt.Errorf("fire evac plan %s: %w", id, sentinel.ErrNotFound)
	}
	return p.Clone(), nil
}

// Latest returns the plan at the location's current version.
func (s *InMemoryFireEvac) Latest(_ context.Context, location string) (*models.FireEvacPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latestLocked(location)
}

// ListLatest returns the latest plan of every visible location, ordered by location.
func (s *InMemoryFireEvac) ListLatest(_ context.Context, all bool, locations []string) ([]*models.FireEvacPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := locations
	if all {
		candidates = make([]string, 0, len(s.current))
		for loc := range s.current {
			candidates = append(candidates, loc)
		}
	}
	sort.Strings(candidates)

	var out []*models.FireEvacPlan
	for _, loc := range candidates {
		p, err := s.latestLocked(loc)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// ListByLocation returns every version for location, newest first.
func (s *InMemoryFireEvac) ListByLocation(_ context.Context, location string) ([]*models.FireEvacPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.FireEvacPlan
	for _, p := range s.plans {
		if p.Location == location {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

// latestLocked walks down from the counter so a reserved but never written
// version does not hide the previous plan.
func (s *InMemoryFireEvac) latestLocked(location string) (*models.FireEvacPlan, error) {
	for v := s.current[location]; v > 0; v-- {
		if id, ok := s.byVerKey[versionKey(location, v)]; ok {
			return s.plans[id].Clone(), nil
		}
	}
	return nil, fmt.Errorf("fire evac plan for %s: %w", location, sentinel.ErrNotFound)
}

func versionKey(location string, version int) string {
	return fmt.Sprintf("%s#%d", location, version)
}
