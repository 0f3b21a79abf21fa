package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"carecompliance/internal/access"
	alertmodels "carecompliance/internal/alerts/models"
	docmodels "carecompliance/internal/documents/models"
	"carecompliance/internal/due"
	"carecompliance/internal/overview/models"
	"carecompliance/internal/subjects"
	"carecompliance/pkg/domain"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/requestcontext"
)

type alertKey struct {
	kind     due.Kind
	location string
	dueAt    time.Time
}

// snapshot is the scoped raw data one overview is built from.
type snapshot struct {
	subjects []subjects.Subject
	isp      []*docmodels.ISPFile
	plans    []*docmodels.FireEvacPlan
	alerts   []*alertmodels.Alert
}

// Overview returns the actor's scoped compliance items sorted by due date.
func (s *Service) Overview(ctx context.Context, actorID string) ([]models.Item, error) {
	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.overviewFor(ctx, role)
}

func (s *Service) overviewFor(ctx context.Context, role *access.Role) ([]models.Item, error) {
	snap, err := s.load(ctx, role)
	if err != nil {
		return nil, err
	}
	return buildItems(snap, requestcontext.Now(ctx)), nil
}

func (s *Service) load(ctx context.Context, role *access.Role) (*snapshot, error) {
	all, locations := access.ScopeLocations(role)
	snap := &snapshot{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.subjects.List(gctx, all, locations)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list residents")
		}
		snap.subjects = list
		return nil
	})
	g.Go(func() error {
		list, err := s.isp.ListActive(gctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list active ISP files")
		}
		snap.isp = list
		return nil
	})
	g.Go(func() error {
		list, err := s.fireEvac.ListLatest(gctx, all, locations)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list fire evacuation plans")
		}
		snap.plans = list
		return nil
	})
	g.Go(func() error {
		list, err := s.alerts.ListActive(gctx, all, locations)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list active alerts")
		}
		snap.alerts = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func buildItems(snap *snapshot, now time.Time) []models.Item {
	active := make(map[alertKey]uuid.UUID, len(snap.alerts))
	for _, a := range snap.alerts {
		active[alertKey{kind: a.Type, location: a.Location, dueAt: a.DueAt.UTC()}] = a.ID
	}

	// Active files are global; the subject list carries the scope.
	activeByResident := make(map[string]*docmodels.ISPFile, len(snap.isp))
	for _, f := range snap.isp {
		if f.DueAt != nil {
			activeByResident[f.ResidentID] = f
		}
	}

	items := make([]models.Item, 0, len(snap.subjects)+len(snap.plans))
	for _, subj := range snap.subjects {
		f, ok := activeByResident[subj.ID]
		if !ok {
			continue
		}
		item := newItem(domain.ItemRef{Kind: domain.ItemKindISP, EntityID: subj.ID}, subj.Location, due.KindISP, *f.DueAt, now)
		if f.ActivatedAt != nil {
			item.LastAction = *f.ActivatedAt
		}
		item.ActiveAlertID = lookupAlert(active, item)
		items = append(items, item)
	}
	for _, p := range snap.plans {
		item := newItem(domain.ItemRef{Kind: domain.ItemKindFireEvac, EntityID: p.ID.String()}, p.Location, due.KindFireEvac, p.DueAt, now)
		item.LastAction = p.UploadedAt
		item.ActiveAlertID = lookupAlert(active, item)
		items = append(items, item)
	}

	slices.SortStableFunc(items, func(a, b models.Item) int {
		if c := a.DueDate.Compare(b.DueDate); c != 0 {
			return c
		}
		return strings.Compare(a.Ref.String(), b.Ref.String())
	})
	return items
}

func newItem(ref domain.ItemRef, location string, kind due.Kind, dueAt, now time.Time) models.Item {
	days := due.DaysUntilDue(dueAt, now)
	return models.Item{
		Ref:          ref,
		Location:     location,
		Type:         kind,
		DueDate:      dueAt,
		Status:       due.ClassifyDays(days),
		DaysUntilDue: days,
	}
}

func lookupAlert(active map[alertKey]uuid.UUID, item models.Item) *uuid.UUID {
	id, ok := active[alertKey{kind: item.Type, location: item.Location, dueAt: item.DueDate.UTC()}]
	if !ok {
		return nil
	}
	return &id
}
