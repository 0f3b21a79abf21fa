package service

import (
	"context"
	"errors"

	"carecompliance/internal/access"
	checklistmodels "carecompliance/internal/checklist/models"
	dErrors "carecompliance/pkg/domain-errors"
	"carecompliance/pkg/platform/sentinel"
	"carecompliance/pkg/requestcontext"
)

// GuardianChecklistOverview lists checklist links for residents in the
// actor's scope, newest first.
func (s *Service) GuardianChecklistOverview(ctx context.Context, actorID string) ([]checklistmodels.LinkSummary, error) {
	role, err := s.policy.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	all, locations := access.ScopeLocations(role)
	residents, err := s.subjects.List(ctx, all, locations)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list residents")
	}
	if len(residents) == 0 {
		return []checklistmodels.LinkSummary{}, nil
	}

	locationOf := make(map[string]string, len(residents))
	ids := make([]string, 0, len(residents))
	for _, r := range residents {
		locationOf[r.ID] = r.Location
		ids = append(ids, r.ID)
	}

	links, err := s.links.ListByResidents(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list checklist links")
	}

	now := requestcontext.Now(ctx)
	names := make(map[string]string)
	out := make([]checklistmodels.LinkSummary, 0, len(links))
	for _, l := range links {
		name, ok := names[l.TemplateID]
		if !ok {
			name, err = s.templateName(ctx, l.TemplateID)
			if err != nil {
				return nil, err
			}
			names[l.TemplateID] = name
		}
		out = append(out, checklistmodels.LinkSummary{
			LinkID:        l.ID,
			ResidentID:    l.ResidentID,
			Location:      locationOf[l.ResidentID],
			TemplateID:    l.TemplateID,
			TemplateName:  name,
			GuardianEmail: l.GuardianEmail,
			SentAt:        l.SentAt,
			ExpiresAt:     l.ExpiresAt,
			Status:        l.Status(now),
			Expired:       l.IsExpired(now),
		})
	}
	return out, nil
}

// templateName tolerates templates removed after the link was sent.
func (s *Service) templateName(ctx context.Context, id string) (string, error) {
	t, err := s.templates.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load checklist template")
	}
	return t.Name, nil
}
