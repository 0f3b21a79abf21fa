package overview

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/cucumber/godog"

	"carecompliance/pkg/domain"
)

type TestContext interface {
	GET(ctx context.Context, path string) error
	POST(ctx context.Context, path string, body any) error
	LastBody() []byte
	Saved(key string) string
}

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &overviewSteps{tc: tc}

	ctx.Step(`^I request the compliance overview$`, steps.requestOverview)
	ctx.Step(`^every overview item should be in location "([^"]*)"$`, steps.everyItemInLocation)
	ctx.Step(`^I request the guardian checklist overview$`, steps.requestChecklists)
	ctx.Step(`^the checklist overview should include the sent link$`, steps.includesSentLink)
	ctx.Step(`^I send reminders for items "([^"]*)"$`, steps.sendReminders)
	ctx.Step(`^the reminder summary should list "([^"]*)" as not found$`, steps.notFound)
	ctx.Step(`^I export the compliance list$`, steps.export)
}

type overviewSteps struct {
	tc TestContext
}

func (s *overviewSteps) requestOverview(ctx context.Context) error {
	return s.tc.GET(ctx, "/api/v1/overview")
}

func (s *overviewSteps) everyItemInLocation(location string) error {
	var body struct {
		Items []struct {
			ID       string `json:"id"`
			Location string `json:"location"`
		} `json:"items"`
	}
	if err := json.Unmarshal(s.tc.LastBody(), &body); err != nil {
		return err
	}
	for _, it := range body.Items {
		if it.Location != location {
			return fmt.Errorf("item %s is in %q, want %q", it.ID, it.Location, location)
		}
	}
	return nil
}

func (s *overviewSteps) requestChecklists(ctx context.Context) error {
	return s.tc.GET(ctx, "/api/v1/overview/checklists")
}

func (s *overviewSteps) includesSentLink() error {
	id := s.tc.Saved("link_id")
	var body struct {
		Links []struct {
			LinkID string `json:"link_id"`
		} `json:"links"`
	}
	if err := json.Unmarshal(s.tc.LastBody(), &body); err != nil {
		return err
	}
	for _, l := range body.Links {
		if l.LinkID == id {
			return nil
		}
	}
	return fmt.Errorf("link %s not in checklist overview", id)
}

func (s *overviewSteps) sendReminders(ctx context.Context, items string) error {
	refs := []string{}
	if items != "" {
		refs = strings.Split(items, ",")
	}
	return s.tc.POST(ctx, "/api/v1/overview/reminders", map[string]any{"items": refs})
}

func (s *overviewSteps) notFound(ref string) error {
	want, err := domain.ParseItemRef(ref)
	if err != nil {
		return err
	}
	var body struct {
		NotFound []domain.ItemRef `json:"not_found"`
	}
	if err := json.Unmarshal(s.tc.LastBody(), &body); err != nil {
		return err
	}
	if slices.Contains(body.NotFound, want) {
		return nil
	}
	return fmt.Errorf("%s not reported as not found: %s", ref, s.tc.LastBody())
}

func (s *overviewSteps) export(ctx context.Context) error {
	return s.tc.POST(ctx, "/api/v1/overview/export", map[string]any{})
}
