package checklist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

type TestContext interface {
	GET(ctx context.Context, path string) error
	POST(ctx context.Context, path string, body any) error
	LastStatus() int
	LastBody() []byte
	Save(key, value string)
	Saved(key string) string
}

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &checklistSteps{tc: tc}

	ctx.Step(`^I send checklist "([^"]*)" for resident "([^"]*)" to "([^"]*)"$`, steps.send)
	ctx.Step(`^the sent link should have status "([^"]*)"$`, steps.sentLinkStatus)
	ctx.Step(`^I resend the last checklist$`, steps.resend)
	ctx.Step(`^I open the guardian form with token "([^"]*)"$`, steps.openForm)
	ctx.Step(`^I submit the guardian form with token "([^"]*)" and no responses$`, steps.submitEmpty)
}

type checklistSteps struct {
	tc TestContext
}

type sendResponse struct {
	Link struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"link"`
}

func (s *checklistSteps) send(ctx context.Context, templateID, residentID, guardian string) error {
	err := s.tc.POST(ctx, "/api/v1/residents/"+residentID+"/checklists", map[string]string{
		"template_id":    templateID,
		"guardian_email": guardian,
	})
	if err != nil {
		return err
	}
	var res sendResponse
	if json.Unmarshal(s.tc.LastBody(), &res) == nil && res.Link.ID != "" {
		s.tc.Save("link_id", res.Link.ID)
		s.tc.Save("link_status", res.Link.Status)
	}
	return nil
}

func (s *checklistSteps) sentLinkStatus(want string) error {
	if got := s.tc.Saved("link_status"); got != want {
		return fmt.Errorf("link status = %q, want %q", got, want)
	}
	return nil
}

func (s *checklistSteps) resend(ctx context.Context) error {
	id := s.tc.Saved("link_id")
	if id == "" {
		return fmt.Errorf("no checklist was sent in this scenario")
	}
	return s.tc.POST(ctx, "/api/v1/checklists/"+id+"/resend", nil)
}

func (s *checklistSteps) openForm(ctx context.Context, token string) error {
	return s.tc.GET(ctx, "/api/v1/checklists/form/"+token)
}

func (s *checklistSteps) submitEmpty(ctx context.Context, token string) error {
	return s.tc.POST(ctx, "/api/v1/checklists/submit", map[string]any{
		"token":     token,
		"responses": []any{},
	})
}
