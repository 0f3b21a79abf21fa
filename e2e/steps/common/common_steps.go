package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is what the shared steps need from the suite.
type TestContext interface {
	GET(ctx context.Context, path string) error
	SetActor(actorID string)
	ClearActor()
	LastStatus() int
	LastBody() []byte
	LastHeader(name string) string
	ResponseField(field string) (any, error)
}

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^I am signed in as "([^"]*)"$`, steps.signedInAs)
	ctx.Step(`^I am not signed in$`, steps.notSignedIn)
	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response header "([^"]*)" should contain "([^"]*)"$`, steps.headerShouldContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.fieldShouldEqual)
	ctx.Step(`^the response error should be "([^"]*)"$`, steps.errorShouldBe)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) signedInAs(actorID string) error {
	s.tc.SetActor(actorID)
	return nil
}

func (s *commonSteps) notSignedIn() error {
	s.tc.ClearActor()
	return nil
}

func (s *commonSteps) get(ctx context.Context, path string) error {
	return s.tc.GET(ctx, path)
}

func (s *commonSteps) statusShouldBe(want int) error {
	if got := s.tc.LastStatus(); got != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, got, s.tc.LastBody())
	}
	return nil
}

func (s *commonSteps) headerShouldContain(name, want string) error {
	got := s.tc.LastHeader(name)
	if got == "" || !strings.Contains(got, want) {
		return fmt.Errorf("header %s = %q, want it to contain %q", name, got, want)
	}
	return nil
}

func (s *commonSteps) fieldShouldEqual(field, want string) error {
	v, err := s.tc.ResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != want {
		return fmt.Errorf("field %s = %q, want %q", field, got, want)
	}
	return nil
}

func (s *commonSteps) errorShouldBe(code string) error {
	return s.fieldShouldEqual("error", code)
}
