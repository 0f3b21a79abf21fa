package e2e

import (
	"github.com/cucumber/godog"

	"carecompliance/e2e/steps/checklist"
	"carecompliance/e2e/steps/common"
	"carecompliance/e2e/steps/overview"
)

// RegisterSteps wires every step package against one scenario context.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	checklist.RegisterSteps(ctx, tc)
	overview.RegisterSteps(ctx, tc)
}
