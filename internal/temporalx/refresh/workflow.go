package refresh

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/pension-pipeline/internal/domain/jobs"
	"github.com/yungbote/pension-pipeline/internal/modules/pension"
)

// DefaultStages is the dependency order of a full refresh.
var DefaultStages = []string{
	pension.StageMembersClean,
	pension.StageContributionsEnriched,
	pension.StageMemberSummary,
}

// Workflow runs each stage as its own activity, in order, and stops at the
// first failure. Every stage shares the processing time taken at workflow start.
func Workflow(ctx workflow.Context, in Input) (Result, error) {
	stages := in.Stages
	if len(stages) == 0 {
		stages = DefaultStages
	}
	trigger := in.Trigger
	if trigger == "" {
		trigger = jobs.TriggerTemporal
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Hour,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	res := Result{ProcessingTime: workflow.Now(ctx).UTC()}
	log := workflow.GetLogger(ctx)
	for _, stage := range stages {
		var out StageOutput
		err := workflow.ExecuteActivity(ctx, ActivityRunStage, StageInput{
			Stage:          stage,
			Trigger:        trigger,
			ProcessingTime: res.ProcessingTime,
		}).Get(ctx, &out)
		if err != nil {
			log.Error("Refresh stage failed", "stage", stage, "error", err)
			return res, err
		}
		res.Stages = append(res.Stages, out)
	}
	return res, nil
}
