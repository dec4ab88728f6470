package refresh

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/temporal"

	"github.com/yungbote/pension-pipeline/internal/domain/stageerr"
	"github.com/yungbote/pension-pipeline/internal/jobs/worker"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

// StageRunner executes pipeline stages; *worker.Worker satisfies it.
type StageRunner interface {
	Run(ctx context.Context, req worker.Request) (*worker.Report, error)
}

type Activities struct {
	Log    *logger.Logger
	Runner StageRunner
}

func (a *Activities) RunStage(ctx context.Context, in StageInput) (StageOutput, error) {
	out := StageOutput{Stage: in.Stage}
	if a == nil || a.Runner == nil {
		return out, fmt.Errorf("refresh: activity not configured")
	}

	rep, err := a.Runner.Run(ctx, worker.Request{
		Trigger:        in.Trigger,
		Stages:         []string{in.Stage},
		ProcessingTime: in.ProcessingTime,
	})
	if rep != nil && rep.Run != nil {
		out.RunID = rep.Run.ID.String()
	}
	if rep != nil && len(rep.Stages) > 0 {
		out.Table = rep.Stages[0].Table
		out.Rows = rep.Stages[0].Rows
	}
	if err != nil {
		code := string(stageerr.CodeOf(err))
		if a.Log != nil {
			a.Log.Warn("Refresh stage failed", "stage", in.Stage, "run_id", out.RunID, "code", code, "error", err)
		}
		return out, temporal.NewNonRetryableApplicationError(err.Error(), code, err)
	}
	return out, nil
}
