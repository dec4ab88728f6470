package services

import (
	"context"
	"encoding/json"
	"time"

	redisclient "github.com/yungbote/pension-pipeline/internal/clients/redis"
	"github.com/yungbote/pension-pipeline/internal/domain/jobs"
	"github.com/yungbote/pension-pipeline/internal/jobs/runtime"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

// =========================
// Run notifier
// =========================

type runNotifier struct {
	log *logger.Logger
	bus redisclient.RunEventBus
}

// NewRunNotifier publishes terminal run events on bus. A nil bus only logs.
func NewRunNotifier(baseLog *logger.Logger, bus redisclient.RunEventBus) runtime.Notifier {
	return &runNotifier{
		log: baseLog.With("service", "RunNotifier"),
		bus: bus,
	}
}

func (n *runNotifier) RunProgress(run *jobs.PipelineRun, stage string, pct int) {
	if n == nil || run == nil {
		return
	}
	n.log.Debug("Run progress", "run_id", run.ID, "stage", stage, "progress", pct)
}

func (n *runNotifier) RunFailed(run *jobs.PipelineRun, stage, msg string) {
	if n == nil || run == nil {
		return
	}
	n.publish(redisclient.RunEvent{
		RunID:     run.ID.String(),
		Status:    jobs.RunStatusFailed,
		Stage:     stage,
		Progress:  run.Progress,
		Error:     msg,
		RowCounts: rowCounts(run),
		At:        time.Now().UTC(),
	})
}

func (n *runNotifier) RunDone(run *jobs.PipelineRun) {
	if n == nil || run == nil {
		return
	}
	n.publish(redisclient.RunEvent{
		RunID:     run.ID.String(),
		Status:    jobs.RunStatusSucceeded,
		Stage:     run.Stage,
		Progress:  run.Progress,
		RowCounts: rowCounts(run),
		At:        time.Now().UTC(),
	})
}

func (n *runNotifier) publish(ev redisclient.RunEvent) {
	if n.bus == nil {
		n.log.Info("Run finished", "run_id", ev.RunID, "status", ev.Status, "stage", ev.Stage)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := n.bus.Publish(ctx, ev); err != nil {
		n.log.Warn("Publishing run event failed", "run_id", ev.RunID, "error", err)
	}
}

// rowCounts reads the per-stage row counts back out of the run result.
func rowCounts(run *jobs.PipelineRun) map[string]int64 {
	if run == nil || len(run.Result) == 0 {
		return nil
	}
	var res struct {
		Stages []struct {
			Stage string `json:"stage"`
			Rows  int64  `json:"rows"`
		} `json:"stages"`
	}
	if err := json.Unmarshal(run.Result, &res); err != nil || len(res.Stages) == 0 {
		return nil
	}
	out := make(map[string]int64, len(res.Stages))
	for _, s := range res.Stages {
		out[s.Stage] = s.Rows
	}
	return out
}
