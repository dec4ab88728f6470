package temporalworker

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
	"github.com/yungbote/pension-pipeline/internal/temporalx"
	"github.com/yungbote/pension-pipeline/internal/temporalx/refresh"
	"github.com/yungbote/pension-pipeline/internal/utils"
)

type Runner struct {
	log    *logger.Logger
	tc     temporalsdkclient.Client
	cfg    temporalx.Config
	stages refresh.StageRunner
}

func NewRunner(log *logger.Logger, tc temporalsdkclient.Client, cfg temporalx.Config, stages refresh.StageRunner) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if stages == nil {
		return nil, fmt.Errorf("temporal worker missing stage runner")
	}
	return &Runner{
		log:    log.With("component", "TemporalWorker"),
		tc:     tc,
		cfg:    cfg,
		stages: stages,
	}, nil
}

// Start begins polling the task queue and stops the worker when ctx ends.
func (r *Runner) Start(ctx context.Context) error {
	r.log.Info("Starting Temporal worker", "namespace", r.cfg.Namespace, "task_queue", r.cfg.TaskQueue)

	// One run at a time: stages replace whole tables.
	concurrency := utils.GetEnvAsInt("TEMPORAL_WORKER_CONCURRENCY", 1, r.log)
	if concurrency < 1 {
		concurrency = 1
	}
	w := worker.New(r.tc, r.cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     concurrency,
		MaxConcurrentWorkflowTaskExecutionSize: concurrency,
	})
	acts := &refresh.Activities{Log: r.log, Runner: r.stages}
	w.RegisterWorkflowWithOptions(refresh.Workflow, workflow.RegisterOptions{Name: refresh.WorkflowName})
	w.RegisterActivityWithOptions(acts.RunStage, activity.RegisterOptions{Name: refresh.ActivityRunStage})

	if err := w.Start(); err != nil {
		w.Stop()
		return fmt.Errorf("temporal worker start: %w", err)
	}
	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

// StartRefresh starts a pension_refresh workflow on the configured task queue.
func StartRefresh(ctx context.Context, tc temporalsdkclient.Client, cfg temporalx.Config, in refresh.Input) (string, error) {
	if tc == nil {
		return "", fmt.Errorf("temporal client is not configured")
	}
	run, err := tc.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		TaskQueue: cfg.TaskQueue,
	}, refresh.WorkflowName, in)
	if err != nil {
		return "", err
	}
	return run.GetID(), nil
}
