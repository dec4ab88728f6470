package worker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/pension-pipeline/internal/data/repos"
	"github.com/yungbote/pension-pipeline/internal/data/txn"
	"github.com/yungbote/pension-pipeline/internal/domain/jobs"
	"github.com/yungbote/pension-pipeline/internal/domain/stageerr"
	"github.com/yungbote/pension-pipeline/internal/jobs/runtime"
	"github.com/yungbote/pension-pipeline/internal/modules/pension"
	"github.com/yungbote/pension-pipeline/internal/observability"
	"github.com/yungbote/pension-pipeline/internal/pkg/ctxutil"
	"github.com/yungbote/pension-pipeline/internal/pkg/dbctx"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

// Locker guards the derived tables against concurrent runs.
type Locker interface {
	Acquire(ctx context.Context, owner string) (bool, error)
	Release(ctx context.Context, owner string) error
}

// NopLocker always grants the lock. Used when no Redis is configured.
type NopLocker struct{}

func (NopLocker) Acquire(context.Context, string) (bool, error) { return true, nil }
func (NopLocker) Release(context.Context, string) error         { return nil }

// Request selects the stages of one run. Empty Stages runs every registered
// stage. A zero ProcessingTime is replaced by the worker clock.
type Request struct {
	Trigger        string
	Stages         []string
	RequestID      string
	ProcessingTime time.Time
}

type StageResult struct {
	Stage    string           `json:"stage"`
	Table    string           `json:"table,omitempty"`
	Rows     int64            `json:"rows"`
	Duration time.Duration    `json:"duration_ns"`
	Quality  *pension.Quality `json:"quality,omitempty"`
	Err      error            `json:"-"`
}

// Report is the outcome of one run as seen by the caller.
type Report struct {
	Run    *jobs.PipelineRun
	Stages []StageResult
	Err    error
}

func (r *Report) Succeeded() bool { return r != nil && r.Err == nil }

type Worker struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     repos.PipelineRunRepo
	registry *runtime.Registry
	notify   runtime.Notifier
	locker   Locker
	now      func() time.Time
	wg       sync.WaitGroup
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, repo repos.PipelineRunRepo, registry *runtime.Registry, notify runtime.Notifier, locker Locker) *Worker {
	if locker == nil {
		locker = NopLocker{}
	}
	return &Worker{
		db:       db,
		log:      baseLog.With("component", "PipelineWorker"),
		repo:     repo,
		registry: registry,
		notify:   notify,
		locker:   locker,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the processing-time source.
func (w *Worker) SetClock(now func() time.Time) {
	if now != nil {
		w.now = now
	}
}

func (w *Worker) Stages() []string { return w.registry.Types() }

// Run executes the requested stages synchronously and returns once the run is terminal.
func (w *Worker) Run(ctx context.Context, req Request) (*Report, error) {
	ex, err := w.begin(ctx, req)
	if err != nil {
		return nil, err
	}
	rep := w.execute(ex)
	return rep, rep.Err
}

// Start claims the lock and writes the ledger row, then runs the stages in the
// background. The returned run is the ledger row as created.
func (w *Worker) Start(ctx context.Context, req Request) (*jobs.PipelineRun, error) {
	ex, err := w.begin(ctx, req)
	if err != nil {
		return nil, err
	}
	snapshot := *ex.run
	// Detach from the request context; the run outlives the HTTP call.
	ex.ctx = ctxutil.WithRunData(context.Background(), ctxutil.GetRunData(ex.ctx))
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		_ = w.execute(ex)
	}()
	return &snapshot, nil
}

// Wait blocks until every background run started by Start has finished.
func (w *Worker) Wait() { w.wg.Wait() }

type execution struct {
	ctx      context.Context
	run      *jobs.PipelineRun
	handlers []runtime.Handler
}

func (w *Worker) begin(ctx context.Context, req Request) (*execution, error) {
	ctx = ctxutil.Default(ctx)
	handlers, err := w.registry.Resolve(req.Stages)
	if err != nil {
		return nil, txn.MapError("resolve stages", stageerr.CodeValidation, err)
	}
	if len(handlers) == 0 {
		return nil, stageerr.NewError(stageerr.CodeValidation, "resolve stages", "no stages registered", nil)
	}
	trigger := strings.TrimSpace(req.Trigger)
	if trigger == "" {
		trigger = jobs.TriggerCLI
	}

	runID := uuid.New()
	ok, err := w.locker.Acquire(ctx, runID.String())
	if err != nil {
		return nil, stageerr.Wrap(stageerr.CodeInternal, "acquire run lock", err)
	}
	if !ok {
		observability.Current().IncLockConflict()
		return nil, stageerr.NewError(stageerr.CodeConflict, "acquire run lock", "another pipeline run is in progress", nil)
	}

	names := make([]string, 0, len(handlers))
	for _, h := range handlers {
		names = append(names, h.Type())
	}
	now := w.now()
	processing := req.ProcessingTime.UTC()
	if req.ProcessingTime.IsZero() {
		processing = now
	}
	run := &jobs.PipelineRun{
		ID:             runID,
		TriggeredBy:    trigger,
		Status:         jobs.RunStatusRunning,
		Stage:          names[0],
		Stages:         strings.Join(names, ","),
		ProcessingTime: processing,
		StartedAt:      now,
	}
	if _, err := w.repo.Create(dbctx.Context{Ctx: ctx}, run); err != nil {
		w.release(ctx, runID)
		return nil, txn.MapError("create pipeline run", stageerr.CodeWriteFailed, err)
	}

	ctx = ctxutil.WithRunData(ctx, &ctxutil.RunData{RunID: runID.String(), Trigger: trigger, RequestID: req.RequestID})
	w.log.Info("Pipeline run started", "run_id", runID, "trigger", trigger, "stages", run.Stages)
	return &execution{ctx: ctx, run: run, handlers: handlers}, nil
}

func (w *Worker) execute(ex *execution) *Report {
	defer w.release(ex.ctx, ex.run.ID)

	ctx, span := observability.StartSpan(ex.ctx, "pipeline.run",
		attribute.String("run_id", ex.run.ID.String()),
		attribute.String("trigger", ex.run.TriggeredBy),
	)
	jc := runtime.NewContext(ctx, w.db, ex.run, w.repo, w.notify)
	rep := &Report{Run: ex.run}
	m := observability.Current()
	results := make([]map[string]any, 0, len(ex.handlers))

	for i, h := range ex.handlers {
		stage := h.Type()
		if err := ctx.Err(); err != nil {
			rep.Err = stageerr.Wrap(stageerr.CodeInternal, stage, err)
			break
		}
		jc.Progress(stage, (i*100)/len(ex.handlers), "running")

		res := w.runStage(jc, h)
		rep.Stages = append(rep.Stages, res)
		status := "succeeded"
		if res.Err != nil {
			status = "failed"
		}
		m.ObserveStage(stage, status, res.Duration)
		if res.Err != nil {
			rep.Err = res.Err
			break
		}
		m.AddRowsWritten(stage, res.Rows)
		results = append(results, map[string]any{
			"stage":       stage,
			"table":       res.Table,
			"rows":        res.Rows,
			"duration_ms": res.Duration.Milliseconds(),
		})
	}

	last := ex.handlers[len(ex.handlers)-1].Type()
	if rep.Err != nil {
		failed := last
		if n := len(rep.Stages); n > 0 {
			failed = rep.Stages[n-1].Stage
		}
		jc.Fail(failed, rep.Err)
		m.IncRun(jobs.RunStatusFailed)
		w.log.Warn("Pipeline run failed", "run_id", ex.run.ID, "stage", failed, "error", rep.Err)
	} else {
		jc.Succeed(last, map[string]any{"stages": results})
		m.IncRun(jobs.RunStatusSucceeded)
		w.log.Info("Pipeline run succeeded", "run_id", ex.run.ID, "stages", len(rep.Stages))
	}
	observability.EndSpan(span, rep.Err)
	return rep
}

func (w *Worker) runStage(jc *runtime.Context, h runtime.Handler) (res StageResult) {
	stage := h.Type()
	res.Stage = stage
	if th, ok := h.(runtime.TableHandler); ok {
		res.Table = th.OutputTable()
	}
	ctx, span := observability.StartSpan(jc.Ctx, "pipeline.stage", attribute.String("stage", stage))
	parent := jc.Ctx
	jc.Ctx = ctx
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Stage handler panic", "run_id", jc.Run.ID, "stage", stage, "panic", r)
			res.Err = stageerr.NewError(stageerr.CodeInternal, stage, fmt.Sprintf("panic: %v", r), nil)
		}
		res.Duration = time.Since(start)
		if q, ok := jc.Quality(stage); ok {
			res.Quality = &q
		}
		observability.EndSpan(span, res.Err)
		jc.Ctx = parent
	}()

	rows, err := h.Run(jc)
	res.Rows = rows
	if err != nil {
		res.Err = stageerr.Wrap(stageerr.CodeInternal, stage, err)
	}
	return res
}

func (w *Worker) release(ctx context.Context, runID uuid.UUID) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctxutil.Default(ctx)), 5*time.Second)
	defer cancel()
	if err := w.locker.Release(rctx, runID.String()); err != nil {
		w.log.Warn("Releasing run lock failed", "run_id", runID, "error", err)
	}
}
