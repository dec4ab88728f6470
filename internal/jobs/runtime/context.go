package runtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/pension-pipeline/internal/data/repos"
	"github.com/yungbote/pension-pipeline/internal/domain/jobs"
	"github.com/yungbote/pension-pipeline/internal/domain/stageerr"
	"github.com/yungbote/pension-pipeline/internal/modules/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/ctxutil"
	"github.com/yungbote/pension-pipeline/internal/pkg/dbctx"
)

// Notifier receives run lifecycle events. Implementations must not block.
type Notifier interface {
	RunProgress(run *jobs.PipelineRun, stage string, pct int)
	RunFailed(run *jobs.PipelineRun, stage, msg string)
	RunDone(run *jobs.PipelineRun)
}

/*
Context is the execution handle a stage receives for one pipeline run.
It carries:
  - Ctx: cancellation and run metadata (ctxutil.RunData)
  - DB: the database stages read from and write to
  - Run: the pipeline_run ledger row in memory
  - ProcessingTime: the single timestamp every derived row of this run carries

Stages never touch pipeline_run directly; they report through Progress/Fail/Succeed
and hand their quality findings to RecordQuality.
*/
type Context struct {
	Ctx            context.Context
	DB             *gorm.DB
	Run            *jobs.PipelineRun
	Repo           repos.PipelineRunRepo
	Notify         Notifier
	ProcessingTime time.Time

	mu      sync.Mutex
	quality []pension.Quality
}

func NewContext(ctx context.Context, db *gorm.DB, run *jobs.PipelineRun, repo repos.PipelineRunRepo, notify Notifier) *Context {
	c := &Context{
		Ctx:    ctxutil.Default(ctx),
		DB:     db,
		Run:    run,
		Repo:   repo,
		Notify: notify,
	}
	if run != nil {
		c.ProcessingTime = run.ProcessingTime
		if ctxutil.GetRunData(c.Ctx) == nil {
			c.Ctx = ctxutil.WithRunData(c.Ctx, &ctxutil.RunData{RunID: run.ID.String(), Trigger: run.TriggeredBy})
		}
	}
	if c.ProcessingTime.IsZero() {
		c.ProcessingTime = time.Now().UTC()
	}
	return c
}

// RecordQuality keeps a stage's quality findings for the run result. A second
// record for the same stage replaces the first.
func (c *Context) RecordQuality(q pension.Quality) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.quality {
		if c.quality[i].Stage == q.Stage {
			c.quality[i] = q
			return
		}
	}
	c.quality = append(c.quality, q)
}

func (c *Context) Quality(stage string) (pension.Quality, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, q := range c.quality {
		if q.Stage == stage {
			return q, true
		}
	}
	return pension.Quality{}, false
}

// Ledger writes must land even after the run context is canceled.
func (c *Context) dbc() dbctx.Context {
	return dbctx.Context{Ctx: context.WithoutCancel(c.Ctx)}
}

func (c *Context) hasRun() bool {
	return c != nil && c.Repo != nil && c.Run != nil && c.Run.ID != uuid.Nil
}

/*
Progress records a non-terminal update. Ledger writes are guarded so a run that
already failed or succeeded is never reopened.
*/
func (c *Context) Progress(stage string, pct int, msg string) {
	if c == nil {
		return
	}
	now := time.Now().UTC()
	if c.hasRun() {
		ok, _ := c.Repo.UpdateFieldsUnlessStatus(c.dbc(), c.Run.ID, terminalStatuses, map[string]interface{}{
			"stage":      stage,
			"progress":   pct,
			"updated_at": now,
		})
		if !ok {
			return
		}
	}
	if c.Run != nil {
		c.Run.Stage = stage
		c.Run.Progress = pct
		c.Run.UpdatedAt = now
	}
	if c.Notify != nil && c.Run != nil {
		c.Notify.RunProgress(c.Run, stage, pct)
	}
}

/*
Fail marks the run failed at stage. The error code, when err carries one, is
stored next to the message so callers can tell input problems from write problems.
*/
func (c *Context) Fail(stage string, err error) {
	if c == nil {
		return
	}
	now := time.Now().UTC()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	code := string(stageerr.CodeOf(err))
	res := c.resultJSON(nil)

	if c.hasRun() {
		ok, _ := c.Repo.UpdateFieldsUnlessStatus(c.dbc(), c.Run.ID, terminalStatuses, map[string]interface{}{
			"status":      jobs.RunStatusFailed,
			"stage":       stage,
			"error":       msg,
			"error_code":  code,
			"result":      res,
			"finished_at": now,
			"updated_at":  now,
		})
		if !ok {
			return
		}
	}
	if c.Run != nil {
		c.Run.Status = jobs.RunStatusFailed
		c.Run.Stage = stage
		c.Run.Error = msg
		c.Run.ErrorCode = code
		c.Run.Result = res
		c.Run.FinishedAt = &now
		c.Run.UpdatedAt = now
	}
	if c.Notify != nil && c.Run != nil {
		c.Notify.RunFailed(c.Run, stage, msg)
	}
}

// Succeed marks the run succeeded and stores result plus the recorded quality.
func (c *Context) Succeed(finalStage string, result map[string]any) {
	if c == nil {
		return
	}
	now := time.Now().UTC()
	res := c.resultJSON(result)

	if c.hasRun() {
		ok, _ := c.Repo.UpdateFieldsUnlessStatus(c.dbc(), c.Run.ID, terminalStatuses, map[string]interface{}{
			"status":      jobs.RunStatusSucceeded,
			"stage":       finalStage,
			"progress":    100,
			"error":       "",
			"error_code":  "",
			"result":      res,
			"finished_at": now,
			"updated_at":  now,
		})
		if !ok {
			return
		}
	}
	if c.Run != nil {
		c.Run.Status = jobs.RunStatusSucceeded
		c.Run.Stage = finalStage
		c.Run.Progress = 100
		c.Run.Error = ""
		c.Run.ErrorCode = ""
		c.Run.Result = res
		c.Run.FinishedAt = &now
		c.Run.UpdatedAt = now
	}
	if c.Notify != nil && c.Run != nil {
		c.Notify.RunDone(c.Run)
	}
}

func (c *Context) resultJSON(result map[string]any) datatypes.JSON {
	out := map[string]any{}
	for k, v := range result {
		out[k] = v
	}
	c.mu.Lock()
	if len(c.quality) > 0 {
		out["quality"] = append([]pension.Quality(nil), c.quality...)
	}
	c.mu.Unlock()
	b, err := json.Marshal(out)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(b)
}

var terminalStatuses = []string{jobs.RunStatusSucceeded, jobs.RunStatusFailed}
