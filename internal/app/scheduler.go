package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/pension-pipeline/internal/domain/jobs"
	"github.com/yungbote/pension-pipeline/internal/jobs/worker"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
	"github.com/yungbote/pension-pipeline/internal/temporalx"
	"github.com/yungbote/pension-pipeline/internal/temporalx/refresh"
	"github.com/yungbote/pension-pipeline/internal/temporalx/temporalworker"
)

// scheduledRunTimeout bounds one in-process scheduled run.
const scheduledRunTimeout = 2 * time.Hour

// Scheduler fires the full pipeline on a cron expression. Overlapping ticks
// are skipped while a run is still in flight.
type Scheduler struct {
	log  *logger.Logger
	cron *cron.Cron
	fire func(ctx context.Context) error
	ctx  context.Context
}

func NewScheduler(log *logger.Logger, spec string, fire func(ctx context.Context) error) (*Scheduler, error) {
	s := &Scheduler{
		log:  log.With("component", "Scheduler", "schedule", spec),
		fire: fire,
		ctx:  context.Background(),
	}
	cl := cronLogger{log: s.log}
	s.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid PIPELINE_SCHEDULE %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the cron loop until ctx ends.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	s.log.Info("Scheduler started")
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
	}()
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(s.ctx, scheduledRunTimeout)
	defer cancel()
	if err := s.fire(ctx); err != nil {
		s.log.Warn("Scheduled run failed", "error", err)
		return
	}
	s.log.Info("Scheduled run finished")
}

// scheduleFire picks how a tick runs the pipeline: as a Temporal workflow when
// a client is configured, otherwise in-process on the worker.
func scheduleFire(log *logger.Logger, w *worker.Worker, tc temporalsdkclient.Client, tcfg temporalx.Config) func(ctx context.Context) error {
	if tc != nil {
		return func(ctx context.Context) error {
			id, err := temporalworker.StartRefresh(ctx, tc, tcfg, refresh.Input{Trigger: jobs.TriggerSchedule})
			if err != nil {
				return err
			}
			log.Info("Scheduled refresh workflow started", "workflow_id", id)
			return nil
		}
	}
	return func(ctx context.Context) error {
		rep, err := w.Run(ctx, worker.Request{Trigger: jobs.TriggerSchedule})
		if err != nil {
			return err
		}
		return rep.Err
	}
}

// cronLogger adapts the app logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
