package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/pension-pipeline/internal/data/repos"
	"github.com/yungbote/pension-pipeline/internal/data/txn"
	"github.com/yungbote/pension-pipeline/internal/domain/jobs"
	"github.com/yungbote/pension-pipeline/internal/domain/stageerr"
	"github.com/yungbote/pension-pipeline/internal/jobs/worker"
	"github.com/yungbote/pension-pipeline/internal/pkg/ctxutil"
	"github.com/yungbote/pension-pipeline/internal/pkg/dbctx"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

type RunService interface {
	// Trigger starts a run in the background and returns its ledger row.
	Trigger(dbc dbctx.Context, trigger string, stages []string) (*jobs.PipelineRun, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*jobs.PipelineRun, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*jobs.PipelineRun, error)
	Stages() []string
}

type runService struct {
	log    *logger.Logger
	repo   repos.PipelineRunRepo
	worker *worker.Worker
}

func NewRunService(baseLog *logger.Logger, repo repos.PipelineRunRepo, w *worker.Worker) RunService {
	return &runService{
		log:    baseLog.With("service", "RunService"),
		repo:   repo,
		worker: w,
	}
}

func (s *runService) Trigger(dbc dbctx.Context, trigger string, stages []string) (*jobs.PipelineRun, error) {
	req := worker.Request{Trigger: strings.TrimSpace(trigger), Stages: stages}
	if rd := ctxutil.GetRunData(dbc.Ctx); rd != nil {
		req.RequestID = rd.RequestID
	}
	run, err := s.worker.Start(dbc.Context(), req)
	if err != nil {
		return nil, err
	}
	s.log.Info("Run triggered", "run_id", run.ID, "trigger", run.TriggeredBy, "stages", run.Stages)
	return run, nil
}

func (s *runService) Get(dbc dbctx.Context, id uuid.UUID) (*jobs.PipelineRun, error) {
	run, err := s.repo.GetByID(dbc, id)
	if err != nil {
		return nil, txn.MapError("get pipeline run", stageerr.CodeInternal, err)
	}
	if run == nil {
		return nil, stageerr.NewError(stageerr.CodeNotFound, "get pipeline run", "run "+id.String()+" not found", nil)
	}
	return run, nil
}

func (s *runService) ListRecent(dbc dbctx.Context, limit int) ([]*jobs.PipelineRun, error) {
	runs, err := s.repo.ListRecent(dbc, limit)
	if err != nil {
		return nil, txn.MapError("list pipeline runs", stageerr.CodeInternal, err)
	}
	return runs, nil
}

func (s *runService) Stages() []string { return s.worker.Stages() }
