package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/pension-pipeline/internal/data/repos"
	"github.com/yungbote/pension-pipeline/internal/data/txn"
	"github.com/yungbote/pension-pipeline/internal/jobs/pipeline"
	"github.com/yungbote/pension-pipeline/internal/jobs/worker"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
	"github.com/yungbote/pension-pipeline/internal/services"
)

type Services struct {
	Worker  *worker.Worker
	Runs    services.RunService
	Summary services.SummaryService
}

func wireServices(theDB *gorm.DB, log *logger.Logger, cfg Config, reposet repos.Set, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	registry, err := pipeline.NewRegistry(log, reposet, txn.NewGormRunner(theDB), pipeline.Options{
		Policy:     cfg.Policy,
		Thresholds: cfg.Thresholds,
	})
	if err != nil {
		return Services{}, fmt.Errorf("register pipeline stages: %w", err)
	}

	notifier := services.NewRunNotifier(log, clients.EventBus)
	w := worker.NewWorker(theDB, log, reposet.PipelineRun, registry, notifier, clients.RunLock)

	return Services{
		Worker:  w,
		Runs:    services.NewRunService(log, reposet.PipelineRun, w),
		Summary: services.NewSummaryService(log, reposet.MemberSummary),
	}, nil
}
