package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/pension-pipeline/internal/data/db"
	"github.com/yungbote/pension-pipeline/internal/data/repos"
	"github.com/yungbote/pension-pipeline/internal/domain/jobs"
	domain "github.com/yungbote/pension-pipeline/internal/domain/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

func wireRepos(theDB *gorm.DB, log *logger.Logger, tables repos.Tables) repos.Set {
	log.Info("Wiring repos...")
	return repos.NewSet(theDB, log, tables)
}

// migrateOutputs creates the ledger and the three derived tables under their
// configured names. Raw inputs are owned upstream and are never created here,
// so a missing input still fails the run as input_unavailable.
func migrateOutputs(theDB *gorm.DB, set repos.Set) error {
	return db.AutoMigrateTables(theDB, map[string]interface{}{
		jobs.PipelineRun{}.TableName():   &jobs.PipelineRun{},
		set.CleanMember.Table():          &domain.CleanMember{},
		set.EnrichedContribution.Table(): &domain.EnrichedContribution{},
		set.MemberSummary.Table():        &domain.MemberSummary{},
	})
}
