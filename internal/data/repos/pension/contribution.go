package pension

import (
	"gorm.io/gorm"

	domain "github.com/yungbote/pension-pipeline/internal/domain/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/dbctx"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

type RawContributionRepo interface {
	Table() string
	Exists(dbc dbctx.Context) (bool, error)
	ListAll(dbc dbctx.Context) ([]*domain.RawContribution, error)
	Insert(dbc dbctx.Context, rows []*domain.RawContribution) error
}

type rawContributionRepo struct {
	tableStore[domain.RawContribution]
}

func NewRawContributionRepo(db *gorm.DB, baseLog *logger.Logger, table string) RawContributionRepo {
	if table == "" {
		table = domain.RawContribution{}.TableName()
	}
	return &rawContributionRepo{
		tableStore: newTableStore[domain.RawContribution](db, baseLog.With("repo", "RawContributionRepo"), table, "contribution_id"),
	}
}

type EnrichedContributionRepo interface {
	Table() string
	Exists(dbc dbctx.Context) (bool, error)
	Count(dbc dbctx.Context) (int64, error)
	ListAll(dbc dbctx.Context) ([]*domain.EnrichedContribution, error)
	ReplaceAll(dbc dbctx.Context, rows []*domain.EnrichedContribution) (int64, error)
}

type enrichedContributionRepo struct {
	tableStore[domain.EnrichedContribution]
}

func NewEnrichedContributionRepo(db *gorm.DB, baseLog *logger.Logger, table string) EnrichedContributionRepo {
	if table == "" {
		table = domain.EnrichedContribution{}.TableName()
	}
	return &enrichedContributionRepo{
		tableStore: newTableStore[domain.EnrichedContribution](db, baseLog.With("repo", "EnrichedContributionRepo"), table, "contribution_id, cpr_number"),
	}
}
