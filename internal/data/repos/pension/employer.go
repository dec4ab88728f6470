package pension

import (
	"gorm.io/gorm"

	domain "github.com/yungbote/pension-pipeline/internal/domain/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/dbctx"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

type RawEmployerRepo interface {
	Table() string
	Exists(dbc dbctx.Context) (bool, error)
	ListAll(dbc dbctx.Context) ([]*domain.RawEmployer, error)
	Insert(dbc dbctx.Context, rows []*domain.RawEmployer) error
}

type rawEmployerRepo struct {
	tableStore[domain.RawEmployer]
}

func NewRawEmployerRepo(db *gorm.DB, baseLog *logger.Logger, table string) RawEmployerRepo {
	if table == "" {
		table = domain.RawEmployer{}.TableName()
	}
	return &rawEmployerRepo{
		tableStore: newTableStore[domain.RawEmployer](db, baseLog.With("repo", "RawEmployerRepo"), table, "cvr_number"),
	}
}
