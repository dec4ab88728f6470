package pension

import (
	"gorm.io/gorm"

	domain "github.com/yungbote/pension-pipeline/internal/domain/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/dbctx"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

type RawMemberRepo interface {
	Table() string
	Exists(dbc dbctx.Context) (bool, error)
	ListAll(dbc dbctx.Context) ([]*domain.RawMember, error)
	Insert(dbc dbctx.Context, rows []*domain.RawMember) error
}

type rawMemberRepo struct {
	tableStore[domain.RawMember]
}

func NewRawMemberRepo(db *gorm.DB, baseLog *logger.Logger, table string) RawMemberRepo {
	if table == "" {
		table = domain.RawMember{}.TableName()
	}
	return &rawMemberRepo{
		tableStore: newTableStore[domain.RawMember](db, baseLog.With("repo", "RawMemberRepo"), table, "cpr_number"),
	}
}

type CleanMemberRepo interface {
	Table() string
	Exists(dbc dbctx.Context) (bool, error)
	Count(dbc dbctx.Context) (int64, error)
	ListAll(dbc dbctx.Context) ([]*domain.CleanMember, error)
	ReplaceAll(dbc dbctx.Context, rows []*domain.CleanMember) (int64, error)
}

type cleanMemberRepo struct {
	tableStore[domain.CleanMember]
}

func NewCleanMemberRepo(db *gorm.DB, baseLog *logger.Logger, table string) CleanMemberRepo {
	if table == "" {
		table = domain.CleanMember{}.TableName()
	}
	return &cleanMemberRepo{
		tableStore: newTableStore[domain.CleanMember](db, baseLog.With("repo", "CleanMemberRepo"), table, "cpr_number"),
	}
}
