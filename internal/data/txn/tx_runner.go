package txn

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/pension-pipeline/internal/domain/stageerr"
	"github.com/yungbote/pension-pipeline/internal/pkg/dbctx"
)

// Runner provides the transaction boundary for table replacement.
type Runner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormRunner struct {
	db *gorm.DB
}

func NewGormRunner(db *gorm.DB) Runner {
	return &gormRunner{db: db}
}

func (r *gormRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return stageerr.NewError(stageerr.CodeInternal, "txn.in_tx", "transaction runner has nil db", nil)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}
