package dbctx

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/pension-pipeline/internal/pkg/ctxutil"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// WithTx returns a copy of c bound to tx.
func (c Context) WithTx(tx *gorm.DB) Context {
	c.Tx = tx
	return c
}

// Context returns Ctx, falling back to context.Background.
func (c Context) Context() context.Context {
	return ctxutil.Default(c.Ctx)
}
