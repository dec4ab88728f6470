package pension

import (
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/yungbote/pension-pipeline/internal/data/txn"
	"github.com/yungbote/pension-pipeline/internal/pkg/dbctx"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

const defaultBatchSize = 500

// tableStore carries the read/overwrite mechanics shared by every pension
// table. The table name is configurable so deployments can point the
// pipeline at schema-qualified tables.
type tableStore[T any] struct {
	db        *gorm.DB
	log       *logger.Logger
	table     string
	orderBy   string
	batchSize int
}

func newTableStore[T any](db *gorm.DB, log *logger.Logger, table, orderBy string) tableStore[T] {
	return tableStore[T]{
		db:        db,
		log:       log.With("table", table),
		table:     table,
		orderBy:   orderBy,
		batchSize: defaultBatchSize,
	}
}

func (s *tableStore[T]) conn(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	return transaction.WithContext(dbc.Context()).Table(s.table)
}

func (s *tableStore[T]) Table() string { return s.table }

func (s *tableStore[T]) Exists(dbc dbctx.Context) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	return transaction.WithContext(dbc.Context()).Migrator().HasTable(s.table), nil
}

// ListAll reads the whole table. A missing table is reported as ErrMissingTable.
func (s *tableStore[T]) ListAll(dbc dbctx.Context) ([]*T, error) {
	ok, err := s.Exists(dbc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, txn.MissingTableError(s.table)
	}
	var out []*T
	q := s.conn(dbc)
	if s.orderBy != "" {
		q = q.Order(s.orderBy)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *tableStore[T]) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := s.conn(dbc).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (s *tableStore[T]) Insert(dbc dbctx.Context, rows []*T) error {
	if len(rows) == 0 {
		return nil
	}
	return s.conn(dbc).CreateInBatches(rows, s.batchSize).Error
}

// ReplaceAll deletes every row and inserts rows. Callers run it inside a
// transaction so readers never observe the table half-written.
func (s *tableStore[T]) ReplaceAll(dbc dbctx.Context, rows []*T) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}
	if err := transaction.WithContext(dbc.Context()).Exec("DELETE FROM " + quoteTable(s.table)).Error; err != nil {
		return 0, err
	}
	if err := s.Insert(dbc, rows); err != nil {
		return 0, err
	}
	s.log.Debug("Table replaced", "rows", len(rows))
	return int64(len(rows)), nil
}

// quoteTable quotes each dot-separated part of a possibly schema-qualified name.
func quoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}
