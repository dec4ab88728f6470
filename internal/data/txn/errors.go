package txn

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/pension-pipeline/internal/domain/stageerr"
)

var (
	// ErrValidation indicates caller input validation failure.
	ErrValidation = errors.New("validation")
	// ErrConflict indicates another writer owns the destination.
	ErrConflict = errors.New("conflict")
	// ErrMissingTable indicates a required table does not exist.
	ErrMissingTable = errors.New("missing table")
)

func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

func MissingTableError(table string) error {
	return errors.Join(ErrMissingTable, errors.New("table "+strings.TrimSpace(table)+" does not exist"))
}

// MapError maps storage failures into stage error codes. Errors that match no
// known class get the fallback code, which callers pick per direction:
// input_unavailable for reads and write_failed for writes.
func MapError(op string, fallback stageerr.Code, err error) error {
	if err == nil {
		return nil
	}
	var se *stageerr.Error
	if errors.As(err, &se) {
		return err
	}
	switch {
	case errors.Is(err, ErrValidation):
		return stageerr.Wrap(stageerr.CodeValidation, op, err)
	case errors.Is(err, ErrConflict):
		return stageerr.Wrap(stageerr.CodeConflict, op, err)
	case errors.Is(err, ErrMissingTable):
		return stageerr.Wrap(stageerr.CodeInputUnavailable, op, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return stageerr.Wrap(stageerr.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return stageerr.Wrap(fallback, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := strings.TrimSpace(pgErr.Code)
		switch {
		case code == "42P01", code == "3F000":
			return stageerr.Wrap(stageerr.CodeInputUnavailable, op, err) // undefined_table / invalid_schema_name
		case code == "23505":
			return stageerr.Wrap(stageerr.CodeConflict, op, err) // unique_violation
		case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "28"):
			return stageerr.Wrap(fallback, op, err) // connection / auth
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "no such table"), strings.Contains(msg, "does not exist"):
		return stageerr.Wrap(stageerr.CodeInputUnavailable, op, err)
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"):
		return stageerr.Wrap(stageerr.CodeConflict, op, err)
	default:
		return stageerr.Wrap(fallback, op, err)
	}
}

// MapWriteError maps a failure to replace a destination table. A missing
// destination is a write failure, not an input problem.
func MapWriteError(op string, err error) error {
	mapped := MapError(op, stageerr.CodeWriteFailed, err)
	if stageerr.IsCode(mapped, stageerr.CodeInputUnavailable) {
		return stageerr.NewError(stageerr.CodeWriteFailed, op, err.Error(), err)
	}
	return mapped
}
