package pension

import (
	"strconv"
	"time"

	"github.com/yungbote/pension-pipeline/internal/domain/stageerr"
)

const (
	periodLayout = "2006-01"
	dueDay       = 10
)

// MalformedPeriodPolicy decides what a period that is not YYYY-MM does to a run.
type MalformedPeriodPolicy string

const (
	// PolicyFail aborts the stage before anything is written.
	PolicyFail MalformedPeriodPolicy = "fail"
	// PolicyNull keeps the row with null year/month and no lateness.
	PolicyNull MalformedPeriodPolicy = "null"
)

func ParseMalformedPeriodPolicy(s string) (MalformedPeriodPolicy, bool) {
	switch MalformedPeriodPolicy(s) {
	case PolicyFail, "":
		return PolicyFail, true
	case PolicyNull:
		return PolicyNull, true
	}
	return "", false
}

// ParsePeriod parses a YYYY-MM contribution period.
func ParsePeriod(period string) (year int, month time.Month, err error) {
	t, perr := time.Parse(periodLayout, period)
	if perr != nil {
		return 0, 0, stageerr.NewError(stageerr.CodeMalformedPeriod, "pension.parse_period",
			"period "+strconv.Quote(period)+" is not YYYY-MM", perr)
	}
	return t.Year(), t.Month(), nil
}

// DueDate is the 10th of the month after the period.
func DueDate(year int, month time.Month) time.Time {
	return time.Date(year, month+1, dueDay, 0, 0, 0, 0, time.UTC)
}

// Lateness compares the payment day with the due date. Paying on the due date
// is on time; a missing payment date is never late.
func Lateness(due time.Time, paid *time.Time) (late bool, days int) {
	if paid == nil {
		return false, 0
	}
	p := paid.UTC()
	payDay := time.Date(p.Year(), p.Month(), p.Day(), 0, 0, 0, 0, time.UTC)
	if !payDay.After(due) {
		return false, 0
	}
	return true, int(payDay.Sub(due).Hours() / 24)
}
