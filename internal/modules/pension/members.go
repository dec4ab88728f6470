package pension

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	domain "github.com/yungbote/pension-pipeline/internal/domain/pension"
)

const (
	StageMembersClean = "members_clean"

	cprLength    = 11
	cprSeparator = "-"
)

// ValidCPR reports whether cpr has the XXXXXX-XXXX shape the pipeline accepts:
// eleven characters including a hyphen.
func ValidCPR(cpr string) bool {
	return utf8.RuneCountInString(cpr) == cprLength && strings.Contains(cpr, cprSeparator)
}

// FullName concatenates first and last name with one space; nil if either is nil.
func FullName(first, last *string) *string {
	if first == nil || last == nil {
		return nil
	}
	s := *first + " " + *last
	return &s
}

// AgeAt counts calendar-year boundaries between birth and asOf, so a member
// born in December is a year older from the first of January.
func AgeAt(birth *time.Time, asOf time.Time) *int {
	if birth == nil {
		return nil
	}
	age := asOf.Year() - birth.Year()
	return &age
}

// CleanMembers derives one CleanMember per raw row. Invalid rows are flagged,
// never dropped, and duplicates are kept.
func CleanMembers(raw []*domain.RawMember, asOf time.Time, th Thresholds) ([]*domain.CleanMember, Quality) {
	out := make([]*domain.CleanMember, 0, len(raw))
	q := newQuality(StageMembersClean)

	seen := make(map[string]struct{}, len(raw))
	var duplicates, nullNames, outOfRange, invalid int64

	for _, r := range raw {
		if r == nil {
			continue
		}
		cm := &domain.CleanMember{
			MemberProfile: r.MemberProfile,
			FullName:      FullName(r.FirstName, r.LastName),
			Age:           AgeAt(r.BirthDate, asOf),
			UpdatedAt:     asOf,
		}
		cm.IsValidRecord = ValidCPR(r.CPRNumber) && r.FirstName != nil && r.LastName != nil
		out = append(out, cm)

		if _, ok := seen[r.CPRNumber]; ok {
			duplicates++
		}
		seen[r.CPRNumber] = struct{}{}
		if r.FirstName == nil || r.LastName == nil {
			nullNames++
		}
		if cm.Age != nil && (*cm.Age < th.MinAge || *cm.Age > th.MaxAge) {
			outOfRange++
		}
		if !cm.IsValidRecord {
			invalid++
		}
	}

	if duplicates > 0 {
		q.add(Check{Name: "unique_cpr", Severity: SeverityWarn, Count: duplicates,
			Message: fmt.Sprintf("Found %d duplicate CPR numbers", duplicates)})
	} else {
		q.add(Check{Name: "unique_cpr", Severity: SeverityPass, Message: "CPR numbers are unique"})
	}
	if nullNames > 0 {
		q.add(Check{Name: "non_null_names", Severity: SeverityFail, Count: nullNames,
			Message: fmt.Sprintf("Found %d records with null names", nullNames)})
	} else {
		q.add(Check{Name: "non_null_names", Severity: SeverityPass, Message: "No null names"})
	}
	if outOfRange > 0 {
		q.add(Check{Name: "age_range", Severity: SeverityWarn, Count: outOfRange,
			Message: fmt.Sprintf("Found %d records with age outside %d-%d", outOfRange, th.MinAge, th.MaxAge)})
	} else {
		q.add(Check{Name: "age_range", Severity: SeverityPass, Message: "All ages within valid range"})
	}
	q.Metrics[MetricInvalidRecords] = invalid

	return out, q
}
