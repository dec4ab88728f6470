package pension

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	domain "github.com/yungbote/pension-pipeline/internal/domain/pension"
	"github.com/yungbote/pension-pipeline/internal/domain/stageerr"
)

const (
	StageContributionsEnriched = "contributions_enriched"

	anomalyLow  = 100.0
	anomalyHigh = 500.0
)

type EnrichOptions struct {
	AsOf       time.Time
	Policy     MalformedPeriodPolicy
	Thresholds Thresholds
}

// TotalAmount adds both shares; nil if either share is nil.
func TotalAmount(employer, employee *float64) *float64 {
	if employer == nil || employee == nil {
		return nil
	}
	t := *employer + *employee
	return &t
}

// IsAnomaly flags totals outside [100, 500]. The bounds themselves are normal
// and a nil total is not an anomaly.
func IsAnomaly(total *float64) bool {
	if total == nil {
		return false
	}
	return *total > anomalyHigh || *total < anomalyLow
}

// Variance is the signed distance from the expected monthly amount.
func Variance(total *float64) *float64 {
	if total == nil {
		return nil
	}
	v := *total - domain.ExpectedContributionAmount
	return &v
}

// EnrichContributions left-joins every contribution to its clean member(s) and
// employer(s). Rows are never dropped; a CPR or CVR that occurs more than once
// on the right side multiplies the contribution, as a relational join would.
func EnrichContributions(
	contribs []*domain.RawContribution,
	members []*domain.CleanMember,
	employers []*domain.RawEmployer,
	opts EnrichOptions,
) ([]*domain.EnrichedContribution, Quality, error) {
	q := newQuality(StageContributionsEnriched)
	policy := opts.Policy
	if policy == "" {
		policy = PolicyFail
	}

	membersByCPR := make(map[string][]*domain.CleanMember, len(members))
	for _, m := range members {
		if m != nil {
			membersByCPR[m.CPRNumber] = append(membersByCPR[m.CPRNumber], m)
		}
	}
	employersByCVR := make(map[string][]*domain.RawEmployer, len(employers))
	for _, e := range employers {
		if e != nil {
			employersByCVR[e.CVRNumber] = append(employersByCVR[e.CVRNumber], e)
		}
	}

	out := make([]*domain.EnrichedContribution, 0, len(contribs))
	var unmatchedMembers, unmatchedEmployers, anomalies, late, malformed, badAmounts, fanOut int64

	for _, c := range contribs {
		if c == nil {
			continue
		}
		base, err := enrichOne(c, opts.AsOf, policy)
		if err != nil {
			return nil, q, stageerr.Wrap(stageerr.CodeMalformedPeriod, "contributions_enriched.enrich",
				fmt.Errorf("contribution %s: %w", c.ContributionID, err))
		}
		if base.ContributionYear == nil {
			malformed++
		}

		ms := membersByCPR[c.CPRNumber]
		if len(ms) == 0 {
			unmatchedMembers++
			ms = []*domain.CleanMember{nil}
		}
		es := employersByCVR[c.CVRNumber]
		if len(es) == 0 {
			unmatchedEmployers++
			es = []*domain.RawEmployer{nil}
		}
		fanOut += int64(len(ms)*len(es) - 1)

		for _, m := range ms {
			for _, e := range es {
				row := *base
				if m != nil {
					row.MemberName = m.FullName
					row.MemberAge = m.Age
				}
				if e != nil {
					row.EmployerName = e.CompanyName
					row.EmployerIndustry = e.IndustryName
					row.EmployerSize = e.SizeCategory
				}
				out = append(out, &row)

				if row.IsAnomaly {
					anomalies++
				}
				if row.IsLate {
					late++
				}
				if a := row.EmployerAmount; a != nil && (*a < opts.Thresholds.MinEmployerAmount || *a > opts.Thresholds.MaxEmployerAmount) {
					badAmounts++
				}
			}
		}
	}

	if badAmounts > 0 {
		q.add(Check{Name: "employer_amount_range", Severity: SeverityWarn, Count: badAmounts,
			Message: fmt.Sprintf("Found %d contributions with amounts outside %s-%s DKK", badAmounts,
				amountLabel(opts.Thresholds.MinEmployerAmount), amountLabel(opts.Thresholds.MaxEmployerAmount))})
	} else {
		q.add(Check{Name: "employer_amount_range", Severity: SeverityPass, Message: "All amounts within valid range"})
	}
	if malformed > 0 {
		q.add(Check{Name: "contribution_period_format", Severity: SeverityWarn, Count: malformed,
			Message: fmt.Sprintf("Found %d contributions with malformed periods", malformed)})
	}
	q.Metrics[MetricUnmatchedMembers] = unmatchedMembers
	q.Metrics[MetricUnmatchedEmployers] = unmatchedEmployers
	q.Metrics[MetricAnomalies] = anomalies
	q.Metrics[MetricLateContributions] = late
	q.Metrics[MetricMalformedPeriods] = malformed
	q.Metrics[MetricFanOutRows] = fanOut

	return out, q, nil
}

// enrichOne computes the row-local fields; join fields are filled by the caller.
func enrichOne(c *domain.RawContribution, asOf time.Time, policy MalformedPeriodPolicy) (*domain.EnrichedContribution, error) {
	total := TotalAmount(c.EmployerAmount, c.EmployeeAmount)
	row := &domain.EnrichedContribution{
		ContributionID:     c.ContributionID,
		CPRNumber:          c.CPRNumber,
		CVRNumber:          c.CVRNumber,
		ContributionPeriod: c.ContributionPeriod,
		EmployerAmount:     c.EmployerAmount,
		EmployeeAmount:     c.EmployeeAmount,
		TotalAmount:        total,
		PaymentDate:        c.PaymentDate,
		IsAnomaly:          IsAnomaly(total),
		ExpectedAmount:     domain.ExpectedContributionAmount,
		AmountVariance:     Variance(total),
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          asOf,
	}

	year, month, err := ParsePeriod(c.ContributionPeriod)
	if err != nil {
		if policy == PolicyFail {
			return nil, err
		}
		return row, nil
	}
	y, mo := year, int(month)
	row.ContributionYear = &y
	row.ContributionMonth = &mo
	row.IsLate, row.DaysLate = Lateness(DueDate(year, month), c.PaymentDate)
	return row, nil
}

func amountLabel(v float64) string {
	p := message.NewPrinter(language.English)
	if v == float64(int64(v)) {
		return p.Sprintf("%d", int64(v))
	}
	return p.Sprintf("%.2f", v)
}
