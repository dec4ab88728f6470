package pension

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	domain "github.com/yungbote/pension-pipeline/internal/domain/pension"
)

const (
	StageMemberSummary = "member_summary"

	lowRiskBelow    = 5.0
	mediumRiskBelow = 20.0
)

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// rawLateRate is late*100/denom with denom clamped to 1 for members without
// contributions.
func rawLateRate(late, total int64) float64 {
	denom := total
	if denom == 0 {
		denom = 1
	}
	return float64(late) * 100.0 / float64(denom)
}

// LatePaymentRate is the stored rate: the raw percentage rounded to two decimals.
func LatePaymentRate(late, total int64) float64 {
	return Round2(rawLateRate(late, total))
}

// RiskCategoryFor tiers a late-payment percentage.
func RiskCategoryFor(rate float64) domain.RiskCategory {
	switch {
	case rate < lowRiskBelow:
		return domain.RiskLow
	case rate < mediumRiskBelow:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}

type summaryGroup struct {
	row   *domain.MemberSummary
	sum   float64
	sumOK bool
}

// Summarize groups members left-joined to their enriched contributions by
// (cpr, full name, age, city, civil status). Members without contributions
// get zero counts and a nil total.
func Summarize(members []*domain.CleanMember, enriched []*domain.EnrichedContribution, asOf time.Time) ([]*domain.MemberSummary, Quality) {
	q := newQuality(StageMemberSummary)

	byCPR := make(map[string][]*domain.EnrichedContribution, len(enriched))
	for _, e := range enriched {
		if e != nil {
			byCPR[e.CPRNumber] = append(byCPR[e.CPRNumber], e)
		}
	}

	groups := map[string]*summaryGroup{}
	var order []string
	for _, m := range members {
		if m == nil {
			continue
		}
		key := groupKey(m)
		g, ok := groups[key]
		if !ok {
			g = &summaryGroup{row: &domain.MemberSummary{
				CPRNumber:   m.CPRNumber,
				FullName:    m.FullName,
				Age:         m.Age,
				City:        m.City,
				CivilStatus: m.CivilStatus,
				UpdatedAt:   asOf,
			}}
			groups[key] = g
			order = append(order, key)
		}
		for _, e := range byCPR[m.CPRNumber] {
			g.add(e)
		}
	}

	out := make([]*domain.MemberSummary, 0, len(order))
	var withoutHistory int64
	for _, key := range order {
		g := groups[key]
		r := g.row
		if g.sumOK {
			s := g.sum
			r.TotalContributedAmount = &s
		}
		raw := rawLateRate(r.LateContributionsCount, r.TotalContributions)
		r.LatePaymentRate = Round2(raw)
		r.PaymentRiskCategory = RiskCategoryFor(raw)
		if r.TotalContributions == 0 {
			withoutHistory++
		}
		out = append(out, r)
	}
	q.Metrics[MetricMembersWithoutHistory] = withoutHistory
	return out, q
}

func (g *summaryGroup) add(e *domain.EnrichedContribution) {
	r := g.row
	r.TotalContributions++
	if e.IsLate {
		r.LateContributionsCount++
	}
	if e.TotalAmount != nil {
		g.sum += *e.TotalAmount
		g.sumOK = true
	}
	p := e.ContributionPeriod
	if r.FirstContributionPeriod == nil || p < *r.FirstContributionPeriod {
		r.FirstContributionPeriod = &p
	}
	if r.LastContributionPeriod == nil || p > *r.LastContributionPeriod {
		r.LastContributionPeriod = &p
	}
}

func groupKey(m *domain.CleanMember) string {
	var b strings.Builder
	b.WriteString(m.CPRNumber)
	for _, s := range []*string{m.FullName, m.City, m.CivilStatus} {
		b.WriteByte(0)
		if s == nil {
			b.WriteByte(1)
		} else {
			b.WriteString(*s)
		}
	}
	b.WriteByte(0)
	if m.Age == nil {
		b.WriteByte(1)
	} else {
		b.WriteString(strconv.Itoa(*m.Age))
	}
	return b.String()
}

// RiskStats rolls summaries up per category, sorted by category name.
// Averages divide by the member count, so members with a nil total pull the
// average down the same way they would in SQL's SUM/COUNT(*).
func RiskStats(rows []*domain.MemberSummary) []domain.RiskCategoryStats {
	type acc struct {
		n            int64
		total, rate  float64
		totalPresent bool
	}
	accs := map[domain.RiskCategory]*acc{}
	for _, r := range rows {
		if r == nil {
			continue
		}
		a, ok := accs[r.PaymentRiskCategory]
		if !ok {
			a = &acc{}
			accs[r.PaymentRiskCategory] = a
		}
		a.n++
		a.rate += r.LatePaymentRate
		if r.TotalContributedAmount != nil {
			a.total += *r.TotalContributedAmount
			a.totalPresent = true
		}
	}
	out := make([]domain.RiskCategoryStats, 0, len(accs))
	for cat, a := range accs {
		var total *float64
		if a.totalPresent {
			total = &a.total
		}
		rate := a.rate
		out = append(out, AverageStats(cat, a.n, total, &rate))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// AverageStats turns category sums into averages rounded to two decimals.
// A nil sum averages to zero.
func AverageStats(cat domain.RiskCategory, count int64, sumTotal, sumRate *float64) domain.RiskCategoryStats {
	s := domain.RiskCategoryStats{Category: cat, MemberCount: count}
	if count == 0 {
		return s
	}
	if sumTotal != nil {
		s.AvgTotalContribution = Round2(*sumTotal / float64(count))
	}
	if sumRate != nil {
		s.AvgLatePaymentRate = Round2(*sumRate / float64(count))
	}
	return s
}
