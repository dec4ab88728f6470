package pension

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/yungbote/pension-pipeline/internal/domain/pension"
	"github.com/yungbote/pension-pipeline/internal/domain/stageerr"
	"github.com/yungbote/pension-pipeline/internal/pkg/pointers"
)

func contribution(id, cpr, cvr, period string, employer, employee float64, paid *time.Time) *domain.RawContribution {
	return &domain.RawContribution{
		ContributionID:     id,
		CPRNumber:          cpr,
		CVRNumber:          cvr,
		ContributionPeriod: period,
		EmployerAmount:     pointers.Float64(employer),
		EmployeeAmount:     pointers.Float64(employee),
		PaymentDate:        paid,
	}
}

func enrichOpts() EnrichOptions {
	return EnrichOptions{AsOf: asOf, Policy: PolicyFail, Thresholds: DefaultThresholds()}
}

func TestDueDate(t *testing.T) {
	assert.Equal(t, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC), DueDate(2024, time.March))
	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), DueDate(2024, time.December))
}

func TestLateness(t *testing.T) {
	due := DueDate(2024, time.January)

	late, days := Lateness(due, pointers.Date(2024, time.February, 10))
	assert.False(t, late)
	assert.Zero(t, days)

	late, days = Lateness(due, pointers.Date(2024, time.February, 11))
	assert.True(t, late)
	assert.Equal(t, 1, days)

	late, days = Lateness(due, pointers.Date(2024, time.January, 20))
	assert.False(t, late)
	assert.Zero(t, days)

	late, days = Lateness(due, nil)
	assert.False(t, late)
	assert.Zero(t, days)

	evening := time.Date(2024, 2, 10, 23, 59, 0, 0, time.UTC)
	late, _ = Lateness(due, &evening)
	assert.False(t, late, "any time on the due date is on time")
}

func TestParsePeriod(t *testing.T) {
	y, m, err := ParsePeriod("2024-03")
	require.NoError(t, err)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.March, m)

	for _, bad := range []string{"2024-13", "2024-1", "24-01", "2024/01", "", "2024-01-01"} {
		_, _, err := ParsePeriod(bad)
		require.Error(t, err, bad)
		assert.True(t, stageerr.IsCode(err, stageerr.CodeMalformedPeriod), bad)
	}
}

func TestAnomalyBoundaries(t *testing.T) {
	cases := []struct {
		total float64
		want  bool
	}{
		{100, false},
		{99.99, true},
		{500, false},
		{500.01, true},
		{270, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsAnomaly(pointers.Float64(tc.total)), "total %v", tc.total)
	}
	assert.False(t, IsAnomaly(nil))
}

func TestAmountVariance(t *testing.T) {
	for _, total := range []float64{0, 99.99, 270, 270.5, 1000} {
		v := Variance(pointers.Float64(total))
		require.NotNil(t, v)
		assert.Equal(t, total-270, *v)
	}
	assert.Nil(t, Variance(nil))
}

func TestEnrichContributions_Join(t *testing.T) {
	members, _ := CleanMembers([]*domain.RawMember{
		rawMember("010190-1234", pointers.String("Anna"), pointers.String("Holm"), pointers.Date(1990, time.January, 1)),
	}, asOf, DefaultThresholds())
	employers := []*domain.RawEmployer{
		{CVRNumber: "11111111", CompanyName: pointers.String("Acme ApS"), IndustryName: pointers.String("Retail"), SizeCategory: pointers.String("small")},
	}
	contribs := []*domain.RawContribution{
		contribution("c1", "010190-1234", "11111111", "2024-01", 170, 100, pointers.Date(2024, time.February, 11)),
		contribution("c2", "999999-9999", "22222222", "2024-02", 600, 0, nil),
	}

	out, q, err := EnrichContributions(contribs, members, employers, enrichOpts())
	require.NoError(t, err)
	require.Len(t, out, 2, "left joins never drop rows")

	matched := out[0]
	assert.Equal(t, "Anna Holm", *matched.MemberName)
	assert.Equal(t, 34, *matched.MemberAge)
	assert.Equal(t, "Acme ApS", *matched.EmployerName)
	assert.Equal(t, 2024, *matched.ContributionYear)
	assert.Equal(t, 1, *matched.ContributionMonth)
	assert.Equal(t, 270.0, *matched.TotalAmount)
	assert.True(t, matched.IsLate)
	assert.Equal(t, 1, matched.DaysLate)
	assert.False(t, matched.IsAnomaly)
	assert.Equal(t, 270.0, matched.ExpectedAmount)
	assert.Equal(t, 0.0, *matched.AmountVariance)
	assert.True(t, matched.UpdatedAt.Equal(asOf))

	orphan := out[1]
	assert.Nil(t, orphan.MemberName)
	assert.Nil(t, orphan.MemberAge)
	assert.Nil(t, orphan.EmployerName)
	assert.Nil(t, orphan.EmployerIndustry)
	assert.Nil(t, orphan.EmployerSize)
	assert.True(t, orphan.IsAnomaly)
	assert.False(t, orphan.IsLate)

	assert.EqualValues(t, 1, q.Metrics[MetricUnmatchedMembers])
	assert.EqualValues(t, 1, q.Metrics[MetricUnmatchedEmployers])
	assert.EqualValues(t, 1, q.Metrics[MetricAnomalies])
	assert.EqualValues(t, 1, q.Metrics[MetricLateContributions])
}

func TestEnrichContributions_NullAmounts(t *testing.T) {
	c := contribution("c1", "010190-1234", "", "2024-01", 0, 0, nil)
	c.EmployeeAmount = nil

	out, _, err := EnrichContributions([]*domain.RawContribution{c}, nil, nil, enrichOpts())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].TotalAmount)
	assert.Nil(t, out[0].AmountVariance)
	assert.False(t, out[0].IsAnomaly)
}

func TestEnrichContributions_DuplicateMemberFansOut(t *testing.T) {
	members, _ := CleanMembers([]*domain.RawMember{
		rawMember("010190-1234", pointers.String("Anna"), pointers.String("Holm"), nil),
		rawMember("010190-1234", pointers.String("Anna"), pointers.String("Holm-Berg"), nil),
	}, asOf, DefaultThresholds())
	contribs := []*domain.RawContribution{
		contribution("c1", "010190-1234", "", "2024-01", 170, 100, nil),
	}

	out, q, err := EnrichContributions(contribs, members, nil, enrichOpts())
	require.NoError(t, err)
	require.Len(t, out, 2, "one contribution joined to two member rows yields two enriched rows")
	assert.Equal(t, "Anna Holm", *out[0].MemberName)
	assert.Equal(t, "Anna Holm-Berg", *out[1].MemberName)
	assert.Equal(t, "c1", out[1].ContributionID)
	assert.EqualValues(t, 1, q.Metrics[MetricFanOutRows])
}

func TestEnrichContributions_MalformedPeriod(t *testing.T) {
	contribs := []*domain.RawContribution{
		contribution("c1", "010190-1234", "", "2024-01", 170, 100, nil),
		contribution("c2", "010190-1234", "", "2024-13", 170, 100, pointers.Date(2025, time.March, 1)),
	}

	_, _, err := EnrichContributions(contribs, nil, nil, enrichOpts())
	require.Error(t, err)
	assert.True(t, stageerr.IsCode(err, stageerr.CodeMalformedPeriod))
	assert.Contains(t, err.Error(), "c2")

	opts := enrichOpts()
	opts.Policy = PolicyNull
	out, q, err := EnrichContributions(contribs, nil, nil, opts)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Nil(t, out[1].ContributionYear)
	assert.Nil(t, out[1].ContributionMonth)
	assert.False(t, out[1].IsLate)
	assert.Zero(t, out[1].DaysLate)
	assert.Equal(t, 270.0, *out[1].TotalAmount)
	assert.EqualValues(t, 1, q.Metrics[MetricMalformedPeriods])
}

func TestEnrichContributions_EmployerAmountCheck(t *testing.T) {
	contribs := []*domain.RawContribution{
		contribution("c1", "a", "", "2024-01", -5, 100, nil),
		contribution("c2", "a", "", "2024-01", 10000, 100, nil),
		contribution("c3", "a", "", "2024-01", 10000.01, 100, nil),
	}
	_, q, err := EnrichContributions(contribs, nil, nil, enrichOpts())
	require.NoError(t, err)
	require.NotEmpty(t, q.Checks)
	c := q.Checks[0]
	assert.Equal(t, "employer_amount_range", c.Name)
	assert.Equal(t, SeverityWarn, c.Severity)
	assert.EqualValues(t, 2, c.Count)
	assert.Equal(t, "Found 2 contributions with amounts outside 0-10,000 DKK", c.Message)
}

func TestParseMalformedPeriodPolicy(t *testing.T) {
	p, ok := ParseMalformedPeriodPolicy("")
	assert.True(t, ok)
	assert.Equal(t, PolicyFail, p)
	p, ok = ParseMalformedPeriodPolicy("null")
	assert.True(t, ok)
	assert.Equal(t, PolicyNull, p)
	_, ok = ParseMalformedPeriodPolicy("skip")
	assert.False(t, ok)
}
