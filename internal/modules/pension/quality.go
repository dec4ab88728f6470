package pension

// Severity grades a data-quality check. None of them block a write.
type Severity string

const (
	SeverityPass Severity = "pass"
	SeverityWarn Severity = "warn"
	SeverityFail Severity = "fail"
)

// Check is one data-quality assertion over a stage's output.
type Check struct {
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`
	Count    int64    `json:"count"`
	Message  string   `json:"message"`
}

// Quality collects the checks and counters a stage computed alongside its rows.
type Quality struct {
	Stage   string           `json:"stage"`
	Checks  []Check          `json:"checks"`
	Metrics map[string]int64 `json:"metrics"`
}

func newQuality(stage string) Quality {
	return Quality{Stage: stage, Metrics: map[string]int64{}}
}

func (q *Quality) add(c Check) { q.Checks = append(q.Checks, c) }

// Issues returns the checks that did not pass.
func (q Quality) Issues() []Check {
	var out []Check
	for _, c := range q.Checks {
		if c.Severity != SeverityPass {
			out = append(out, c)
		}
	}
	return out
}

// Thresholds bound the range checks.
type Thresholds struct {
	MinAge            int     `yaml:"min_age"`
	MaxAge            int     `yaml:"max_age"`
	MinEmployerAmount float64 `yaml:"min_employer_amount"`
	MaxEmployerAmount float64 `yaml:"max_employer_amount"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{MinAge: 18, MaxAge: 100, MinEmployerAmount: 0, MaxEmployerAmount: 10000}
}

const (
	MetricInvalidRecords        = "invalid_records"
	MetricUnmatchedMembers      = "unmatched_members"
	MetricUnmatchedEmployers    = "unmatched_employers"
	MetricAnomalies             = "anomalies"
	MetricLateContributions     = "late_contributions"
	MetricMalformedPeriods      = "malformed_periods"
	MetricFanOutRows            = "fan_out_rows"
	MetricMembersWithoutHistory = "members_without_contributions"
)
