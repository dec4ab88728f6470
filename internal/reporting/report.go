package reporting

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	domain "github.com/yungbote/pension-pipeline/internal/domain/pension"
	"github.com/yungbote/pension-pipeline/internal/jobs/worker"
	"github.com/yungbote/pension-pipeline/internal/modules/pension"
)

var rule = strings.Repeat("=", 80)

// Writer renders run outcomes for operators. Numbers use English grouping.
type Writer struct {
	w io.Writer
	p *message.Printer
}

func New(w io.Writer) *Writer {
	return &Writer{w: w, p: message.NewPrinter(language.English)}
}

// Run renders every executed stage followed by the run verdict. stats is
// printed after the summary stage when non-empty.
func (r *Writer) Run(rep *worker.Report, stats []domain.RiskCategoryStats) {
	if rep == nil {
		return
	}
	for _, s := range rep.Stages {
		r.Stage(s)
		if s.Err == nil && s.Stage == pension.StageMemberSummary && len(stats) > 0 {
			r.RiskStats(stats)
		}
		r.Verdict(s)
	}
	if rep.Err != nil && len(rep.Stages) == 0 {
		r.p.Fprintf(r.w, "\n❌ ERROR: %v\n\n", rep.Err)
	}
}

func (r *Writer) Stage(s worker.StageResult) {
	table := s.Table
	if table == "" {
		table = s.Stage
	}
	fmt.Fprintln(r.w, rule)
	fmt.Fprintf(r.w, "Creating %s\n", table)
	fmt.Fprintln(r.w, rule)
	if s.Err != nil {
		return
	}
	r.p.Fprintf(r.w, "\n✓ Created %s with %d rows\n", table, s.Rows)
	if s.Quality != nil {
		r.Quality(*s.Quality)
	}
}

// Quality prints one line per check.
func (r *Writer) Quality(q pension.Quality) {
	if len(q.Checks) == 0 {
		return
	}
	fmt.Fprintln(r.w, "\nRunning data quality tests...")
	for _, c := range q.Checks {
		fmt.Fprintf(r.w, "%s %s\n", marker(c.Severity), c.Message)
	}
}

func marker(s pension.Severity) string {
	switch s {
	case pension.SeverityWarn:
		return "⚠ WARNING:"
	case pension.SeverityFail:
		return "✗ FAIL:"
	default:
		return "✓ PASS:"
	}
}

func (r *Writer) RiskStats(stats []domain.RiskCategoryStats) {
	fmt.Fprintln(r.w, "\nSummary Statistics:")
	fmt.Fprintf(r.w, "%-20s %10s %15s %12s\n", "Risk Category", "Members", "Avg Total", "Avg Late %")
	fmt.Fprintln(r.w, strings.Repeat("-", 60))
	for _, s := range stats {
		r.p.Fprintf(r.w, "%-20s %10d %15.2f %12.2f%%\n",
			string(s.Category), s.MemberCount, s.AvgTotalContribution, s.AvgLatePaymentRate)
	}
}

// Verdict prints the SUCCESS or ERROR line for a stage.
func (r *Writer) Verdict(s worker.StageResult) {
	table := s.Table
	if table == "" {
		table = s.Stage
	}
	fmt.Fprintln(r.w, "\n"+rule)
	if s.Err != nil {
		fmt.Fprintf(r.w, "\n❌ ERROR: %v\n\n", s.Err)
		return
	}
	r.p.Fprintf(r.w, "\n✅ SUCCESS: %s created with %d rows\n\n", table, s.Rows)
}
