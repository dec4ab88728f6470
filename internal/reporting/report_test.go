package reporting

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	domain "github.com/yungbote/pension-pipeline/internal/domain/pension"
	"github.com/yungbote/pension-pipeline/internal/domain/stageerr"
	"github.com/yungbote/pension-pipeline/internal/jobs/worker"
	"github.com/yungbote/pension-pipeline/internal/modules/pension"
)

func TestRun_SuccessReport(t *testing.T) {
	var buf bytes.Buffer
	q := pension.Quality{
		Stage: pension.StageMembersClean,
		Checks: []pension.Check{
			{Name: "unique_cpr", Severity: pension.SeverityWarn, Count: 3, Message: "Found 3 duplicate CPR numbers"},
			{Name: "non_null_names", Severity: pension.SeverityFail, Count: 1, Message: "Found 1 records with null names"},
			{Name: "age_range", Severity: pension.SeverityPass, Message: "All ages within valid range"},
		},
	}
	rep := &worker.Report{Stages: []worker.StageResult{
		{Stage: pension.StageMembersClean, Table: "members_clean", Rows: 12345, Quality: &q},
		{Stage: pension.StageMemberSummary, Table: "member_contribution_summary", Rows: 2},
	}}
	New(&buf).Run(rep, []domain.RiskCategoryStats{
		{Category: domain.RiskHigh, MemberCount: 1, AvgTotalContribution: 1540.5, AvgLatePaymentRate: 50},
	})
	out := buf.String()

	for _, want := range []string{
		"✓ Created members_clean with 12,345 rows",
		"⚠ WARNING: Found 3 duplicate CPR numbers",
		"✗ FAIL: Found 1 records with null names",
		"✓ PASS: All ages within valid range",
		"✅ SUCCESS: members_clean created with 12,345 rows",
		"Risk Category           Members       Avg Total   Avg Late %",
		"High Risk                     1        1,540.50        50.00%",
		"✅ SUCCESS: member_contribution_summary created with 2 rows",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q\n%s", want, out)
		}
	}
}

func TestRun_ErrorReport(t *testing.T) {
	var buf bytes.Buffer
	err := stageerr.NewError(stageerr.CodeInputUnavailable, "read raw_members", "table raw_members does not exist", errors.New("missing"))
	rep := &worker.Report{
		Stages: []worker.StageResult{{Stage: pension.StageMembersClean, Table: "members_clean", Err: err}},
		Err:    err,
	}
	New(&buf).Run(rep, nil)
	out := buf.String()

	if !strings.Contains(out, "❌ ERROR: read raw_members: table raw_members does not exist (input_unavailable)") {
		t.Fatalf("missing error line:\n%s", out)
	}
	if strings.Contains(out, "SUCCESS") || strings.Contains(out, "Created") {
		t.Fatalf("failed stage must not report success:\n%s", out)
	}
}
