package pension

import (
	"testing"
	"time"

	domain "github.com/yungbote/pension-pipeline/internal/domain/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/pointers"
)

var asOf = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

func rawMember(cpr string, first, last *string, birth *time.Time) *domain.RawMember {
	return &domain.RawMember{MemberProfile: domain.MemberProfile{
		CPRNumber: cpr,
		FirstName: first,
		LastName:  last,
		BirthDate: birth,
	}}
}

func TestValidCPR(t *testing.T) {
	cases := map[string]bool{
		"123456-7890":  true,
		"1234567890":   false,
		"12345678901":  false,
		"123456-789":   false,
		"123456-78901": false,
		"":             false,
	}
	for cpr, want := range cases {
		if got := ValidCPR(cpr); got != want {
			t.Fatalf("ValidCPR(%q) = %v, want %v", cpr, got, want)
		}
	}
}

func TestCleanMembers_ValidityFlag(t *testing.T) {
	raw := []*domain.RawMember{
		rawMember("123456-7890", pointers.String("Anna"), pointers.String("Holm"), nil),
		rawMember("1234567890", pointers.String("Bo"), pointers.String("Berg"), nil),
		rawMember("223456-7890", nil, pointers.String("Dahl"), nil),
		rawMember("323456-7890", pointers.String("Cai"), nil, nil),
	}
	out, _ := CleanMembers(raw, asOf, DefaultThresholds())
	if len(out) != len(raw) {
		t.Fatalf("expected %d rows (no filtering), got %d", len(raw), len(out))
	}
	want := []bool{true, false, false, false}
	for i, m := range out {
		if m.IsValidRecord != want[i] {
			t.Fatalf("row %d (%s): is_valid_record=%v want %v", i, m.CPRNumber, m.IsValidRecord, want[i])
		}
	}
}

func TestCleanMembers_FullName(t *testing.T) {
	raw := []*domain.RawMember{
		rawMember("123456-7890", pointers.String("Anna"), pointers.String("Holm"), nil),
		rawMember("223456-7890", pointers.String(""), pointers.String("Holm"), nil),
		rawMember("323456-7890", nil, pointers.String("Holm"), nil),
		rawMember("423456-7890", pointers.String("Anna"), nil, nil),
	}
	out, _ := CleanMembers(raw, asOf, DefaultThresholds())

	if out[0].FullName == nil || *out[0].FullName != "Anna Holm" {
		t.Fatalf("expected \"Anna Holm\", got %v", out[0].FullName)
	}
	if out[1].FullName == nil || *out[1].FullName != " Holm" {
		t.Fatalf("empty first name still concatenates, got %v", out[1].FullName)
	}
	if out[2].FullName != nil || out[3].FullName != nil {
		t.Fatalf("a null name part must give a null full_name")
	}
}

func TestCleanMembers_AgeUsesOneSnapshot(t *testing.T) {
	raw := []*domain.RawMember{
		rawMember("123456-7890", pointers.String("A"), pointers.String("B"), pointers.Date(1990, time.January, 1)),
		rawMember("223456-7890", pointers.String("A"), pointers.String("B"), pointers.Date(1990, time.December, 31)),
		rawMember("323456-7890", pointers.String("A"), pointers.String("B"), nil),
	}
	out, _ := CleanMembers(raw, asOf, DefaultThresholds())
	for i := 0; i < 2; i++ {
		if out[i].Age == nil || *out[i].Age != 34 {
			t.Fatalf("row %d: expected age 34, got %v", i, out[i].Age)
		}
		if !out[i].UpdatedAt.Equal(asOf) {
			t.Fatalf("row %d: updated_at should be the run's processing time", i)
		}
	}
	if out[2].Age != nil {
		t.Fatalf("missing birth date gives null age")
	}
}

func TestCleanMembers_QualityChecks(t *testing.T) {
	raw := []*domain.RawMember{
		rawMember("123456-7890", pointers.String("A"), pointers.String("B"), pointers.Date(1990, time.January, 1)),
		rawMember("123456-7890", pointers.String("A"), pointers.String("B"), pointers.Date(1990, time.January, 1)),
		rawMember("223456-7890", nil, pointers.String("B"), pointers.Date(2010, time.May, 1)),
		rawMember("323456-7890", pointers.String("A"), pointers.String("B"), pointers.Date(1900, time.May, 1)),
	}
	_, q := CleanMembers(raw, asOf, DefaultThresholds())

	byName := map[string]Check{}
	for _, c := range q.Checks {
		byName[c.Name] = c
	}
	if c := byName["unique_cpr"]; c.Severity != SeverityWarn || c.Count != 1 {
		t.Fatalf("unique_cpr: %+v", c)
	}
	if c := byName["non_null_names"]; c.Severity != SeverityFail || c.Count != 1 {
		t.Fatalf("non_null_names: %+v", c)
	}
	if c := byName["age_range"]; c.Severity != SeverityWarn || c.Count != 2 || c.Message != "Found 2 records with age outside 18-100" {
		t.Fatalf("age_range: %+v", c)
	}
	if q.Metrics[MetricInvalidRecords] != 1 {
		t.Fatalf("invalid_records: %d", q.Metrics[MetricInvalidRecords])
	}
	if len(q.Issues()) != 3 {
		t.Fatalf("expected 3 issues, got %d", len(q.Issues()))
	}
}

func TestCleanMembers_AllPass(t *testing.T) {
	raw := []*domain.RawMember{
		rawMember("123456-7890", pointers.String("A"), pointers.String("B"), pointers.Date(1990, time.January, 1)),
	}
	_, q := CleanMembers(raw, asOf, DefaultThresholds())
	if len(q.Issues()) != 0 {
		t.Fatalf("expected no issues, got %+v", q.Issues())
	}
}
