package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/pension-pipeline/internal/domain/pension"
)

// Day is midnight UTC of the given ISO date; it panics on bad input.
func Day(iso string) time.Time {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Member builds a raw member; empty names are stored as NULL.
func Member(cpr, first, last, birthISO string) *pension.RawMember {
	m := &pension.RawMember{}
	m.CPRNumber = cpr
	m.FirstName = strOrNil(first)
	m.LastName = strOrNil(last)
	m.City = strOrNil("København")
	m.CivilStatus = strOrNil("married")
	if birthISO != "" {
		b := Day(birthISO)
		m.BirthDate = &b
	}
	return m
}

func Employer(cvr, name, industry, size string) *pension.RawEmployer {
	return &pension.RawEmployer{
		CVRNumber:    cvr,
		CompanyName:  strOrNil(name),
		IndustryName: strOrNil(industry),
		SizeCategory: strOrNil(size),
	}
}

// Contribution builds a raw contribution; an empty paidISO means no payment date.
func Contribution(id, cpr, cvr, period string, employer, employee float64, paidISO string) *pension.RawContribution {
	c := &pension.RawContribution{
		ContributionID:     id,
		CPRNumber:          cpr,
		CVRNumber:          cvr,
		ContributionPeriod: period,
		EmployerAmount:     &employer,
		EmployeeAmount:     &employee,
	}
	if paidISO != "" {
		p := Day(paidISO)
		c.PaymentDate = &p
	}
	return c
}

func SeedMembers(tb testing.TB, ctx context.Context, tx *gorm.DB, rows ...*pension.RawMember) {
	tb.Helper()
	if len(rows) == 0 {
		return
	}
	if err := tx.WithContext(ctx).Create(rows).Error; err != nil {
		tb.Fatalf("seed members: %v", err)
	}
}

func SeedEmployers(tb testing.TB, ctx context.Context, tx *gorm.DB, rows ...*pension.RawEmployer) {
	tb.Helper()
	if len(rows) == 0 {
		return
	}
	if err := tx.WithContext(ctx).Create(rows).Error; err != nil {
		tb.Fatalf("seed employers: %v", err)
	}
}

func SeedContributions(tb testing.TB, ctx context.Context, tx *gorm.DB, rows ...*pension.RawContribution) {
	tb.Helper()
	if len(rows) == 0 {
		return
	}
	if err := tx.WithContext(ctx).Create(rows).Error; err != nil {
		tb.Fatalf("seed contributions: %v", err)
	}
}
