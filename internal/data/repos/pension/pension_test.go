package pension

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pension-pipeline/internal/data/repos/testutil"
	"github.com/yungbote/pension-pipeline/internal/data/txn"
	domain "github.com/yungbote/pension-pipeline/internal/domain/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/dbctx"
	"github.com/yungbote/pension-pipeline/internal/pkg/pointers"
)

func TestRawReposListAll(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	testutil.SeedMembers(t, ctx, tx,
		testutil.Member("200202-2222", "Bo", "Berg", "1985-06-01"),
		testutil.Member("100101-1111", "Anna", "", "1990-01-01"),
	)
	testutil.SeedEmployers(t, ctx, tx, testutil.Employer("12345678", "Acme ApS", "Retail", "small"))
	testutil.SeedContributions(t, ctx, tx,
		testutil.Contribution("c2", "100101-1111", "12345678", "2024-02", 170, 100, "2024-03-05"),
		testutil.Contribution("c1", "100101-1111", "12345678", "2024-01", 170, 100, ""),
	)

	members, err := NewRawMemberRepo(db, log, "").ListAll(dbc)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "100101-1111", members[0].CPRNumber)
	assert.Nil(t, members[0].LastName)
	require.NotNil(t, members[1].BirthDate)
	assert.Equal(t, 1985, members[1].BirthDate.Year())

	employers, err := NewRawEmployerRepo(db, log, "").ListAll(dbc)
	require.NoError(t, err)
	require.Len(t, employers, 1)
	assert.Equal(t, "Acme ApS", *employers[0].CompanyName)

	contribs, err := NewRawContributionRepo(db, log, "").ListAll(dbc)
	require.NoError(t, err)
	require.Len(t, contribs, 2)
	assert.Equal(t, "c1", contribs[0].ContributionID)
	assert.Nil(t, contribs[0].PaymentDate)
	assert.InDelta(t, 170.0, *contribs[1].EmployerAmount, 1e-9)
}

func TestListAllMissingTable(t *testing.T) {
	db := testutil.EmptyDB(t)
	repo := NewRawMemberRepo(db, testutil.Logger(t), "")

	ok, err := repo.Exists(dbctx.Context{Ctx: context.Background()})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.ListAll(dbctx.Context{Ctx: context.Background()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, txn.ErrMissingTable))
}

func TestReplaceAllOverwrites(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewCleanMemberRepo(db, testutil.Logger(t), "")
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	first := []*domain.CleanMember{
		{MemberProfile: domain.MemberProfile{CPRNumber: "100101-1111"}, IsValidRecord: true, UpdatedAt: now},
		{MemberProfile: domain.MemberProfile{CPRNumber: "200202-2222"}, IsValidRecord: true, UpdatedAt: now},
	}
	n, err := repo.ReplaceAll(dbc, first)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	second := []*domain.CleanMember{
		{MemberProfile: domain.MemberProfile{CPRNumber: "300303-3333"}, FullName: pointers.String("Cai Dahl"), Age: pointers.Int(40), UpdatedAt: now},
	}
	n, err = repo.ReplaceAll(dbc, second)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	count, err := repo.Count(dbc)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	rows, err := repo.ListAll(dbc)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "300303-3333", rows[0].CPRNumber)
	assert.Equal(t, "Cai Dahl", *rows[0].FullName)
	assert.Equal(t, 40, *rows[0].Age)

	n, err = repo.ReplaceAll(dbc, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	count, err = repo.Count(dbc)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMemberSummaryQueries(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewMemberSummaryRepo(db, testutil.Logger(t), "")
	now := time.Now().UTC()

	_, err := repo.ReplaceAll(dbc, []*domain.MemberSummary{
		{CPRNumber: "100101-1111", TotalContributedAmount: pointers.Float64(540), TotalContributions: 2, LateContributionsCount: 1, LatePaymentRate: 50, PaymentRiskCategory: domain.RiskHigh, UpdatedAt: now},
		{CPRNumber: "200202-2222", TotalContributedAmount: pointers.Float64(270), TotalContributions: 1, PaymentRiskCategory: domain.RiskLow, UpdatedAt: now},
		{CPRNumber: "300303-3333", PaymentRiskCategory: domain.RiskLow, UpdatedAt: now},
	})
	require.NoError(t, err)

	got, err := repo.GetByCPR(dbc, " 100101-1111 ")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.RiskHigh, got[0].PaymentRiskCategory)

	none, err := repo.GetByCPR(dbc, "")
	require.NoError(t, err)
	assert.Empty(t, none)

	totals, err := repo.RiskTotals(dbc)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, domain.RiskHigh, totals[0].Category)
	assert.EqualValues(t, 1, totals[0].MemberCount)
	assert.Equal(t, domain.RiskLow, totals[1].Category)
	assert.EqualValues(t, 2, totals[1].MemberCount)
	require.NotNil(t, totals[1].SumContribution)
	assert.InDelta(t, 270.0, *totals[1].SumContribution, 1e-9)
}

func TestQuoteTable(t *testing.T) {
	assert.Equal(t, `"members_clean"`, quoteTable("members_clean"))
	assert.Equal(t, `"silver"."members_clean"`, quoteTable("silver.members_clean"))
	assert.Equal(t, `"we""ird"`, quoteTable(`we"ird`))
}
