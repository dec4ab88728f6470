package services

import (
	"strings"

	"github.com/yungbote/pension-pipeline/internal/data/repos"
	"github.com/yungbote/pension-pipeline/internal/data/txn"
	domain "github.com/yungbote/pension-pipeline/internal/domain/pension"
	"github.com/yungbote/pension-pipeline/internal/domain/stageerr"
	"github.com/yungbote/pension-pipeline/internal/modules/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/dbctx"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

type SummaryService interface {
	// MemberSummary returns every summary row for cpr; duplicates with
	// differing attributes produce more than one row.
	MemberSummary(dbc dbctx.Context, cpr string) ([]*domain.MemberSummary, error)
	// RiskStats is the per-tier roll-up, sorted by category name.
	RiskStats(dbc dbctx.Context) ([]domain.RiskCategoryStats, error)
}

type summaryService struct {
	log     *logger.Logger
	summary repos.MemberSummaryRepo
}

func NewSummaryService(baseLog *logger.Logger, summary repos.MemberSummaryRepo) SummaryService {
	return &summaryService{
		log:     baseLog.With("service", "SummaryService"),
		summary: summary,
	}
}

func (s *summaryService) MemberSummary(dbc dbctx.Context, cpr string) ([]*domain.MemberSummary, error) {
	cpr = strings.TrimSpace(cpr)
	if cpr == "" {
		return nil, stageerr.NewError(stageerr.CodeValidation, "member summary", "cpr is required", nil)
	}
	rows, err := s.summary.GetByCPR(dbc, cpr)
	if err != nil {
		return nil, txn.MapError("member summary", stageerr.CodeInputUnavailable, err)
	}
	if len(rows) == 0 {
		return nil, stageerr.NewError(stageerr.CodeNotFound, "member summary", "no summary for member", nil)
	}
	return rows, nil
}

func (s *summaryService) RiskStats(dbc dbctx.Context) ([]domain.RiskCategoryStats, error) {
	totals, err := s.summary.RiskTotals(dbc)
	if err != nil {
		return nil, txn.MapError("risk stats", stageerr.CodeInputUnavailable, err)
	}
	out := make([]domain.RiskCategoryStats, 0, len(totals))
	for _, t := range totals {
		out = append(out, pension.AverageStats(t.Category, t.MemberCount, t.SumContribution, t.SumLateRate))
	}
	return out, nil
}
