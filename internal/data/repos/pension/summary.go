package pension

import (
	"strings"

	"gorm.io/gorm"

	domain "github.com/yungbote/pension-pipeline/internal/domain/pension"
	"github.com/yungbote/pension-pipeline/internal/pkg/dbctx"
	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

// RiskTotals is the raw per-category roll-up; averages are derived by the caller.
type RiskTotals struct {
	Category        domain.RiskCategory `gorm:"column:payment_risk_category"`
	MemberCount     int64               `gorm:"column:member_count"`
	SumContribution *float64            `gorm:"column:sum_contribution"`
	SumLateRate     *float64            `gorm:"column:sum_late_rate"`
}

type MemberSummaryRepo interface {
	Table() string
	Exists(dbc dbctx.Context) (bool, error)
	Count(dbc dbctx.Context) (int64, error)
	ListAll(dbc dbctx.Context) ([]*domain.MemberSummary, error)
	ReplaceAll(dbc dbctx.Context, rows []*domain.MemberSummary) (int64, error)
	GetByCPR(dbc dbctx.Context, cpr string) ([]*domain.MemberSummary, error)
	RiskTotals(dbc dbctx.Context) ([]RiskTotals, error)
}

type memberSummaryRepo struct {
	tableStore[domain.MemberSummary]
}

func NewMemberSummaryRepo(db *gorm.DB, baseLog *logger.Logger, table string) MemberSummaryRepo {
	if table == "" {
		table = domain.MemberSummary{}.TableName()
	}
	return &memberSummaryRepo{
		tableStore: newTableStore[domain.MemberSummary](db, baseLog.With("repo", "MemberSummaryRepo"), table, "cpr_number, full_name"),
	}
}

// GetByCPR returns every summary group for the CPR; duplicated members can
// produce more than one.
func (r *memberSummaryRepo) GetByCPR(dbc dbctx.Context, cpr string) ([]*domain.MemberSummary, error) {
	cpr = strings.TrimSpace(cpr)
	var out []*domain.MemberSummary
	if cpr == "" {
		return out, nil
	}
	if err := r.conn(dbc).
		Where("cpr_number = ?", cpr).
		Order("full_name").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *memberSummaryRepo) RiskTotals(dbc dbctx.Context) ([]RiskTotals, error) {
	var out []RiskTotals
	err := r.conn(dbc).
		Select(`payment_risk_category,
			COUNT(*) AS member_count,
			SUM(total_contributed_amount) AS sum_contribution,
			SUM(late_payment_rate) AS sum_late_rate`).
		Group("payment_risk_category").
		Order("payment_risk_category").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
