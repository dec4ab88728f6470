package pension

import "time"

type RiskCategory string

const (
	RiskLow    RiskCategory = "Low Risk"
	RiskMedium RiskCategory = "Medium Risk"
	RiskHigh   RiskCategory = "High Risk"
)

// MemberSummary is one member's contribution history folded into totals and a risk tier.
type MemberSummary struct {
	CPRNumber               string       `gorm:"column:cpr_number;not null;index" json:"cpr_number"`
	FullName                *string      `gorm:"column:full_name" json:"full_name"`
	Age                     *int         `gorm:"column:age" json:"age"`
	City                    *string      `gorm:"column:city" json:"city"`
	CivilStatus             *string      `gorm:"column:civil_status" json:"civil_status"`
	TotalContributedAmount  *float64     `gorm:"column:total_contributed_amount;type:decimal(14,2)" json:"total_contributed_amount"`
	TotalContributions      int64        `gorm:"column:total_contributions;not null" json:"total_contributions"`
	LateContributionsCount  int64        `gorm:"column:late_contributions_count;not null" json:"late_contributions_count"`
	LatePaymentRate         float64      `gorm:"column:late_payment_rate;not null" json:"late_payment_rate"`
	PaymentRiskCategory     RiskCategory `gorm:"column:payment_risk_category;not null;index" json:"payment_risk_category"`
	FirstContributionPeriod *string      `gorm:"column:first_contribution_period" json:"first_contribution_period"`
	LastContributionPeriod  *string      `gorm:"column:last_contribution_period" json:"last_contribution_period"`
	UpdatedAt               time.Time    `gorm:"column:updated_at;not null;autoUpdateTime:false" json:"updated_at"`
}

func (MemberSummary) TableName() string { return "member_contribution_summary" }

// RiskCategoryStats is the per-tier roll-up shown to operators.
type RiskCategoryStats struct {
	Category             RiskCategory `json:"payment_risk_category"`
	MemberCount          int64        `json:"member_count"`
	AvgTotalContribution float64      `json:"avg_total_contribution"`
	AvgLatePaymentRate   float64      `json:"avg_late_payment_rate"`
}
