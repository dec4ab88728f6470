package pension

import "time"

// ExpectedContributionAmount is the monthly total every contribution is compared against.
const ExpectedContributionAmount = 270.0

// RawContribution is one monthly payment as delivered by the employer.
type RawContribution struct {
	ContributionID     string     `gorm:"column:contribution_id;not null;index" json:"contribution_id"`
	CPRNumber          string     `gorm:"column:cpr_number;not null;index" json:"cpr_number"`
	CVRNumber          string     `gorm:"column:cvr_number;index" json:"cvr_number"`
	ContributionPeriod string     `gorm:"column:contribution_period;not null" json:"contribution_period"`
	EmployerAmount     *float64   `gorm:"column:employer_amount;type:decimal(12,2)" json:"employer_amount"`
	EmployeeAmount     *float64   `gorm:"column:employee_amount;type:decimal(12,2)" json:"employee_amount"`
	PaymentDate        *time.Time `gorm:"column:payment_date;type:date" json:"payment_date"`
	CreatedAt          *time.Time `gorm:"column:created_at;autoCreateTime:false" json:"created_at,omitempty"`
}

func (RawContribution) TableName() string { return "raw_contributions" }

// EnrichedContribution joins a contribution with its member and employer and
// carries the lateness and anomaly flags. Member and employer fields are nil
// when the left join found no match.
type EnrichedContribution struct {
	ContributionID     string     `gorm:"column:contribution_id;not null;index" json:"contribution_id"`
	CPRNumber          string     `gorm:"column:cpr_number;not null;index" json:"cpr_number"`
	CVRNumber          string     `gorm:"column:cvr_number;index" json:"cvr_number"`
	MemberName         *string    `gorm:"column:member_name" json:"member_name"`
	MemberAge          *int       `gorm:"column:member_age" json:"member_age"`
	EmployerName       *string    `gorm:"column:employer_name" json:"employer_name"`
	EmployerIndustry   *string    `gorm:"column:employer_industry" json:"employer_industry"`
	EmployerSize       *string    `gorm:"column:employer_size" json:"employer_size"`
	ContributionPeriod string     `gorm:"column:contribution_period;not null" json:"contribution_period"`
	ContributionYear   *int       `gorm:"column:contribution_year" json:"contribution_year"`
	ContributionMonth  *int       `gorm:"column:contribution_month" json:"contribution_month"`
	EmployerAmount     *float64   `gorm:"column:employer_amount;type:decimal(12,2)" json:"employer_amount"`
	EmployeeAmount     *float64   `gorm:"column:employee_amount;type:decimal(12,2)" json:"employee_amount"`
	TotalAmount        *float64   `gorm:"column:total_amount;type:decimal(12,2)" json:"total_amount"`
	PaymentDate        *time.Time `gorm:"column:payment_date;type:date" json:"payment_date"`
	IsLate             bool       `gorm:"column:is_late;not null" json:"is_late"`
	DaysLate           int        `gorm:"column:days_late;not null" json:"days_late"`
	IsAnomaly          bool       `gorm:"column:is_anomaly;not null" json:"is_anomaly"`
	ExpectedAmount     float64    `gorm:"column:expected_amount;not null" json:"expected_amount"`
	AmountVariance     *float64   `gorm:"column:amount_variance;type:decimal(12,2)" json:"amount_variance"`
	CreatedAt          *time.Time `gorm:"column:created_at;autoCreateTime:false" json:"created_at,omitempty"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;not null;autoUpdateTime:false" json:"updated_at"`
}

func (EnrichedContribution) TableName() string { return "contributions_enriched" }
