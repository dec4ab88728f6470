package pension

// RawEmployer is keyed by its CVR number.
type RawEmployer struct {
	CVRNumber    string  `gorm:"column:cvr_number;not null;index" json:"cvr_number"`
	CompanyName  *string `gorm:"column:company_name" json:"company_name"`
	IndustryName *string `gorm:"column:industry_name" json:"industry_name"`
	SizeCategory *string `gorm:"column:size_category" json:"size_category"`
}

func (RawEmployer) TableName() string { return "raw_employers" }
