package pension

import "time"

// MemberProfile holds the member attributes shared by the raw and clean tables.
type MemberProfile struct {
	CPRNumber        string     `gorm:"column:cpr_number;not null;index" json:"cpr_number"`
	FirstName        *string    `gorm:"column:first_name" json:"first_name"`
	LastName         *string    `gorm:"column:last_name" json:"last_name"`
	Gender           *string    `gorm:"column:gender" json:"gender,omitempty"`
	BirthDate        *time.Time `gorm:"column:birth_date;type:date" json:"birth_date,omitempty"`
	CivilStatus      *string    `gorm:"column:civil_status" json:"civil_status,omitempty"`
	StreetAddress    *string    `gorm:"column:street_address" json:"street_address,omitempty"`
	PostalCode       *string    `gorm:"column:postal_code" json:"postal_code,omitempty"`
	City             *string    `gorm:"column:city" json:"city,omitempty"`
	IsActive         *bool      `gorm:"column:is_active" json:"is_active,omitempty"`
	RegistrationDate *time.Time `gorm:"column:registration_date" json:"registration_date,omitempty"`
	LastUpdated      *time.Time `gorm:"column:last_updated" json:"last_updated,omitempty"`
}

// RawMember is an ingested member row. It is never modified by the pipeline.
type RawMember struct {
	MemberProfile `gorm:"embedded"`
}

func (RawMember) TableName() string { return "raw_members" }

// CleanMember is a RawMember plus derived fields. Rows with IsValidRecord=false
// are kept; the flag is informational.
type CleanMember struct {
	MemberProfile `gorm:"embedded"`
	FullName      *string   `gorm:"column:full_name" json:"full_name"`
	Age           *int      `gorm:"column:age" json:"age"`
	IsValidRecord bool      `gorm:"column:is_valid_record;not null" json:"is_valid_record"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null;autoUpdateTime:false" json:"updated_at"`
}

func (CleanMember) TableName() string { return "members_clean" }
