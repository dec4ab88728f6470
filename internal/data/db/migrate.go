package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/pension-pipeline/internal/domain/jobs"
	"github.com/yungbote/pension-pipeline/internal/domain/pension"
)

// AutoMigrateAll creates the default tables. Renamed tables (TABLE_* overrides)
// are migrated with AutoMigrateTables.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Raw inputs
		&pension.RawMember{},
		&pension.RawEmployer{},
		&pension.RawContribution{},

		// Derived outputs
		&pension.CleanMember{},
		&pension.EnrichedContribution{},
		&pension.MemberSummary{},

		// Run ledger
		&jobs.PipelineRun{},
	)
}

// AutoMigrateTables migrates model into every listed table name.
func AutoMigrateTables(db *gorm.DB, tables map[string]interface{}) error {
	for name, model := range tables {
		if err := db.Table(name).AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %s: %w", name, err)
		}
	}
	return nil
}
