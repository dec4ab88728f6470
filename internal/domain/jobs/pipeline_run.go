package jobs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

const (
	TriggerCLI      = "cli"
	TriggerAPI      = "api"
	TriggerSchedule = "schedule"
	TriggerTemporal = "temporal"
)

// PipelineRun is the ledger row for one pipeline execution.
type PipelineRun struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TriggeredBy    string         `gorm:"column:triggered_by;not null;index" json:"triggered_by"`
	Status         string         `gorm:"column:status;not null;index" json:"status"`
	Stage          string         `gorm:"column:stage;not null" json:"stage"`
	Stages         string         `gorm:"column:stages;not null" json:"stages"`
	Progress       int            `gorm:"column:progress;not null" json:"progress"`
	Error          string         `gorm:"column:error" json:"error,omitempty"`
	ErrorCode      string         `gorm:"column:error_code" json:"error_code,omitempty"`
	ProcessingTime time.Time      `gorm:"column:processing_time;not null" json:"processing_time"`
	Result         datatypes.JSON `gorm:"column:result" json:"result"`
	StartedAt      time.Time      `gorm:"column:started_at;not null;index" json:"started_at"`
	FinishedAt     *time.Time     `gorm:"column:finished_at" json:"finished_at,omitempty"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null;index" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (PipelineRun) TableName() string { return "pipeline_run" }

// Terminal reports whether the run can no longer change state.
func (r *PipelineRun) Terminal() bool {
	return r != nil && (r.Status == RunStatusSucceeded || r.Status == RunStatusFailed)
}
