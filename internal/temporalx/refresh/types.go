package refresh

import "time"

const (
	WorkflowName     = "pension_refresh"
	ActivityRunStage = "pension_refresh_stage"
)

type Input struct {
	Stages  []string `json:"stages,omitempty"`
	Trigger string   `json:"trigger,omitempty"`
}

type StageInput struct {
	Stage          string    `json:"stage"`
	Trigger        string    `json:"trigger"`
	ProcessingTime time.Time `json:"processing_time"`
}

type StageOutput struct {
	RunID string `json:"run_id"`
	Stage string `json:"stage"`
	Table string `json:"table,omitempty"`
	Rows  int64  `json:"rows"`
}

type Result struct {
	ProcessingTime time.Time     `json:"processing_time"`
	Stages         []StageOutput `json:"stages"`
}
