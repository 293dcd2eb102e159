package models

import "time"

// RunStatus is the overall state of a workflow run.
type RunStatus string

const (
	RunPending   RunStatus = "PENDING"
	RunRunning   RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunDegraded  RunStatus = "DEGRADED"
	RunFailed    RunStatus = "FAILED"
)

// Terminal reports whether the status is a terminal state.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunCompleted, RunDegraded, RunFailed:
		return true
	}
	return false
}

// StageName identifies one of the four scoring stages.
type StageName string

const (
	StageFreshness StageName = "freshness"
	StageMarket    StageName = "market"
	StageLogistics StageName = "logistics"
	StageWeather   StageName = "weather"
)

// StageState is the per-stage execution state inside a run.
type StageState string

const (
	StagePending   StageState = "PENDING"
	StageRunning   StageState = "RUNNING"
	StageSucceeded StageState = "SUCCEEDED"
	StageFellBack  StageState = "FALLBACK"   // completed using substituted data
	StageDefaulted StageState = "DEFAULTED"  // failed, neutral default substituted
	StageFailedSt  StageState = "FAILED"     // failed with no usable result
	StageSkipped   StageState = "SKIPPED"    // never started (deadline or fatal upstream)
)

// StageRecord tracks one stage's outcome within a run.
type StageRecord struct {
	State    StageState    `json:"state"`
	Elapsed  time.Duration `json:"elapsed"`
	Attempts int           `json:"attempts"`
	Error    string        `json:"error,omitempty"`
}

// WorkflowRun is the execution context for a single request. It is
// owned exclusively by the orchestrator for the lifetime of the request
// and discarded after the result is returned.
type WorkflowRun struct {
	ID        string                     `json:"id"`
	StartedAt time.Time                  `json:"started_at"`
	Status    RunStatus                  `json:"status"`
	Stages    map[StageName]*StageRecord `json:"stages"`
	// Reason records why a run ended DEGRADED or FAILED (e.g. "deadline
	// exceeded", "freshness stage failed").
	Reason string `json:"reason,omitempty"`
}

// NewWorkflowRun creates a run in PENDING with all four stages pending.
func NewWorkflowRun(id string, now time.Time) *WorkflowRun {
	return &WorkflowRun{
		ID:        id,
		StartedAt: now,
		Status:    RunPending,
		Stages: map[StageName]*StageRecord{
			StageFreshness: {State: StagePending},
			StageMarket:    {State: StagePending},
			StageLogistics: {State: StagePending},
			StageWeather:   {State: StagePending},
		},
	}
}

// DegradedStages returns the stages that fell back or were defaulted.
func (w *WorkflowRun) DegradedStages() []StageName {
	var out []StageName
	for _, name := range []StageName{StageFreshness, StageMarket, StageLogistics, StageWeather} {
		rec := w.Stages[name]
		if rec != nil && (rec.State == StageFellBack || rec.State == StageDefaulted || rec.State == StageSkipped) {
			out = append(out, name)
		}
	}
	return out
}
