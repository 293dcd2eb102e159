package pipeline

import (
	"fmt"

	"github.com/agrisense-ai/agrisense/pkg/models"
)

// ErrorKind classifies pipeline failures for callers.
type ErrorKind string

const (
	// KindValidation marks a malformed or out-of-range request. Fatal;
	// no stage runs.
	KindValidation ErrorKind = "VALIDATION"

	// KindStageFailed marks a stage that raised execution errors on
	// both attempts. Only fatal for the freshness stage.
	KindStageFailed ErrorKind = "STAGE_FAILED"

	// KindDeadline marks a run whose mandatory stage could not finish
	// inside the overall deadline.
	KindDeadline ErrorKind = "DEADLINE"
)

// PipelineError is the structured error returned for FAILED runs. It
// identifies the failing stage (when one is responsible) and the reason.
type PipelineError struct {
	Kind   ErrorKind        `json:"kind"`
	Stage  models.StageName `json:"stage,omitempty"`
	Reason string           `json:"reason"`
	Err    error            `json:"-"`
}

func (e *PipelineError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Stage, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *PipelineError) Unwrap() error { return e.Err }

func validationError(err error) *PipelineError {
	return &PipelineError{Kind: KindValidation, Reason: err.Error(), Err: err}
}

func stageFailedError(stage models.StageName, err error) *PipelineError {
	reason := "stage failed after retry"
	if err != nil {
		reason = err.Error()
	}
	return &PipelineError{Kind: KindStageFailed, Stage: stage, Reason: reason, Err: err}
}

func deadlineError(stage models.StageName) *PipelineError {
	return &PipelineError{
		Kind:   KindDeadline,
		Stage:  stage,
		Reason: "run deadline elapsed before the mandatory stage finished",
	}
}
