// Package pipeline implements the multi-agent crop assessment core:
// four scoring stages behind a uniform interface, a synthesizer that
// merges their outputs, and an orchestrator that drives the two-phase
// dependency graph under a hard per-run deadline.
package pipeline

import (
	"context"
	"time"

	"github.com/agrisense-ai/agrisense/pkg/models"
)

// PriorResults carries the read-only inputs available to a stage:
// the resolved crop profile and, for phase-B stages, the completed
// freshness result. Stages never observe each other's phase-mates.
type PriorResults struct {
	Profile      models.CropProfile
	ProfileKnown bool // false when the generic default profile was substituted

	// Freshness is nil during phase A and immutable once set.
	Freshness *models.FreshnessResult
}

// StageResult is the tagged union of stage outputs; exactly one field
// is set, matching the stage that produced it.
type StageResult struct {
	Freshness *models.FreshnessResult
	Market    *models.MarketResult
	Logistics *models.LogisticsResult
	Weather   *models.WeatherResult
}

// Stage is the uniform signature all four scoring stages implement.
// The bool reports whether the stage substituted fallback data for an
// unavailable collaborator; a non-nil error is an execution fault,
// retried once by the orchestrator.
type Stage interface {
	Name() models.StageName
	Run(ctx context.Context, req *models.AssessmentRequest, prior *PriorResults) (StageResult, bool, error)
}

// EventType classifies stage progress events.
type EventType string

const (
	EventStarted   EventType = "started"
	EventSucceeded EventType = "succeeded"
	EventFallback  EventType = "fallback"
	EventRetried   EventType = "retried"
	EventFailed    EventType = "failed"
	EventSkipped   EventType = "skipped"
)

// StageEvent is emitted at stage boundaries for progress streaming.
type StageEvent struct {
	RunID   string           `json:"run_id"`
	Stage   models.StageName `json:"stage"`
	Type    EventType        `json:"type"`
	Attempt int              `json:"attempt"`
	Elapsed time.Duration    `json:"elapsed"`
	Error   string           `json:"error,omitempty"`
}

// Observer receives stage events. It must be fast and non-blocking;
// the orchestrator calls it inline at stage boundaries.
type Observer func(StageEvent)
