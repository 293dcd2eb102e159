package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agrisense-ai/agrisense/internal/catalog"
	"github.com/agrisense-ai/agrisense/internal/source"
	"github.com/agrisense-ai/agrisense/pkg/models"
)

// Config holds the orchestrator's runtime knobs.
type Config struct {
	// TotalTimeout is the hard deadline for one assessment run.
	TotalTimeout time.Duration

	// StageTimeout caps a single stage attempt. Zero means attempts are
	// bounded only by the run deadline.
	StageTimeout time.Duration

	// FallbackConfidence is the per-stage confidence factor for stages
	// that ran on substituted data.
	FallbackConfidence float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		TotalTimeout:       800 * time.Millisecond,
		StageTimeout:       0,
		FallbackConfidence: 0.7,
	}
}

// Orchestrator drives one assessment run: validation, the two-phase
// stage graph, and synthesis, all inside the run deadline. A single
// Orchestrator serves concurrent requests; per-run state lives in the
// WorkflowRun it creates.
type Orchestrator struct {
	cfg     Config
	catalog *catalog.Catalog
	synth   Synthesizer

	freshness Stage
	market    Stage
	logistics Stage
	weather   Stage

	// observer receives stage events; it may be called from concurrent
	// stage goroutines and must be safe for that.
	observer Observer
}

// New builds an orchestrator over the configured collaborators. Any of
// the aggregator's live sources may be nil; the corresponding stage
// then runs permanently on fallback data.
func New(cfg Config, cat *catalog.Catalog, agg *source.Aggregator, obs Observer) *Orchestrator {
	if cfg.TotalTimeout <= 0 {
		cfg.TotalTimeout = DefaultConfig().TotalTimeout
	}
	if cfg.FallbackConfidence <= 0 || cfg.FallbackConfidence > 1 {
		cfg.FallbackConfidence = DefaultConfig().FallbackConfidence
	}
	return &Orchestrator{
		cfg:       cfg,
		catalog:   cat,
		synth:     Synthesizer{FallbackConfidence: cfg.FallbackConfidence},
		freshness: &FreshnessStage{},
		market:    &MarketStage{Source: agg.Market()},
		logistics: &LogisticsStage{Registry: agg.Registry()},
		weather:   &WeatherStage{Live: agg.ForecastProvider(), Sim: agg.Simulated()},
		observer:  obs,
	}
}

// NewWithStages builds an orchestrator over explicit stage
// implementations. Used by tests and embedded callers.
func NewWithStages(cfg Config, cat *catalog.Catalog, freshness, market, logistics, weather Stage, obs Observer) *Orchestrator {
	o := New(cfg, cat, source.NewAggregator(nil, nil, nil), obs)
	o.freshness = freshness
	o.market = market
	o.logistics = logistics
	o.weather = weather
	return o
}

// stageOutcome is the per-stage bookkeeping collected by a run.
type stageOutcome struct {
	result   StageResult
	fallback bool
	err      error
}

// Assess runs the full pipeline for one request. The returned
// WorkflowRun is always non-nil and carries per-stage outcomes even
// when the assessment itself failed.
func (o *Orchestrator) Assess(ctx context.Context, req *models.AssessmentRequest) (*models.FinalAssessment, *models.WorkflowRun, error) {
	run := models.NewWorkflowRun(newRunID(), time.Now().UTC())

	req.Normalize()
	if err := req.Validate(); err != nil {
		run.Status = models.RunFailed
		run.Reason = err.Error()
		for _, rec := range run.Stages {
			rec.State = models.StageSkipped
		}
		return nil, run, validationError(err)
	}

	profile, known := o.catalog.Lookup(req.Crop)
	if !known {
		log.Printf("[pipeline] run=%s unknown crop %q, using generic profile", run.ID, req.Crop)
	}
	prior := &PriorResults{Profile: profile, ProfileKnown: known}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.TotalTimeout)
	defer cancel()

	run.Status = models.RunRunning

	// Phase A: freshness and weather have no cross-dependencies. Stage
	// errors are collected per-stage, never propagated through the
	// group, so one failing stage cannot cancel its phase-mate.
	var freshOut, weatherOut stageOutcome
	var g errgroup.Group
	g.Go(func() error {
		freshOut = o.runStage(ctx, run, o.freshness, req, prior)
		return nil
	})
	g.Go(func() error {
		weatherOut = o.runStage(ctx, run, o.weather, req, prior)
		return nil
	})
	_ = g.Wait()

	// Freshness is the spine of the assessment: without it nothing
	// downstream can run, so its failure fails the run.
	if freshOut.err != nil {
		run.Status = models.RunFailed
		run.Reason = fmt.Sprintf("freshness stage failed: %v", freshOut.err)
		o.skip(run, models.StageMarket)
		o.skip(run, models.StageLogistics)
		if ctx.Err() != nil {
			return nil, run, deadlineError(models.StageFreshness)
		}
		return nil, run, stageFailedError(models.StageFreshness, freshOut.err)
	}
	prior.Freshness = freshOut.result.Freshness

	// Phase B: market and logistics both read freshness but never each
	// other.
	var marketOut, logisticsOut stageOutcome
	var g2 errgroup.Group
	g2.Go(func() error {
		marketOut = o.runStage(ctx, run, o.market, req, prior)
		return nil
	})
	g2.Go(func() error {
		logisticsOut = o.runStage(ctx, run, o.logistics, req, prior)
		return nil
	})
	_ = g2.Wait()

	final := o.synth.Synthesize(req, &profile, run,
		freshOut.result.Freshness,
		marketOut.result.Market,
		logisticsOut.result.Logistics,
		weatherOut.result.Weather,
	)

	run.Status = final.Status
	if final.Status == models.RunDegraded {
		run.Reason = degradedReason(run)
	}

	log.Printf("[pipeline] run=%s crop=%s location=%s status=%s score=%.1f confidence=%.2f elapsed=%s",
		run.ID, req.Crop, req.Location, run.Status, final.AdjustedScore, final.Confidence, time.Since(run.StartedAt).Round(time.Millisecond))

	return final, run, nil
}

// runStage executes one stage with a single bounded retry. Panics are
// recovered into execution errors so one stage cannot take down the
// run.
func (o *Orchestrator) runStage(ctx context.Context, run *models.WorkflowRun, st Stage, req *models.AssessmentRequest, prior *PriorResults) stageOutcome {
	name := st.Name()
	rec := run.Stages[name]
	rec.State = models.StageRunning
	start := time.Now()

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}

		rec.Attempts = attempt
		o.emit(run.ID, name, EventStarted, attempt, time.Since(start), nil)

		res, fallback, err := o.attempt(ctx, st, req, prior)
		rec.Elapsed = time.Since(start)

		if err == nil {
			if fallback {
				rec.State = models.StageFellBack
				o.emit(run.ID, name, EventFallback, attempt, rec.Elapsed, nil)
			} else {
				rec.State = models.StageSucceeded
				o.emit(run.ID, name, EventSucceeded, attempt, rec.Elapsed, nil)
			}
			return stageOutcome{result: res, fallback: fallback}
		}

		lastErr = err
		if ctx.Err() != nil {
			// Out of time: no point retrying.
			break
		}
		if attempt == 1 {
			log.Printf("[pipeline] run=%s stage=%s attempt 1 failed, retrying: %v", run.ID, name, err)
			o.emit(run.ID, name, EventRetried, attempt, time.Since(start), err)
		}
	}

	rec.Elapsed = time.Since(start)
	rec.State = models.StageFailedSt
	if lastErr != nil {
		rec.Error = lastErr.Error()
	}
	o.emit(run.ID, name, EventFailed, rec.Attempts, rec.Elapsed, lastErr)
	return stageOutcome{err: lastErr}
}

// attempt runs one stage attempt under the optional per-attempt
// timeout, converting panics to errors.
func (o *Orchestrator) attempt(ctx context.Context, st Stage, req *models.AssessmentRequest, prior *PriorResults) (res StageResult, fallback bool, err error) {
	if o.cfg.StageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.StageTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stage panic: %v", r)
		}
	}()
	return st.Run(ctx, req, prior)
}

func (o *Orchestrator) skip(run *models.WorkflowRun, name models.StageName) {
	rec := run.Stages[name]
	if rec.State == models.StagePending {
		rec.State = models.StageSkipped
		o.emit(run.ID, name, EventSkipped, 0, 0, nil)
	}
}

func (o *Orchestrator) emit(runID string, stage models.StageName, typ EventType, attempt int, elapsed time.Duration, err error) {
	if o.observer == nil {
		return
	}
	ev := StageEvent{RunID: runID, Stage: stage, Type: typ, Attempt: attempt, Elapsed: elapsed}
	if err != nil {
		ev.Error = err.Error()
	}
	o.observer(ev)
}

func degradedReason(run *models.WorkflowRun) string {
	names := run.DegradedStages()
	if len(names) == 0 {
		return ""
	}
	reason := "degraded stages:"
	for _, n := range names {
		reason += " " + string(n)
	}
	return reason
}

// newRunID returns a short random identifier for one run.
func newRunID() string {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return "run-" + hex.EncodeToString(b[:])
}
