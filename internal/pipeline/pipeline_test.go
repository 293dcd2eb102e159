package pipeline

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agrisense-ai/agrisense/internal/catalog"
	"github.com/agrisense-ai/agrisense/internal/source"
	"github.com/agrisense-ai/agrisense/pkg/models"
)

// ── Test fixtures ──

type stubStage struct {
	name models.StageName
	fn   func(ctx context.Context, req *models.AssessmentRequest, prior *PriorResults) (StageResult, bool, error)
}

func (s *stubStage) Name() models.StageName { return s.name }

func (s *stubStage) Run(ctx context.Context, req *models.AssessmentRequest, prior *PriorResults) (StageResult, bool, error) {
	return s.fn(ctx, req, prior)
}

func liveFreshness(score float64, level models.FreshnessLevel) Stage {
	return &stubStage{name: models.StageFreshness, fn: func(_ context.Context, _ *models.AssessmentRequest, _ *PriorResults) (StageResult, bool, error) {
		return StageResult{Freshness: &models.FreshnessResult{Score: score, Level: level}}, false, nil
	}}
}

func liveMarket() Stage {
	return &stubStage{name: models.StageMarket, fn: func(_ context.Context, _ *models.AssessmentRequest, _ *PriorResults) (StageResult, bool, error) {
		return StageResult{Market: &models.MarketResult{
			BasePriceINR: 50, Multiplier: 1.1, FinalPriceINR: 55,
			Strategy: models.StrategyPremium, Trend: "rising",
		}}, false, nil
	}}
}

func liveLogistics() Stage {
	return &stubStage{name: models.StageLogistics, fn: func(_ context.Context, _ *models.AssessmentRequest, _ *PriorResults) (StageResult, bool, error) {
		return StageResult{Logistics: &models.LogisticsResult{
			Mode: models.ModeStandard, CostMultiplier: 1.0,
		}}, false, nil
	}}
}

func liveWeather(delta float64) Stage {
	return &stubStage{name: models.StageWeather, fn: func(_ context.Context, _ *models.AssessmentRequest, _ *PriorResults) (StageResult, bool, error) {
		return StageResult{Weather: &models.WeatherResult{
			DegradationDelta: delta, Risk: models.RiskLow, Source: models.ForecastLive,
		}}, false, nil
	}}
}

func hangingStage(name models.StageName) Stage {
	return &stubStage{name: name, fn: func(ctx context.Context, _ *models.AssessmentRequest, _ *PriorResults) (StageResult, bool, error) {
		<-ctx.Done()
		return StageResult{}, false, ctx.Err()
	}}
}

func failingStage(name models.StageName) Stage {
	return &stubStage{name: name, fn: func(_ context.Context, _ *models.AssessmentRequest, _ *PriorResults) (StageResult, bool, error) {
		return StageResult{}, false, errors.New("boom")
	}}
}

func testOrchestrator(t *testing.T, freshness, market, logistics, weather Stage, obs Observer) *Orchestrator {
	t.Helper()
	return NewWithStages(DefaultConfig(), catalog.NewBuiltin(), freshness, market, logistics, weather, obs)
}

func validRequest() *models.AssessmentRequest {
	return &models.AssessmentRequest{
		Crop: "tomato", TemperatureC: 22, HumidityPct: 65, AgeHours: 2,
		QuantityKG: 50, Location: "Mumbai", Urgency: models.UrgencyMedium,
	}
}

// ── Orchestrator ──

func TestAssessAllStagesLive(t *testing.T) {
	o := testOrchestrator(t, liveFreshness(90, models.FreshnessExcellent), liveMarket(), liveLogistics(), liveWeather(4), nil)

	final, run, err := o.Assess(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if final.Status != models.RunCompleted || run.Status != models.RunCompleted {
		t.Errorf("status = %s/%s, want COMPLETED", final.Status, run.Status)
	}
	if final.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0 with all stages live", final.Confidence)
	}
	if final.AdjustedScore != 86 {
		t.Errorf("adjusted = %v, want 90-4 = 86", final.AdjustedScore)
	}
	if final.Partial {
		t.Error("partial should be false with all stages live")
	}
	for name, rec := range run.Stages {
		if rec.State != models.StageSucceeded {
			t.Errorf("stage %s = %s, want SUCCEEDED", name, rec.State)
		}
	}
}

func TestAssessValidationFailure(t *testing.T) {
	o := testOrchestrator(t, liveFreshness(90, models.FreshnessExcellent), liveMarket(), liveLogistics(), liveWeather(0), nil)

	req := validRequest()
	req.TemperatureC = 99

	final, run, err := o.Assess(context.Background(), req)
	if final != nil {
		t.Error("no assessment should be produced for an invalid request")
	}
	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Kind != KindValidation {
		t.Fatalf("err = %v, want VALIDATION PipelineError", err)
	}
	if run.Status != models.RunFailed {
		t.Errorf("run status = %s, want FAILED", run.Status)
	}
	for name, rec := range run.Stages {
		if rec.State != models.StageSkipped {
			t.Errorf("stage %s = %s, want SKIPPED (nothing runs on bad input)", name, rec.State)
		}
	}
}

func TestFreshnessFailureIsFatal(t *testing.T) {
	o := testOrchestrator(t, failingStage(models.StageFreshness), liveMarket(), liveLogistics(), liveWeather(0), nil)

	final, run, err := o.Assess(context.Background(), validRequest())
	if final != nil {
		t.Error("no assessment without freshness")
	}
	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Kind != KindStageFailed || perr.Stage != models.StageFreshness {
		t.Fatalf("err = %v, want STAGE_FAILED on freshness", err)
	}
	if run.Status != models.RunFailed {
		t.Errorf("run status = %s, want FAILED", run.Status)
	}
	if got := run.Stages[models.StageFreshness]; got.State != models.StageFailedSt || got.Attempts != 2 {
		t.Errorf("freshness record = %+v, want FAILED after 2 attempts", got)
	}
	if run.Stages[models.StageMarket].State != models.StageSkipped {
		t.Errorf("market = %s, want SKIPPED after fatal freshness", run.Stages[models.StageMarket].State)
	}
	if run.Stages[models.StageLogistics].State != models.StageSkipped {
		t.Errorf("logistics = %s, want SKIPPED after fatal freshness", run.Stages[models.StageLogistics].State)
	}
	// Weather ran in the same phase and is unaffected by the failure.
	if run.Stages[models.StageWeather].State != models.StageSucceeded {
		t.Errorf("weather = %s, want SUCCEEDED", run.Stages[models.StageWeather].State)
	}
}

func TestRetrySucceedsOnSecondAttempt(t *testing.T) {
	var calls atomic.Int32
	flaky := &stubStage{name: models.StageMarket, fn: func(_ context.Context, _ *models.AssessmentRequest, _ *PriorResults) (StageResult, bool, error) {
		if calls.Add(1) == 1 {
			return StageResult{}, false, errors.New("transient")
		}
		return StageResult{Market: &models.MarketResult{BasePriceINR: 50, Multiplier: 1, FinalPriceINR: 50, Strategy: models.StrategyMarketRate}}, false, nil
	}}

	var mu sync.Mutex
	var events []StageEvent
	obs := func(ev StageEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}

	o := testOrchestrator(t, liveFreshness(90, models.FreshnessExcellent), flaky, liveLogistics(), liveWeather(0), obs)

	final, run, err := o.Assess(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if final.Status != models.RunCompleted {
		t.Errorf("status = %s, want COMPLETED after recovered retry", final.Status)
	}
	if rec := run.Stages[models.StageMarket]; rec.State != models.StageSucceeded || rec.Attempts != 2 {
		t.Errorf("market record = %+v, want SUCCEEDED on attempt 2", rec)
	}

	mu.Lock()
	defer mu.Unlock()
	var sawRetry bool
	for _, ev := range events {
		if ev.Stage == models.StageMarket && ev.Type == EventRetried {
			sawRetry = true
		}
	}
	if !sawRetry {
		t.Error("no retried event observed for the market stage")
	}
}

func TestStageFailureDefaultsAndDegrades(t *testing.T) {
	o := testOrchestrator(t, liveFreshness(90, models.FreshnessExcellent), liveMarket(), liveLogistics(), failingStage(models.StageWeather), nil)

	final, run, err := o.Assess(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if final.Status != models.RunDegraded {
		t.Errorf("status = %s, want DEGRADED", final.Status)
	}
	if !final.Partial {
		t.Error("partial should be set when a stage was defaulted")
	}
	if final.Weather == nil || final.Weather.DegradationDelta != 0 || !final.Weather.FallbackUsed {
		t.Errorf("weather default = %+v, want zero-delta fallback", final.Weather)
	}
	if final.AdjustedScore != 90 {
		t.Errorf("adjusted = %v, want unpenalized 90 with defaulted weather", final.AdjustedScore)
	}
	if math.Abs(final.Confidence-0.7) > 1e-9 {
		t.Errorf("confidence = %v, want 0.7 for one defaulted stage", final.Confidence)
	}
	if rec := run.Stages[models.StageWeather]; rec.State != models.StageDefaulted || rec.Error == "" {
		t.Errorf("weather record = %+v, want DEFAULTED with error kept", rec)
	}
}

func TestFallbackStageDegradesConfidence(t *testing.T) {
	fallbackMarket := &stubStage{name: models.StageMarket, fn: func(_ context.Context, _ *models.AssessmentRequest, _ *PriorResults) (StageResult, bool, error) {
		return StageResult{Market: &models.MarketResult{
			BasePriceINR: 45, Multiplier: 1, FinalPriceINR: 45,
			Strategy: models.StrategyMarketRate, FallbackUsed: true,
		}}, true, nil
	}}
	o := testOrchestrator(t, liveFreshness(90, models.FreshnessExcellent), fallbackMarket, liveLogistics(), liveWeather(0), nil)

	final, run, err := o.Assess(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if final.Status != models.RunDegraded {
		t.Errorf("status = %s, want DEGRADED on fallback data", final.Status)
	}
	if final.Partial {
		t.Error("fallback is not partial; the stage still produced a result")
	}
	if math.Abs(final.Confidence-0.7) > 1e-9 {
		t.Errorf("confidence = %v, want 0.7", final.Confidence)
	}
	if run.Stages[models.StageMarket].State != models.StageFellBack {
		t.Errorf("market state = %s, want FALLBACK", run.Stages[models.StageMarket].State)
	}
}

func TestDeadlineDefaultsSlowStage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TotalTimeout = 100 * time.Millisecond

	o := NewWithStages(cfg, catalog.NewBuiltin(),
		liveFreshness(90, models.FreshnessExcellent),
		hangingStage(models.StageMarket),
		liveLogistics(),
		liveWeather(0),
		nil)

	start := time.Now()
	final, run, err := o.Assess(context.Background(), validRequest())
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if elapsed > 600*time.Millisecond {
		t.Errorf("run took %s, must return promptly after the deadline", elapsed)
	}
	if final.Status != models.RunDegraded {
		t.Errorf("status = %s, want DEGRADED", final.Status)
	}
	if run.Stages[models.StageMarket].State != models.StageDefaulted {
		t.Errorf("market = %s, want DEFAULTED after deadline", run.Stages[models.StageMarket].State)
	}
	// The completed stages keep their live results.
	if run.Stages[models.StageFreshness].State != models.StageSucceeded {
		t.Errorf("freshness = %s, want SUCCEEDED", run.Stages[models.StageFreshness].State)
	}
	if run.Stages[models.StageLogistics].State != models.StageSucceeded {
		t.Errorf("logistics = %s, want SUCCEEDED", run.Stages[models.StageLogistics].State)
	}
	// The defaulted market prices at the crop reference rate.
	if final.Market.BasePriceINR != 45 || !final.Market.FallbackUsed {
		t.Errorf("market default = %+v, want reference-price fallback", final.Market)
	}
}

func TestDeadlineOnFreshnessFailsRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TotalTimeout = 80 * time.Millisecond

	o := NewWithStages(cfg, catalog.NewBuiltin(),
		hangingStage(models.StageFreshness),
		liveMarket(), liveLogistics(), liveWeather(0), nil)

	final, run, err := o.Assess(context.Background(), validRequest())
	if final != nil {
		t.Error("no assessment without freshness")
	}
	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Kind != KindDeadline {
		t.Fatalf("err = %v, want DEADLINE PipelineError", err)
	}
	if run.Status != models.RunFailed {
		t.Errorf("run status = %s, want FAILED", run.Status)
	}
}

func TestStagePanicIsRecovered(t *testing.T) {
	panicky := &stubStage{name: models.StageWeather, fn: func(_ context.Context, _ *models.AssessmentRequest, _ *PriorResults) (StageResult, bool, error) {
		panic("corrupt forecast")
	}}
	o := testOrchestrator(t, liveFreshness(90, models.FreshnessExcellent), liveMarket(), liveLogistics(), panicky, nil)

	final, run, err := o.Assess(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if final.Status != models.RunDegraded {
		t.Errorf("status = %s, want DEGRADED after panic default", final.Status)
	}
	rec := run.Stages[models.StageWeather]
	if rec.State != models.StageDefaulted || !strings.Contains(rec.Error, "panic") {
		t.Errorf("weather record = %+v, want DEFAULTED with panic error", rec)
	}
}

func TestAssessIsDeterministic(t *testing.T) {
	o := testOrchestrator(t, liveFreshness(90, models.FreshnessExcellent), liveMarket(), liveLogistics(), liveWeather(4), nil)

	a, _, err := o.Assess(context.Background(), validRequest())
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := o.Assess(context.Background(), validRequest())
	if err != nil {
		t.Fatal(err)
	}

	if a.AdjustedScore != b.AdjustedScore || a.Confidence != b.Confidence ||
		a.Market.Strategy != b.Market.Strategy || a.Logistics.Mode != b.Logistics.Mode ||
		a.Weather.Risk != b.Weather.Risk || a.Status != b.Status {
		t.Errorf("repeated assessment diverged: %+v vs %+v", a, b)
	}
	if len(a.Recommendations) != len(b.Recommendations) {
		t.Errorf("recommendation lists diverged: %d vs %d", len(a.Recommendations), len(b.Recommendations))
	}
}

func TestAssessDefaultsOptionalFields(t *testing.T) {
	var seen *models.AssessmentRequest
	spy := &stubStage{name: models.StageFreshness, fn: func(_ context.Context, req *models.AssessmentRequest, prior *PriorResults) (StageResult, bool, error) {
		seen = req
		return StageResult{Freshness: &models.FreshnessResult{Score: 80, Level: models.FreshnessExcellent}}, false, nil
	}}
	o := testOrchestrator(t, spy, liveMarket(), liveLogistics(), liveWeather(0), nil)

	req := &models.AssessmentRequest{Crop: "tomato", TemperatureC: 22, HumidityPct: 65, Location: "Mumbai"}
	if _, _, err := o.Assess(context.Background(), req); err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if seen.QuantityKG != models.DefaultQuantityKG || seen.Urgency != models.UrgencyMedium {
		t.Errorf("defaults not applied: qty=%v urgency=%s", seen.QuantityKG, seen.Urgency)
	}
}

// ── End-to-end over the real stages ──

func TestEndToEndPremiumTomato(t *testing.T) {
	highDemand := &staticMarket{snap: &models.MarketSnapshot{
		Crop: "tomato", Location: "Mumbai", PriceINR: 50,
		Demand: models.DemandHigh, Supply: models.SupplyLow,
	}}

	o := NewWithStages(DefaultConfig(), catalog.NewBuiltin(),
		&FreshnessStage{},
		&MarketStage{Source: highDemand},
		&LogisticsStage{Registry: source.NewStaticRegistry(nil)},
		liveWeather(0),
		nil)

	req := validRequest() // 22°C, 65%, 2h, tomato
	final, _, err := o.Assess(context.Background(), req)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}

	if math.Abs(final.Freshness.Score-98.5) > 1e-9 {
		t.Errorf("freshness = %v, want 98.5", final.Freshness.Score)
	}
	if final.Freshness.Level != models.FreshnessExcellent {
		t.Errorf("level = %s, want EXCELLENT", final.Freshness.Level)
	}
	// Fresh stock into a hot market clamps at the multiplier ceiling.
	if final.Market.Multiplier != 1.20 || final.Market.Strategy != models.StrategyPremium {
		t.Errorf("market = mult %v strategy %s, want 1.20 PREMIUM", final.Market.Multiplier, final.Market.Strategy)
	}
	if final.Logistics.Mode != models.ModeStandard {
		t.Errorf("mode = %s, want STANDARD for excellent freshness", final.Logistics.Mode)
	}
	if final.Status != models.RunCompleted {
		t.Errorf("status = %s, want COMPLETED", final.Status)
	}
}

func TestEndToEndCriticalTomato(t *testing.T) {
	o := NewWithStages(DefaultConfig(), catalog.NewBuiltin(),
		&FreshnessStage{},
		&MarketStage{Source: nil}, // reference-price fallback
		&LogisticsStage{Registry: source.NewStaticRegistry(nil)},
		liveWeather(0),
		nil)

	req := &models.AssessmentRequest{
		Crop: "tomato", TemperatureC: 35, HumidityPct: 90, AgeHours: 48,
		QuantityKG: 50, Location: "Mumbai", Urgency: models.UrgencyHigh,
	}
	final, _, err := o.Assess(context.Background(), req)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}

	if math.Abs(final.Freshness.Score-13.333333333333334) > 1e-6 {
		t.Errorf("freshness = %v, want 13.33", final.Freshness.Score)
	}
	if final.Freshness.Level != models.FreshnessCritical {
		t.Errorf("level = %s, want CRITICAL", final.Freshness.Level)
	}
	// Emergency sale cap overrides every other adjustment.
	if final.Market.Multiplier != 0.50 || final.Market.Strategy != models.StrategyClearance {
		t.Errorf("market = mult %v strategy %s, want 0.50 CLEARANCE", final.Market.Multiplier, final.Market.Strategy)
	}
	if final.Logistics.Mode != models.ModeColdChain || final.Logistics.CostMultiplier != 1.5 {
		t.Errorf("logistics = %s/%v, want COLD_CHAIN at 1.5", final.Logistics.Mode, final.Logistics.CostMultiplier)
	}
	// Market fell back to the reference price, so the run is degraded.
	if final.Status != models.RunDegraded {
		t.Errorf("status = %s, want DEGRADED with market fallback", final.Status)
	}
}

type staticMarket struct {
	snap *models.MarketSnapshot
}

func (s *staticMarket) Name() string { return "static" }

func (s *staticMarket) Snapshot(_ context.Context, _, _ string) (*models.MarketSnapshot, error) {
	return s.snap, nil
}

// ── Synthesizer ──

func TestSynthesizerMergesAndOrdersRecommendations(t *testing.T) {
	s := Synthesizer{FallbackConfidence: 0.7}
	run := models.NewWorkflowRun("r1", time.Now())
	for _, rec := range run.Stages {
		rec.State = models.StageSucceeded
	}
	cat := catalog.NewBuiltin()
	profile, _ := cat.Lookup("tomato")

	fresh := &models.FreshnessResult{Score: 55, Level: models.FreshnessFair, Recommendations: []models.Recommendation{
		{Severity: models.SeverityMedium, Message: "sell soon", Source: "freshness"},
	}}
	mkt := &models.MarketResult{BasePriceINR: 45, Multiplier: 1, FinalPriceINR: 45, Strategy: models.StrategyMarketRate, Recommendations: []models.Recommendation{
		{Severity: models.SeverityMedium, Message: "sell soon", Source: "market"}, // duplicate message
		{Severity: models.SeverityLow, Message: "list today", Source: "market"},
	}}
	logi := &models.LogisticsResult{Mode: models.ModeColdChain, CostMultiplier: 1.5, Recommendations: []models.Recommendation{
		{Severity: models.SeverityHigh, Message: "book cold chain", Source: "logistics"},
	}}
	wx := &models.WeatherResult{DegradationDelta: 20, Risk: models.RiskHigh, Source: models.ForecastLive, Recommendations: []models.Recommendation{
		{Severity: models.SeverityHigh, Message: "dispatch before the storm", Source: "weather"},
	}}

	final := s.Synthesize(validRequest(), &profile, run, fresh, mkt, logi, wx)

	if final.AdjustedScore != 35 {
		t.Errorf("adjusted = %v, want 55-20 = 35", final.AdjustedScore)
	}

	msgs := make(map[string]int)
	for _, r := range final.Recommendations {
		msgs[r.Message]++
	}
	if msgs["sell soon"] != 1 {
		t.Errorf("duplicate message kept %d times, want 1", msgs["sell soon"])
	}

	// Severe weather pushes the weather action ahead of the logistics
	// one inside the HIGH band.
	if final.Recommendations[0].Source != "weather" {
		t.Errorf("first recommendation from %s, want weather when risk is HIGH", final.Recommendations[0].Source)
	}
	for i := 1; i < len(final.Recommendations); i++ {
		if models.SeverityRank(final.Recommendations[i].Severity) > models.SeverityRank(final.Recommendations[i-1].Severity) {
			t.Errorf("recommendations out of severity order at %d", i)
		}
	}
}

func TestSynthesizerCrossChecksHighValueOnStandard(t *testing.T) {
	s := Synthesizer{FallbackConfidence: 0.7}
	run := models.NewWorkflowRun("r2", time.Now())
	for _, rec := range run.Stages {
		rec.State = models.StageSucceeded
	}
	cat := catalog.NewBuiltin()
	profile, _ := cat.Lookup("tomato")

	fresh := &models.FreshnessResult{Score: 90, Level: models.FreshnessExcellent}
	mkt := &models.MarketResult{BasePriceINR: 110, Multiplier: 1.1, FinalPriceINR: 121, Strategy: models.StrategyPremium}
	logi := &models.LogisticsResult{Mode: models.ModeStandard, CostMultiplier: 1.0}
	wx := &models.WeatherResult{Risk: models.RiskLow, Source: models.ForecastLive}

	final := s.Synthesize(validRequest(), &profile, run, fresh, mkt, logi, wx)

	var found bool
	for _, r := range final.Recommendations {
		if r.Source == "synthesizer" && strings.Contains(r.Message, "refrigerated") {
			found = true
		}
	}
	if !found {
		t.Error("expected a transport-upgrade recommendation for high-value stock on standard delivery")
	}
}

func TestSynthesizerConfidenceCompounds(t *testing.T) {
	s := Synthesizer{FallbackConfidence: 0.7}
	run := models.NewWorkflowRun("r3", time.Now())
	run.Stages[models.StageFreshness].State = models.StageSucceeded
	run.Stages[models.StageMarket].State = models.StageFellBack
	run.Stages[models.StageLogistics].State = models.StageSucceeded
	run.Stages[models.StageWeather].State = models.StageFellBack

	cat := catalog.NewBuiltin()
	profile, _ := cat.Lookup("tomato")
	fresh := &models.FreshnessResult{Score: 80, Level: models.FreshnessExcellent}
	mkt := &models.MarketResult{FallbackUsed: true, Strategy: models.StrategyMarketRate}
	logi := &models.LogisticsResult{Mode: models.ModeStandard, CostMultiplier: 1.0}
	wx := &models.WeatherResult{FallbackUsed: true, Risk: models.RiskLow, Source: models.ForecastSimulated}

	final := s.Synthesize(validRequest(), &profile, run, fresh, mkt, logi, wx)

	if math.Abs(final.Confidence-0.49) > 1e-9 {
		t.Errorf("confidence = %v, want 0.7*0.7 = 0.49", final.Confidence)
	}
	if final.Status != models.RunDegraded {
		t.Errorf("status = %s, want DEGRADED", final.Status)
	}
}
