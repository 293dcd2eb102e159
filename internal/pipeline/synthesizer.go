package pipeline

import (
	"math"
	"sort"
	"time"

	"github.com/agrisense-ai/agrisense/internal/assess/logistics"
	"github.com/agrisense-ai/agrisense/pkg/models"
	"github.com/agrisense-ai/agrisense/pkg/utils"
)

// Synthesizer merges the four stage results into the final assessment.
// It never fails: stages that produced nothing are substituted with
// neutral defaults, at a confidence penalty.
type Synthesizer struct {
	// FallbackConfidence is the per-stage confidence factor applied for
	// every stage that fell back or was defaulted. Live stages count 1.0.
	FallbackConfidence float64
}

// Synthesize builds the final assessment bundle. The freshness result
// is mandatory; the other three may be nil and are defaulted in place.
// The run's stage records are consulted for the confidence product and
// updated to DEFAULTED where a substitute was built here.
func (s *Synthesizer) Synthesize(req *models.AssessmentRequest, profile *models.CropProfile, run *models.WorkflowRun, fresh *models.FreshnessResult, mkt *models.MarketResult, logi *models.LogisticsResult, wx *models.WeatherResult) *models.FinalAssessment {
	if mkt == nil {
		mkt = s.defaultMarket(profile)
		markDefaulted(run, models.StageMarket)
	}
	if logi == nil {
		logi = s.defaultLogistics(fresh, profile)
		markDefaulted(run, models.StageLogistics)
	}
	if wx == nil {
		wx = s.defaultWeather()
		markDefaulted(run, models.StageWeather)
	}

	adjusted := math.Max(0, fresh.Score-wx.DegradationDelta)
	confidence := s.confidence(run)

	recs := s.mergeRecommendations(fresh, mkt, logi, wx)

	partial := false
	for _, rec := range run.Stages {
		if rec.State == models.StageDefaulted || rec.State == models.StageSkipped {
			partial = true
		}
	}

	status := models.RunCompleted
	if partial || len(run.DegradedStages()) > 0 {
		status = models.RunDegraded
	}

	return &models.FinalAssessment{
		RunID:           run.ID,
		Crop:            req.Crop,
		Location:        req.Location,
		AdjustedScore:   adjusted,
		Confidence:      confidence,
		Recommendations: recs,
		Freshness:       fresh,
		Market:          mkt,
		Logistics:       logi,
		Weather:         wx,
		Partial:         partial,
		Status:          status,
		GeneratedAt:     time.Now().UTC(),
	}
}

// confidence is the product of per-stage factors: 1.0 for a stage that
// succeeded on live data, FallbackConfidence for one that fell back or
// was defaulted or skipped.
func (s *Synthesizer) confidence(run *models.WorkflowRun) float64 {
	conf := 1.0
	for _, name := range []models.StageName{models.StageFreshness, models.StageMarket, models.StageLogistics, models.StageWeather} {
		rec := run.Stages[name]
		if rec == nil {
			continue
		}
		switch rec.State {
		case models.StageFellBack, models.StageDefaulted, models.StageSkipped:
			conf *= s.FallbackConfidence
		}
	}
	return conf
}

// defaultMarket prices at the reference rate with a neutral multiplier.
func (s *Synthesizer) defaultMarket(profile *models.CropProfile) *models.MarketResult {
	return &models.MarketResult{
		BasePriceINR:  profile.ReferencePriceINR,
		Multiplier:    1.0,
		FinalPriceINR: profile.ReferencePriceINR,
		Strategy:      models.StrategyMarketRate,
		Trend:         "stable",
		FallbackUsed:  true,
		Recommendations: []models.Recommendation{{
			Severity: models.SeverityMedium,
			Message:  "Market analysis unavailable; price shown is the reference rate for this crop.",
			Source:   string(models.StageMarket),
		}},
	}
}

// defaultLogistics keeps the mode decision, which needs only the
// freshness score, but reports no ranked drivers.
func (s *Synthesizer) defaultLogistics(fresh *models.FreshnessResult, profile *models.CropProfile) *models.LogisticsResult {
	mode, cost := logistics.SelectMode(fresh.Score, profile.ReferencePriceINR)
	return &models.LogisticsResult{
		Mode:               mode,
		CostMultiplier:     cost,
		Drivers:            nil,
		InsufficientSupply: true,
		FallbackUsed:       true,
		Recommendations: []models.Recommendation{{
			Severity: models.SeverityMedium,
			Message:  "Driver matching unavailable; arrange " + string(mode) + " transport manually.",
			Source:   string(models.StageLogistics),
		}},
	}
}

// defaultWeather assumes no additional degradation.
func (s *Synthesizer) defaultWeather() *models.WeatherResult {
	return &models.WeatherResult{
		DegradationDelta: 0,
		Risk:             models.RiskLow,
		Source:           models.ForecastSimulated,
		FallbackUsed:     true,
		Recommendations: []models.Recommendation{{
			Severity: models.SeverityMedium,
			Message:  "Weather assessment unavailable; monitor local conditions before dispatch.",
			Source:   string(models.StageWeather),
		}},
	}
}

// mergeRecommendations concatenates, cross-checks, dedupes, and orders
// the stage recommendations. Ordering is by severity descending; within
// a severity, weather and logistics lead when conditions are severe,
// since those are the time-critical actions.
func (s *Synthesizer) mergeRecommendations(fresh *models.FreshnessResult, mkt *models.MarketResult, logi *models.LogisticsResult, wx *models.WeatherResult) []models.Recommendation {
	var all []models.Recommendation
	all = append(all, fresh.Recommendations...)
	all = append(all, mkt.Recommendations...)
	all = append(all, logi.Recommendations...)
	all = append(all, wx.Recommendations...)

	// Cross-stage check the stages cannot do themselves: a consignment
	// priced above the high-value threshold moving on an open vehicle.
	if mkt.FinalPriceINR > logistics.HighValuePriceINR && logi.Mode == models.ModeStandard {
		all = append(all, models.Recommendation{
			Severity: models.SeverityHigh,
			Message:  "Final price " + utils.FormatINR(mkt.FinalPriceINR) + "/kg warrants refrigerated transport; upgrade from standard delivery.",
			Source:   "synthesizer",
		})
	}

	// Dedupe on message, first occurrence wins.
	seen := make(map[string]bool, len(all))
	recs := all[:0]
	for _, r := range all {
		if seen[r.Message] {
			continue
		}
		seen[r.Message] = true
		recs = append(recs, r)
	}

	severe := wx.Risk == models.RiskHigh || wx.Risk == models.RiskCritical ||
		logi.Mode == models.ModeColdChain

	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		ra, rb := models.SeverityRank(a.Severity), models.SeverityRank(b.Severity)
		if ra != rb {
			return ra > rb
		}
		if severe {
			// Time-critical sources float to the top of their band.
			pa, pb := sourcePriority(a.Source), sourcePriority(b.Source)
			if pa != pb {
				return pa > pb
			}
		}
		return false
	})
	return recs
}

func sourcePriority(source string) int {
	switch source {
	case string(models.StageWeather):
		return 2
	case string(models.StageLogistics):
		return 1
	default:
		return 0
	}
}

func markDefaulted(run *models.WorkflowRun, name models.StageName) {
	if rec := run.Stages[name]; rec != nil && rec.State != models.StageSkipped {
		rec.State = models.StageDefaulted
	}
}
