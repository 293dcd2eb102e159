package pipeline

import (
	"context"

	"github.com/agrisense-ai/agrisense/internal/assess/freshness"
	"github.com/agrisense-ai/agrisense/internal/assess/logistics"
	"github.com/agrisense-ai/agrisense/internal/assess/market"
	"github.com/agrisense-ai/agrisense/internal/assess/weather"
	"github.com/agrisense-ai/agrisense/internal/source"
	"github.com/agrisense-ai/agrisense/pkg/models"
)

// ── Freshness stage ──

// FreshnessStage wraps the pure freshness scorer. It performs no I/O
// and has no fallback: validation has already rejected malformed input,
// so any failure here is an execution fault and fatal to the run.
type FreshnessStage struct{}

func (s *FreshnessStage) Name() models.StageName { return models.StageFreshness }

func (s *FreshnessStage) Run(_ context.Context, req *models.AssessmentRequest, prior *PriorResults) (StageResult, bool, error) {
	res := freshness.Score(req, &prior.Profile)
	return StageResult{Freshness: res}, false, nil
}

// ── Market stage ──

// MarketStage prices the consignment against the live mandi snapshot,
// falling back to the crop's reference price when the source is
// unavailable. The stage itself never fails on missing data.
type MarketStage struct {
	Source source.MarketSource // nil runs permanently on reference prices
}

func (s *MarketStage) Name() models.StageName { return models.StageMarket }

func (s *MarketStage) Run(ctx context.Context, req *models.AssessmentRequest, prior *PriorResults) (StageResult, bool, error) {
	var snap *models.MarketSnapshot
	if s.Source != nil {
		got, err := s.Source.Snapshot(ctx, req.Crop, req.Location)
		switch {
		case err == nil:
			snap = got
		case ctx.Err() != nil:
			// Deadline or cancellation, not data unavailability.
			return StageResult{}, false, ctx.Err()
		default:
			// Unreachable source: fall back, do not fail the stage.
			snap = nil
		}
	}

	res := market.Price(req, prior.Freshness, snap, &prior.Profile)
	return StageResult{Market: res}, res.FallbackUsed, nil
}

// ── Logistics stage ──

// LogisticsStage selects the delivery mode and ranks registry
// candidates. An unreachable registry degrades to an empty candidate
// list with the fallback flag set.
type LogisticsStage struct {
	Registry source.DriverRegistry // nil means no fleet data at all
}

func (s *LogisticsStage) Name() models.StageName { return models.StageLogistics }

func (s *LogisticsStage) Run(ctx context.Context, req *models.AssessmentRequest, prior *PriorResults) (StageResult, bool, error) {
	var candidates []models.DriverCandidate
	fallback := s.Registry == nil

	if s.Registry != nil {
		got, err := s.Registry.Query(ctx, req.Location, req.QuantityKG*logistics.CapacityBuffer)
		switch {
		case err == nil:
			candidates = got
		case ctx.Err() != nil:
			return StageResult{}, false, ctx.Err()
		default:
			fallback = true
		}
	}

	res := logistics.Select(req, prior.Freshness, &prior.Profile, candidates, fallback)
	return StageResult{Logistics: res}, fallback, nil
}

// ── Weather stage ──

// WeatherStage assesses degradation risk from the live forecast, or
// from the seasonal baseline simulation when the live provider is
// unavailable. With a working simulator this stage always produces a
// result.
type WeatherStage struct {
	Live source.ForecastProvider // nil runs permanently on the simulator
	Sim  source.ForecastProvider
}

// forecastLeadHours is the outlook window assessed per run.
const forecastLeadHours = 24

func (s *WeatherStage) Name() models.StageName { return models.StageWeather }

func (s *WeatherStage) Run(ctx context.Context, req *models.AssessmentRequest, prior *PriorResults) (StageResult, bool, error) {
	var forecast *models.Forecast

	if s.Live != nil {
		got, err := s.Live.Forecast(ctx, req.Location, forecastLeadHours)
		switch {
		case err == nil:
			forecast = got
		case ctx.Err() != nil:
			return StageResult{}, false, ctx.Err()
		}
	}

	if forecast == nil {
		got, err := s.Sim.Forecast(ctx, req.Location, forecastLeadHours)
		if err != nil {
			return StageResult{}, false, err
		}
		forecast = got
	}

	res := weather.Assess(&prior.Profile, forecast)
	return StageResult{Weather: res}, res.FallbackUsed, nil
}
