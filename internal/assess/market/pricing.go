// Package market implements the pricing model: freshness, demand, and
// urgency adjustments over a base mandi price, with clamped bands and
// the emergency-sale cap for critical stock.
package market

import (
	"math"

	"github.com/agrisense-ai/agrisense/pkg/models"
	"github.com/agrisense-ai/agrisense/pkg/utils"
)

// Adjustment clamps.
const (
	MaxFreshnessAdj = 0.20
	MaxDemandAdj    = 0.15
	MaxUrgencyAdj   = 0.15
)

// Final multiplier band and the emergency-sale cap.
const (
	MultiplierFloor = 0.70
	MultiplierCeil  = 1.20
	EmergencyCap    = 0.50
)

// Bulk discount: quantities over 100 kg take an additional 5% off,
// applied after clamping and re-clamped to the same band.
const (
	BulkThresholdKG = 100.0
	BulkDiscount    = 0.95
)

// Strategy thresholds on the final multiplier.
const (
	PremiumThreshold    = 1.05
	MarketRateThreshold = 0.95
)

// Price computes the market result. A nil snapshot means the live
// market source was unavailable; the crop's reference price substitutes
// as base and the result is flagged as a fallback. Pricing never fails.
func Price(req *models.AssessmentRequest, fresh *models.FreshnessResult, snap *models.MarketSnapshot, profile *models.CropProfile) *models.MarketResult {
	base := profile.ReferencePriceINR
	demand := models.DemandMedium
	supply := models.SupplyMedium
	fallback := snap == nil

	if snap != nil {
		base = snap.PriceINR
		demand = snap.Demand
		supply = snap.Supply
	}

	freshAdj := clamp(freshnessAdjustment(fresh.Score)*profile.PriceSensitivity, -MaxFreshnessAdj, MaxFreshnessAdj)
	demandAdj := clamp(demandAdjustment(demand, supply), -MaxDemandAdj, MaxDemandAdj)
	urgAdj := clamp(urgencyAdjustment(req.Urgency), -MaxUrgencyAdj, MaxUrgencyAdj)

	mult := clamp(1+freshAdj+demandAdj+urgAdj, MultiplierFloor, MultiplierCeil)

	if req.QuantityKG > BulkThresholdKG {
		mult = clamp(mult*BulkDiscount, MultiplierFloor, MultiplierCeil)
	}

	// Emergency sale: critical stock is cleared regardless of demand.
	if fresh.Level == models.FreshnessCritical {
		mult = math.Min(mult, EmergencyCap)
	}

	strategy := StrategyFor(mult)
	final := base * mult

	return &models.MarketResult{
		BasePriceINR:    base,
		Multiplier:      mult,
		FinalPriceINR:   final,
		Strategy:        strategy,
		Trend:           trend(demand, supply),
		FallbackUsed:    fallback,
		Recommendations: recommendations(strategy, final, fallback),
	}
}

// StrategyFor maps a final multiplier to its strategy label.
func StrategyFor(mult float64) models.PricingStrategy {
	switch {
	case mult > PremiumThreshold:
		return models.StrategyPremium
	case mult >= MarketRateThreshold:
		return models.StrategyMarketRate
	case mult >= MultiplierFloor:
		return models.StrategyDiscount
	default:
		return models.StrategyClearance
	}
}

// freshnessAdjustment is linear in the score: +0.20 at 100, -0.20 at 0,
// crossing zero at 50 (before the profile's price sensitivity scaling).
func freshnessAdjustment(score float64) float64 {
	return (score - 50) / 50 * MaxFreshnessAdj
}

func demandAdjustment(demand models.DemandLevel, supply models.SupplyLevel) float64 {
	adj := 0.0
	switch demand {
	case models.DemandHigh:
		adj += 0.10
	case models.DemandLow:
		adj -= 0.10
	}
	switch supply {
	case models.SupplyLow:
		adj += 0.05
	case models.SupplyHigh:
		adj -= 0.05
	}
	return adj
}

// urgencyAdjustment discounts urgent sales: a farmer who must move
// stock today concedes price for speed.
func urgencyAdjustment(u models.Urgency) float64 {
	switch u {
	case models.UrgencyHigh:
		return -0.10
	case models.UrgencyLow:
		return 0.05
	default:
		return 0
	}
}

func trend(demand models.DemandLevel, supply models.SupplyLevel) string {
	switch {
	case demand == models.DemandHigh && supply != models.SupplyHigh:
		return "rising"
	case demand == models.DemandLow || supply == models.SupplyHigh:
		return "falling"
	default:
		return "stable"
	}
}

func recommendations(strategy models.PricingStrategy, finalPrice float64, fallback bool) []models.Recommendation {
	var recs []models.Recommendation
	add := func(sev models.Severity, msg string) {
		recs = append(recs, models.Recommendation{Severity: sev, Message: msg, Source: string(models.StageMarket)})
	}

	switch strategy {
	case models.StrategyPremium:
		add(models.SeverityLow, "List at "+utils.FormatINR(finalPrice)+"/kg; demand supports a premium over the mandi rate.")
	case models.StrategyDiscount:
		add(models.SeverityMedium, "Price at "+utils.FormatINR(finalPrice)+"/kg to move stock before further freshness loss.")
	case models.StrategyClearance:
		add(models.SeverityHigh, "Emergency sale: clear stock at "+utils.FormatINR(finalPrice)+"/kg or divert to processing.")
	}

	if fallback {
		add(models.SeverityMedium, "Live mandi rates unavailable; pricing is based on the last-known reference price.")
	}
	return recs
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
