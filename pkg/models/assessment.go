// Package models defines the shared domain types for AgriSense:
// assessment requests, per-stage results, the final assessment bundle,
// crop profiles, driver candidates, and workflow run bookkeeping.
package models

import (
	"fmt"
	"time"
)

// Urgency indicates how quickly the farmer needs the produce moved.
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

// FreshnessLevel buckets a freshness score into a human-readable grade.
type FreshnessLevel string

const (
	FreshnessExcellent FreshnessLevel = "EXCELLENT"
	FreshnessGood      FreshnessLevel = "GOOD"
	FreshnessFair      FreshnessLevel = "FAIR"
	FreshnessPoor      FreshnessLevel = "POOR"
	FreshnessCritical  FreshnessLevel = "CRITICAL"
)

// PricingStrategy labels the final price multiplier band.
type PricingStrategy string

const (
	StrategyPremium    PricingStrategy = "PREMIUM"
	StrategyMarketRate PricingStrategy = "MARKET_RATE"
	StrategyDiscount   PricingStrategy = "DISCOUNT"
	StrategyClearance  PricingStrategy = "CLEARANCE"
)

// DeliveryMode is the transport class selected by the logistics stage.
type DeliveryMode string

const (
	ModeColdChain    DeliveryMode = "COLD_CHAIN"
	ModeRefrigerated DeliveryMode = "REFRIGERATED"
	ModeStandard     DeliveryMode = "STANDARD"
)

// RiskLevel grades the weather degradation delta.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Severity orders recommendations for the merged list.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// SeverityRank returns a sortable rank for a severity (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}

// Recommendation is a single actionable suggestion emitted by a stage.
type Recommendation struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Source   string   `json:"source"` // emitting stage: freshness, market, logistics, weather
}

// AssessmentRequest is a single validated measurement to assess.
type AssessmentRequest struct {
	Crop         string  `json:"crop"`
	TemperatureC float64 `json:"temperature_c"`
	HumidityPct  float64 `json:"humidity_pct"`
	AgeHours     float64 `json:"age_hours"`
	QuantityKG   float64 `json:"quantity_kg"`
	Location     string  `json:"location"`
	Urgency      Urgency `json:"urgency"`
}

// Request validation bounds.
const (
	MinTemperatureC = -10.0
	MaxTemperatureC = 60.0
	MinHumidityPct  = 0.0
	MaxHumidityPct  = 100.0

	DefaultQuantityKG = 10.0
)

// Normalize fills in documented defaults for optional fields.
// Age defaults to 0, quantity to 10 kg, urgency to MEDIUM.
func (r *AssessmentRequest) Normalize() {
	if r.QuantityKG == 0 {
		r.QuantityKG = DefaultQuantityKG
	}
	if r.Urgency == "" {
		r.Urgency = UrgencyMedium
	}
}

// Validate checks the request invariants. It must be called (after
// Normalize) before any stage runs; a non-nil error is fatal to the run.
func (r *AssessmentRequest) Validate() error {
	if r.Crop == "" {
		return fmt.Errorf("crop is required")
	}
	if r.Location == "" {
		return fmt.Errorf("location is required")
	}
	if r.TemperatureC < MinTemperatureC || r.TemperatureC > MaxTemperatureC {
		return fmt.Errorf("temperature %.1f°C out of range [%.0f,%.0f]", r.TemperatureC, MinTemperatureC, MaxTemperatureC)
	}
	if r.HumidityPct < MinHumidityPct || r.HumidityPct > MaxHumidityPct {
		return fmt.Errorf("humidity %.1f%% out of range [%.0f,%.0f]", r.HumidityPct, MinHumidityPct, MaxHumidityPct)
	}
	if r.AgeHours < 0 {
		return fmt.Errorf("age %.1fh must be >= 0", r.AgeHours)
	}
	if r.QuantityKG <= 0 {
		return fmt.Errorf("quantity %.1fkg must be > 0", r.QuantityKG)
	}
	switch r.Urgency {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
	default:
		return fmt.Errorf("unknown urgency %q", r.Urgency)
	}
	return nil
}

// FreshnessResult is the output of the freshness stage. It is produced
// once per request and never mutated afterward.
type FreshnessResult struct {
	Score            float64          `json:"score"` // 0..100
	Level            FreshnessLevel   `json:"level"`
	TemperatureScore float64          `json:"temperature_score"`
	HumidityScore    float64          `json:"humidity_score"`
	AgeScore         float64          `json:"age_score"`
	Recommendations  []Recommendation `json:"recommendations"`
}

// DemandLevel and SupplyLevel grade a market snapshot.
type DemandLevel string

const (
	DemandLow    DemandLevel = "LOW"
	DemandMedium DemandLevel = "MEDIUM"
	DemandHigh   DemandLevel = "HIGH"
)

type SupplyLevel string

const (
	SupplyLow    SupplyLevel = "LOW"
	SupplyMedium SupplyLevel = "MEDIUM"
	SupplyHigh   SupplyLevel = "HIGH"
)

// MarketSnapshot is the live market state for a crop at a location,
// as supplied by the market collaborator.
type MarketSnapshot struct {
	Crop      string      `json:"crop"`
	Location  string      `json:"location"`
	PriceINR  float64     `json:"price_inr"` // per kg
	Demand    DemandLevel `json:"demand"`
	Supply    SupplyLevel `json:"supply"`
	Timestamp time.Time   `json:"timestamp"`
}

// MarketResult is the output of the market pricing stage.
type MarketResult struct {
	BasePriceINR    float64          `json:"base_price_inr"`
	Multiplier      float64          `json:"multiplier"`
	FinalPriceINR   float64          `json:"final_price_inr"`
	Strategy        PricingStrategy  `json:"strategy"`
	Trend           string           `json:"trend"` // rising, stable, falling
	FallbackUsed    bool             `json:"fallback_used"`
	Recommendations []Recommendation `json:"recommendations"`
}

// ForecastSource tags where a forecast came from.
type ForecastSource string

const (
	ForecastLive      ForecastSource = "live"
	ForecastSimulated ForecastSource = "simulated"
)

// ForecastPoint is one hourly forecast sample.
type ForecastPoint struct {
	TemperatureC    float64 `json:"temperature_c"`
	HumidityPct     float64 `json:"humidity_pct"`
	PrecipitationMM float64 `json:"precipitation_mm"`
	WindSpeedKPH    float64 `json:"wind_speed_kph"`
	Condition       string  `json:"condition"`
}

// Forecast is the weather outlook for a location over a lead window.
type Forecast struct {
	Location  string          `json:"location"`
	LeadHours int             `json:"lead_hours"`
	Points    []ForecastPoint `json:"points"`
	Source    ForecastSource  `json:"source"`
}

// WeatherResult is the output of the weather assessment stage.
type WeatherResult struct {
	DegradationDelta float64          `json:"degradation_delta"` // percentage points, >= 0
	Risk             RiskLevel        `json:"risk"`
	Source           ForecastSource   `json:"source"`
	FallbackUsed     bool             `json:"fallback_used"`
	Recommendations  []Recommendation `json:"recommendations"`
}

// FinalAssessment is the synthesized decision bundle. It is created
// exactly once per completed workflow and never mutated afterward.
type FinalAssessment struct {
	RunID           string           `json:"run_id"`
	Crop            string           `json:"crop"`
	Location        string           `json:"location"`
	AdjustedScore   float64          `json:"adjusted_score"` // freshness score minus weather delta, floored at 0
	Confidence      float64          `json:"confidence"`     // 0..1
	Recommendations []Recommendation `json:"recommendations"`

	// Per-stage results retained for audit. A nil-free bundle: stages
	// that failed are substituted with neutral defaults and Partial set.
	Freshness *FreshnessResult `json:"freshness"`
	Market    *MarketResult    `json:"market"`
	Logistics *LogisticsResult `json:"logistics"`
	Weather   *WeatherResult   `json:"weather"`

	Partial     bool      `json:"partial"` // at least one stage substituted with a default
	Status      RunStatus `json:"status"`  // COMPLETED or DEGRADED
	GeneratedAt time.Time `json:"generated_at"`
}
