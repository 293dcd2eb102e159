// Package freshness implements the freshness scoring model: a pure,
// deterministic function from environmental readings and a crop profile
// to a 0..100 score, a level grade, and handling recommendations.
package freshness

import (
	"math"

	"github.com/agrisense-ai/agrisense/pkg/models"
)

// Factor weights. They sum to 1.0.
const (
	WeightTemperature = 0.30
	WeightHumidity    = 0.40
	WeightAge         = 0.30
)

// Level thresholds on the composite score.
const (
	ThresholdExcellent = 80.0
	ThresholdGood      = 60.0
	ThresholdFair      = 40.0
	ThresholdPoor      = 20.0
)

// Score computes the freshness result for a validated request.
// It never fails: malformed input is rejected by request validation
// before this runs.
func Score(req *models.AssessmentRequest, profile *models.CropProfile) *models.FreshnessResult {
	tempScore := bandScore(req.TemperatureC, profile.TempMinC, profile.TempMaxC, profile.TempSpreadC)
	humScore := bandScore(req.HumidityPct, profile.HumidityMinPct, profile.HumidityMaxPct, profile.HumiditySpread)
	ageScore := ageScore(req.AgeHours, profile.DegradationPerHour)

	score := WeightTemperature*tempScore + WeightHumidity*humScore + WeightAge*ageScore
	level := LevelFor(score)

	return &models.FreshnessResult{
		Score:            score,
		Level:            level,
		TemperatureScore: tempScore,
		HumidityScore:    humScore,
		AgeScore:         ageScore,
		Recommendations:  recommendations(level, tempScore, humScore, ageScore),
	}
}

// LevelFor maps a score to its level using the fixed thresholds.
// Boundaries belong to the higher level (80.0 is EXCELLENT).
func LevelFor(score float64) models.FreshnessLevel {
	switch {
	case score >= ThresholdExcellent:
		return models.FreshnessExcellent
	case score >= ThresholdGood:
		return models.FreshnessGood
	case score >= ThresholdFair:
		return models.FreshnessFair
	case score >= ThresholdPoor:
		return models.FreshnessPoor
	default:
		return models.FreshnessCritical
	}
}

// bandScore scores a reading against an optimal band. Readings inside
// the band score 100; outside, the penalty grows linearly with distance
// from the nearest edge and saturates at 0 beyond the spread.
func bandScore(value, min, max, spread float64) float64 {
	if value >= min && value <= max {
		return 100
	}
	dist := min - value
	if value > max {
		dist = value - max
	}
	if spread <= 0 {
		return 0
	}
	return math.Max(0, 100*(1-dist/spread))
}

// ageScore applies the hourly degradation rate, floored at 0.
func ageScore(ageHours, ratePerHour float64) float64 {
	return math.Max(0, 100-ageHours*ratePerHour)
}

func recommendations(level models.FreshnessLevel, tempScore, humScore, ageScore float64) []models.Recommendation {
	var recs []models.Recommendation
	add := func(sev models.Severity, msg string) {
		recs = append(recs, models.Recommendation{Severity: sev, Message: msg, Source: string(models.StageFreshness)})
	}

	switch level {
	case models.FreshnessCritical:
		add(models.SeverityCritical, "Immediate action required: sell, process, or dispose of stock within hours to avoid total loss.")
		add(models.SeverityHigh, "Use cold-chain transport to prevent further spoilage.")
	case models.FreshnessPoor:
		add(models.SeverityHigh, "Use cold-chain transport to prevent further spoilage.")
		add(models.SeverityHigh, "Prioritize dispatch to the nearest market; shelf life is nearly exhausted.")
	case models.FreshnessExcellent:
		add(models.SeverityLow, "Produce is in peak condition; the premium pricing window is open.")
	}

	if tempScore < 50 {
		add(models.SeverityMedium, "Move stock to temperature-controlled storage matching the crop's optimal band.")
	}
	if humScore < 50 {
		add(models.SeverityMedium, "Adjust storage humidity; current conditions accelerate moisture damage.")
	}
	if ageScore < 50 && level != models.FreshnessCritical && level != models.FreshnessPoor {
		add(models.SeverityMedium, "Stock is aging; schedule dispatch within the next day.")
	}

	return recs
}
