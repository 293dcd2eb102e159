// Package weather implements the weather degradation model: forecast
// conditions and crop sensitivity to a freshness degradation delta and
// a risk grade.
package weather

import (
	"math"

	"github.com/agrisense-ai/agrisense/pkg/models"
)

// Impact coefficients on the averaged forecast window.
const (
	PrecipCoeff   = 0.35 // per mm of precipitation
	WindCoeff     = 0.20 // per kph above the calm threshold
	WindCalmKPH   = 15.0
	HumidityCoeff = 0.10 // per point of deviation from the optimal band
)

// Risk thresholds on the degradation delta.
const (
	RiskMediumAt   = 5.0
	RiskHighAt     = 15.0
	RiskCriticalAt = 30.0
)

// Assess computes the weather result for a forecast window. The delta
// is always >= 0; the synthesizer subtracts it from the freshness score
// with a floor at 0. Callers guarantee a forecast with at least one
// point (the orchestrator substitutes a simulated one when the live
// source is unavailable).
func Assess(profile *models.CropProfile, forecast *models.Forecast) *models.WeatherResult {
	precip, wind, humidity := averages(forecast.Points)

	humDev := bandDeviation(humidity, profile.HumidityMinPct, profile.HumidityMaxPct)

	raw := PrecipCoeff*precip + WindCoeff*math.Max(0, wind-WindCalmKPH) + HumidityCoeff*humDev
	delta := math.Max(0, profile.WeatherSensitivity*raw)

	risk := RiskFor(delta)
	fallback := forecast.Source == models.ForecastSimulated

	return &models.WeatherResult{
		DegradationDelta: delta,
		Risk:             risk,
		Source:           forecast.Source,
		FallbackUsed:     fallback,
		Recommendations:  recommendations(risk, fallback),
	}
}

// RiskFor maps a degradation delta to its risk level.
func RiskFor(delta float64) models.RiskLevel {
	switch {
	case delta < RiskMediumAt:
		return models.RiskLow
	case delta < RiskHighAt:
		return models.RiskMedium
	case delta < RiskCriticalAt:
		return models.RiskHigh
	default:
		return models.RiskCritical
	}
}

func averages(points []models.ForecastPoint) (precip, wind, humidity float64) {
	if len(points) == 0 {
		return 0, 0, 0
	}
	for _, p := range points {
		precip += p.PrecipitationMM
		wind += p.WindSpeedKPH
		humidity += p.HumidityPct
	}
	n := float64(len(points))
	return precip / n, wind / n, humidity / n
}

// bandDeviation returns the distance of a value from an interval,
// 0 when inside it.
func bandDeviation(v, min, max float64) float64 {
	if v < min {
		return min - v
	}
	if v > max {
		return v - max
	}
	return 0
}

func recommendations(risk models.RiskLevel, fallback bool) []models.Recommendation {
	var recs []models.Recommendation
	add := func(sev models.Severity, msg string) {
		recs = append(recs, models.Recommendation{Severity: sev, Message: msg, Source: string(models.StageWeather)})
	}

	switch risk {
	case models.RiskCritical:
		add(models.SeverityCritical, "Severe weather inbound: dispatch immediately or move stock under hard cover.")
	case models.RiskHigh:
		add(models.SeverityHigh, "Accelerate dispatch; the weather window closes within the forecast period.")
	case models.RiskMedium:
		add(models.SeverityMedium, "Cover loads in transit; rain or wind is expected on the route.")
	}

	if fallback {
		add(models.SeverityMedium, "Live forecast unavailable; risk is estimated from seasonal baselines.")
	}
	return recs
}
