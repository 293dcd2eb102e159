package source

import (
	"context"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/agrisense-ai/agrisense/pkg/models"
	"github.com/agrisense-ai/agrisense/pkg/utils"
)

// SimForecast is the weather fallback: a deterministic forecast drawn
// from historical monthly baselines, used when the live provider is
// unavailable. It never fails, and always tags its output as simulated.
type SimForecast struct {
	// now is injectable for tests; defaults to utils.NowIST.
	now func() time.Time
}

// NewSimForecast creates the simulated forecast provider.
func NewSimForecast() *SimForecast {
	return &SimForecast{now: utils.NowIST}
}

// Name returns the data source name.
func (s *SimForecast) Name() string { return "Seasonal Baseline" }

// Monthly climate baselines for the Indian plains, January..December.
// Coastal districts take a humidity and precipitation uplift on top.
var (
	baselineTempC   = []float64{18, 21, 26, 31, 34, 33, 30, 29, 29, 27, 22, 19}
	baselineHumPct  = []float64{55, 50, 45, 40, 45, 70, 85, 85, 80, 65, 55, 55}
	baselinePrecip  = []float64{1, 1, 1, 2, 4, 12, 20, 18, 12, 5, 2, 1} // mm/day
	baselineWindKPH = []float64{8, 9, 11, 13, 15, 18, 16, 14, 12, 9, 8, 8}
)

var coastalCities = map[string]bool{
	"mumbai":  true,
	"chennai": true,
	"kolkata": true,
	"surat":   true,
}

// Forecast builds a simulated forecast for the location. The monthly
// baseline is smoothed over the adjacent months so early- and
// late-month requests do not jump across season boundaries.
func (s *SimForecast) Forecast(_ context.Context, location string, leadHours int) (*models.Forecast, error) {
	if leadHours <= 0 {
		leadHours = 24
	}
	month := int(s.now().Month()) - 1

	point := models.ForecastPoint{
		TemperatureC:    smoothed(baselineTempC, month),
		HumidityPct:     smoothed(baselineHumPct, month),
		PrecipitationMM: smoothed(baselinePrecip, month),
		WindSpeedKPH:    smoothed(baselineWindKPH, month),
		Condition:       "seasonal baseline",
	}

	if coastalCities[strings.ToLower(strings.TrimSpace(location))] {
		point.HumidityPct = minF(point.HumidityPct+10, 100)
		point.PrecipitationMM *= 1.3
	}

	// One point per 6-hour block across the lead window.
	n := leadHours / 6
	if n < 1 {
		n = 1
	}
	points := make([]models.ForecastPoint, n)
	for i := range points {
		points[i] = point
	}

	return &models.Forecast{
		Location:  location,
		LeadHours: leadHours,
		Points:    points,
		Source:    models.ForecastSimulated,
	}, nil
}

// smoothed returns the mean of the month's baseline and its two
// neighbors (wrapping across year end).
func smoothed(baseline []float64, month int) float64 {
	prev := baseline[(month+11)%12]
	cur := baseline[month]
	next := baseline[(month+1)%12]
	m, err := stats.Mean(stats.Float64Data{prev, cur, next})
	if err != nil {
		return cur
	}
	return m
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
