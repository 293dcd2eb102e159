package models

// CropProfile holds the static physical and economic parameters for a
// crop type. Profiles are loaded once at process start and are read-only
// thereafter; lookups are case-insensitive on the crop name.
type CropProfile struct {
	Name string `json:"name" mapstructure:"name"`

	// Optimal storage bands. Readings inside the band score 100;
	// the penalty grows with distance from the nearest band edge and
	// saturates at 0 beyond the spread.
	TempMinC       float64 `json:"temp_min_c"       mapstructure:"temp_min_c"`
	TempMaxC       float64 `json:"temp_max_c"       mapstructure:"temp_max_c"`
	TempSpreadC    float64 `json:"temp_spread_c"    mapstructure:"temp_spread_c"`
	HumidityMinPct float64 `json:"humidity_min_pct" mapstructure:"humidity_min_pct"`
	HumidityMaxPct float64 `json:"humidity_max_pct" mapstructure:"humidity_max_pct"`
	HumiditySpread float64 `json:"humidity_spread"  mapstructure:"humidity_spread"`

	// DegradationPerHour is the freshness loss in percentage points
	// per hour of age.
	DegradationPerHour float64 `json:"degradation_per_hour" mapstructure:"degradation_per_hour"`

	// PriceSensitivity scales how strongly freshness moves the price.
	PriceSensitivity float64 `json:"price_sensitivity" mapstructure:"price_sensitivity"`

	// WeatherSensitivity scales the weather degradation delta.
	WeatherSensitivity float64 `json:"weather_sensitivity" mapstructure:"weather_sensitivity"`

	// ReferencePriceINR is the last-known wholesale price per kg, used
	// when the live market snapshot is unavailable and for the
	// high-value delivery-mode floor.
	ReferencePriceINR float64 `json:"reference_price_inr" mapstructure:"reference_price_inr"`
}

// InTempBand reports whether t lies inside the optimal temperature band.
func (p *CropProfile) InTempBand(t float64) bool {
	return t >= p.TempMinC && t <= p.TempMaxC
}

// InHumidityBand reports whether h lies inside the optimal humidity band.
func (p *CropProfile) InHumidityBand(h float64) bool {
	return h >= p.HumidityMinPct && h <= p.HumidityMaxPct
}
