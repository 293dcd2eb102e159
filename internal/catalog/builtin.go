package catalog

import "github.com/agrisense-ai/agrisense/pkg/models"

// genericProfile is the fallback for crops not in the table. Bands are
// wide and sensitivities neutral so unknown crops degrade gracefully
// rather than scoring artificially well or badly.
var genericProfile = models.CropProfile{
	Name:               "generic",
	TempMinC:           10,
	TempMaxC:           25,
	TempSpreadC:        10,
	HumidityMinPct:     60,
	HumidityMaxPct:     90,
	HumiditySpread:     20,
	DegradationPerHour: 1.0,
	PriceSensitivity:   1.0,
	WeatherSensitivity: 1.0,
	ReferencePriceINR:  50,
}

// builtinProfiles holds storage parameters for the common mandi crops.
// Bands follow standard post-harvest handling guidance; reference
// prices are indicative wholesale ₹/kg used only as fallbacks.
var builtinProfiles = []models.CropProfile{
	{
		Name:               "tomato",
		TempMinC:           15,
		TempMaxC:           25,
		TempSpreadC:        8,
		HumidityMinPct:     60,
		HumidityMaxPct:     80,
		HumiditySpread:     15,
		DegradationPerHour: 2.5,
		PriceSensitivity:   1.2,
		WeatherSensitivity: 1.5,
		ReferencePriceINR:  45,
	},
	{
		Name:               "potato",
		TempMinC:           7,
		TempMaxC:           12,
		TempSpreadC:        12,
		HumidityMinPct:     85,
		HumidityMaxPct:     95,
		HumiditySpread:     25,
		DegradationPerHour: 0.4,
		PriceSensitivity:   0.8,
		WeatherSensitivity: 0.7,
		ReferencePriceINR:  25,
	},
	{
		Name:               "onion",
		TempMinC:           25,
		TempMaxC:           30,
		TempSpreadC:        10,
		HumidityMinPct:     55,
		HumidityMaxPct:     65,
		HumiditySpread:     12,
		DegradationPerHour: 0.6,
		PriceSensitivity:   1.0,
		WeatherSensitivity: 1.0,
		ReferencePriceINR:  35,
	},
	{
		Name:               "mango",
		TempMinC:           10,
		TempMaxC:           15,
		TempSpreadC:        10,
		HumidityMinPct:     85,
		HumidityMaxPct:     90,
		HumiditySpread:     15,
		DegradationPerHour: 1.5,
		PriceSensitivity:   1.3,
		WeatherSensitivity: 1.2,
		ReferencePriceINR:  120,
	},
	{
		Name:               "banana",
		TempMinC:           13,
		TempMaxC:           15,
		TempSpreadC:        8,
		HumidityMinPct:     90,
		HumidityMaxPct:     95,
		HumiditySpread:     20,
		DegradationPerHour: 2.0,
		PriceSensitivity:   1.1,
		WeatherSensitivity: 1.3,
		ReferencePriceINR:  30,
	},
	{
		Name:               "spinach",
		TempMinC:           0,
		TempMaxC:           5,
		TempSpreadC:        10,
		HumidityMinPct:     90,
		HumidityMaxPct:     95,
		HumiditySpread:     20,
		DegradationPerHour: 4.0,
		PriceSensitivity:   1.4,
		WeatherSensitivity: 2.0,
		ReferencePriceINR:  60,
	},
	{
		Name:               "cauliflower",
		TempMinC:           0,
		TempMaxC:           5,
		TempSpreadC:        10,
		HumidityMinPct:     90,
		HumidityMaxPct:     98,
		HumiditySpread:     20,
		DegradationPerHour: 3.0,
		PriceSensitivity:   1.2,
		WeatherSensitivity: 1.5,
		ReferencePriceINR:  40,
	},
	{
		Name:               "okra",
		TempMinC:           7,
		TempMaxC:           10,
		TempSpreadC:        8,
		HumidityMinPct:     90,
		HumidityMaxPct:     95,
		HumiditySpread:     15,
		DegradationPerHour: 3.5,
		PriceSensitivity:   1.3,
		WeatherSensitivity: 1.6,
		ReferencePriceINR:  55,
	},
	{
		Name:               "brinjal",
		TempMinC:           10,
		TempMaxC:           12,
		TempSpreadC:        10,
		HumidityMinPct:     90,
		HumidityMaxPct:     95,
		HumiditySpread:     15,
		DegradationPerHour: 2.0,
		PriceSensitivity:   1.0,
		WeatherSensitivity: 1.1,
		ReferencePriceINR:  35,
	},
	{
		Name:               "wheat",
		TempMinC:           15,
		TempMaxC:           25,
		TempSpreadC:        15,
		HumidityMinPct:     55,
		HumidityMaxPct:     70,
		HumiditySpread:     20,
		DegradationPerHour: 0.05,
		PriceSensitivity:   0.6,
		WeatherSensitivity: 0.5,
		ReferencePriceINR:  28,
	},
	{
		Name:               "rice",
		TempMinC:           10,
		TempMaxC:           15,
		TempSpreadC:        15,
		HumidityMinPct:     60,
		HumidityMaxPct:     70,
		HumiditySpread:     20,
		DegradationPerHour: 0.05,
		PriceSensitivity:   0.6,
		WeatherSensitivity: 0.5,
		ReferencePriceINR:  45,
	},
}
