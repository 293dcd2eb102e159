package utils

import (
	"math"
	"strings"
)

// earthRadiusKM is the mean Earth radius used for haversine distance.
const earthRadiusKM = 6371.0

// HaversineKM returns the great-circle distance in kilometres between
// two coordinates. Used by driver-registry adapters to fill candidate
// distances from registered locations; the assessment pipeline itself
// only filters on the supplied distance.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180

	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}

// Coordinates of major mandi cities, keyed by lowercase city name.
var cityCoords = map[string][2]float64{
	"mumbai":    {19.0760, 72.8777},
	"delhi":     {28.7041, 77.1025},
	"pune":      {18.5204, 73.8567},
	"nashik":    {19.9975, 73.7898},
	"nagpur":    {21.1458, 79.0882},
	"bengaluru": {12.9716, 77.5946},
	"bangalore": {12.9716, 77.5946},
	"hyderabad": {17.3850, 78.4867},
	"chennai":   {13.0827, 80.2707},
	"kolkata":   {22.5726, 88.3639},
	"jaipur":    {26.9124, 75.7873},
	"ahmedabad": {23.0225, 72.5714},
	"surat":     {21.1702, 72.8311},
	"indore":    {22.7196, 75.8577},
	"lucknow":   {26.8467, 80.9462},
	"patna":     {25.5941, 85.1376},
	"bhopal":    {23.2599, 77.4126},
}

// LocateCity returns the coordinates for a known city name.
func LocateCity(name string) (lat, lon float64, ok bool) {
	c, found := cityCoords[strings.ToLower(strings.TrimSpace(name))]
	if !found {
		return 0, 0, false
	}
	return c[0], c[1], true
}

// CityDistanceKM returns the haversine distance between two known
// cities. Unknown cities report ok=false; callers decide the fallback.
func CityDistanceKM(a, b string) (float64, bool) {
	lat1, lon1, ok1 := LocateCity(a)
	lat2, lon2, ok2 := LocateCity(b)
	if !ok1 || !ok2 {
		return 0, false
	}
	return HaversineKM(lat1, lon1, lat2, lon2), true
}
