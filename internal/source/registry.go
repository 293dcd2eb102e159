package source

import (
	"context"
	"strings"

	"github.com/agrisense-ai/agrisense/pkg/models"
	"github.com/agrisense-ai/agrisense/pkg/utils"
)

// StaticRegistry is an in-memory DriverRegistry. It backs the CLI's
// offline mode and tests, and doubles as the seed data for demos.
type StaticRegistry struct {
	drivers []models.DriverCandidate
}

// NewStaticRegistry creates a registry over the given drivers. A nil
// list loads the built-in seed fleet.
func NewStaticRegistry(drivers []models.DriverCandidate) *StaticRegistry {
	if drivers == nil {
		drivers = seedFleet()
	}
	return &StaticRegistry{drivers: drivers}
}

// Name returns the data source name.
func (r *StaticRegistry) Name() string { return "Static Driver Registry" }

// Query returns candidates with capacity headroom for the load, with
// DistanceKM filled in from registered locations.
func (r *StaticRegistry) Query(_ context.Context, location string, minCapacityKG float64) ([]models.DriverCandidate, error) {
	var out []models.DriverCandidate
	for _, d := range r.drivers {
		if d.CapacityKG < minCapacityKG {
			continue
		}
		c := d
		c.DistanceKM = registeredDistanceKM(c.Location, location)
		out = append(out, c)
	}
	return out, nil
}

// registeredDistanceKM derives the candidate distance from registered
// location data. Same city is a short local haul; unknown pairs are
// treated as out of range rather than guessed at.
func registeredDistanceKM(driverLoc, targetLoc string) float64 {
	if d, ok := utils.CityDistanceKM(driverLoc, targetLoc); ok {
		return d
	}
	if strings.EqualFold(strings.TrimSpace(driverLoc), strings.TrimSpace(targetLoc)) {
		return 25
	}
	return 9999
}

// seedFleet is the built-in demo fleet spread across the major mandi cities.
func seedFleet() []models.DriverCandidate {
	return []models.DriverCandidate{
		{ID: "drv-001", Name: "Ravi Transport", CapacityKG: 500, Rating: 4.6, Vehicle: models.VehicleColdChain, Status: models.DriverAvailable, Location: "Mumbai"},
		{ID: "drv-002", Name: "Sharma Logistics", CapacityKG: 1500, Rating: 4.2, Vehicle: models.VehicleRefrigerated, Status: models.DriverAvailable, Location: "Mumbai"},
		{ID: "drv-003", Name: "Patil Carriers", CapacityKG: 800, Rating: 3.8, Vehicle: models.VehicleOpen, Status: models.DriverAvailable, Location: "Pune"},
		{ID: "drv-004", Name: "Deshmukh Freight", CapacityKG: 2000, Rating: 4.9, Vehicle: models.VehicleColdChain, Status: models.DriverAvailable, Location: "Nashik"},
		{ID: "drv-005", Name: "Kumar Roadways", CapacityKG: 300, Rating: 2.7, Vehicle: models.VehicleOpen, Status: models.DriverAvailable, Location: "Mumbai"},
		{ID: "drv-006", Name: "Gupta Movers", CapacityKG: 1200, Rating: 4.0, Vehicle: models.VehicleRefrigerated, Status: models.DriverOnTrip, Location: "Mumbai"},
		{ID: "drv-007", Name: "Singh Haulage", CapacityKG: 900, Rating: 3.4, Vehicle: models.VehicleOpen, Status: models.DriverAvailable, Location: "Delhi"},
		{ID: "drv-008", Name: "Verma Cold Lines", CapacityKG: 600, Rating: 4.4, Vehicle: models.VehicleColdChain, Status: models.DriverAvailable, Location: "Pune"},
		{ID: "drv-009", Name: "Joshi Transport", CapacityKG: 400, Rating: 3.1, Vehicle: models.VehicleRefrigerated, Status: models.DriverOffline, Location: "Mumbai"},
		{ID: "drv-010", Name: "Iyer Freightways", CapacityKG: 1000, Rating: 4.1, Vehicle: models.VehicleOpen, Status: models.DriverAvailable, Location: "Surat"},
	}
}
