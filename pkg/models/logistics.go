package models

// VehicleType classifies a driver's vehicle for delivery-mode matching.
type VehicleType string

const (
	VehicleColdChain    VehicleType = "COLD_CHAIN_TRUCK"
	VehicleRefrigerated VehicleType = "REFRIGERATED_VAN"
	VehicleOpen         VehicleType = "OPEN_TRUCK"
)

// DriverStatus is the availability state reported by the registry.
type DriverStatus string

const (
	DriverAvailable DriverStatus = "AVAILABLE"
	DriverOnTrip    DriverStatus = "ON_TRIP"
	DriverOffline   DriverStatus = "OFFLINE"
)

// DriverCandidate is one entry from the external driver registry.
// DistanceKM is supplied by the registry from its registered location
// data; the pipeline only filters and ranks on it.
type DriverCandidate struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	CapacityKG float64      `json:"capacity_kg"`
	Rating     float64      `json:"rating"` // 0..5
	Vehicle    VehicleType  `json:"vehicle"`
	Status     DriverStatus `json:"status"`
	Location   string       `json:"location"`
	DistanceKM float64      `json:"distance_km"`
}

// DriverScore is a ranked driver with its composite score and the
// factor breakdown behind it.
type DriverScore struct {
	Driver            DriverCandidate `json:"driver"`
	Score             float64         `json:"score"` // 0..1
	CapacityScore     float64         `json:"capacity_score"`
	RatingScore       float64         `json:"rating_score"`
	VehicleScore      float64         `json:"vehicle_score"`
	AvailabilityScore float64         `json:"availability_score"`
	ProximityScore    float64         `json:"proximity_score"` // reserved, always 0 for now
}

// LogisticsResult is the output of the logistics selection stage.
type LogisticsResult struct {
	Mode           DeliveryMode  `json:"mode"`
	CostMultiplier float64       `json:"cost_multiplier"`
	Drivers        []DriverScore `json:"drivers"` // descending composite score

	// InsufficientSupply is set when fewer than 3 eligible candidates
	// exist in the registry. It is informational, not a failure.
	InsufficientSupply bool             `json:"insufficient_supply"`
	FallbackUsed       bool             `json:"fallback_used"`
	Recommendations    []Recommendation `json:"recommendations"`
}
