// Package logistics implements delivery-mode selection and driver
// ranking: a single-step capacity/rating/vehicle heuristic over the
// candidates supplied by the external driver registry.
package logistics

import (
	"sort"

	"github.com/agrisense-ai/agrisense/pkg/models"
)

// Mode selection thresholds on the freshness score.
const (
	ColdChainBelow   = 40.0
	RefrigeratedUpTo = 70.0
)

// Cost multipliers per delivery mode.
const (
	ColdChainCost    = 1.5
	RefrigeratedCost = 1.3
	StandardCost     = 1.0
)

// HighValuePriceINR is the per-kg price above which a crop must travel
// at minimum refrigerated, regardless of freshness.
const HighValuePriceINR = 100.0

// Driver eligibility rules.
const (
	CapacityBuffer   = 1.10 // required headroom over the load quantity
	MinPremiumRating = 3.0  // floor for premium deliveries
	MaxDistanceKM    = 500.0
)

// Composite score weights. The proximity weight is reserved for a
// future proximity factor and is deliberately zero; the weights are
// not renormalized to 100% because that would change rank ordering
// relative to the documented factors.
const (
	WeightCapacity     = 0.30
	WeightRating       = 0.20
	WeightVehicle      = 0.20
	WeightAvailability = 0.10
	WeightProximity    = 0.20 // reserved
	proximityScore     = 0.0
)

// MaxRankedDrivers caps the returned ranking; the list still always
// contains at least 3 entries when 3 or more candidates are eligible.
const MaxRankedDrivers = 5

// SelectMode picks the delivery mode and its cost multiplier from the
// freshness score, with the high-value floor applied on top.
func SelectMode(freshScore, referencePriceINR float64) (models.DeliveryMode, float64) {
	var mode models.DeliveryMode
	switch {
	case freshScore < ColdChainBelow:
		mode = models.ModeColdChain
	case freshScore <= RefrigeratedUpTo:
		mode = models.ModeRefrigerated
	default:
		mode = models.ModeStandard
	}

	// High-value crops never travel uncooled.
	if referencePriceINR > HighValuePriceINR && mode == models.ModeStandard {
		mode = models.ModeRefrigerated
	}

	switch mode {
	case models.ModeColdChain:
		return mode, ColdChainCost
	case models.ModeRefrigerated:
		return mode, RefrigeratedCost
	default:
		return mode, StandardCost
	}
}

// IsPremium reports whether a delivery counts as premium: cold-chain
// transport or a high-value crop. Premium deliveries require drivers
// rated 3.0 or better.
func IsPremium(mode models.DeliveryMode, referencePriceINR float64) bool {
	return mode == models.ModeColdChain || referencePriceINR > HighValuePriceINR
}

// Select builds the logistics result from the registry candidates.
// It filters, scores, and ranks; too few eligible candidates sets the
// insufficient-supply flag but is never a failure.
func Select(req *models.AssessmentRequest, fresh *models.FreshnessResult, profile *models.CropProfile, candidates []models.DriverCandidate, fallback bool) *models.LogisticsResult {
	mode, cost := SelectMode(fresh.Score, profile.ReferencePriceINR)
	premium := IsPremium(mode, profile.ReferencePriceINR)

	var eligible []models.DriverScore
	for _, c := range candidates {
		if !Eligible(c, req.QuantityKG, premium) {
			continue
		}
		eligible = append(eligible, ScoreDriver(c, req.QuantityKG, mode))
	}

	rank(eligible)

	insufficient := len(eligible) < 3
	if len(eligible) > MaxRankedDrivers {
		eligible = eligible[:MaxRankedDrivers]
	}

	return &models.LogisticsResult{
		Mode:               mode,
		CostMultiplier:     cost,
		Drivers:            eligible,
		InsufficientSupply: insufficient,
		FallbackUsed:       fallback,
		Recommendations:    recommendations(mode, insufficient, len(eligible)),
	}
}

// Eligible applies the hard filters: availability, capacity headroom,
// distance, and the premium rating floor.
func Eligible(c models.DriverCandidate, quantityKG float64, premium bool) bool {
	if c.Status != models.DriverAvailable {
		return false
	}
	if c.CapacityKG < quantityKG*CapacityBuffer {
		return false
	}
	if c.DistanceKM > MaxDistanceKM {
		return false
	}
	if premium && c.Rating < MinPremiumRating {
		return false
	}
	return true
}

// ScoreDriver computes the composite score and its factor breakdown
// for an eligible candidate.
func ScoreDriver(c models.DriverCandidate, quantityKG float64, mode models.DeliveryMode) models.DriverScore {
	required := quantityKG * CapacityBuffer

	// Capacity match rewards a tight fit: a lorry ten times the load
	// scores lower than a van that just clears the buffer.
	capScore := 0.0
	if c.CapacityKG > 0 {
		capScore = required / c.CapacityKG
		if capScore > 1 {
			capScore = 1
		}
	}

	ratingScore := c.Rating / 5
	if ratingScore > 1 {
		ratingScore = 1
	}

	vehicleScore := vehicleMatch(mode, c.Vehicle)

	// Filtered candidates are by definition available.
	availScore := 1.0

	return models.DriverScore{
		Driver:            c,
		CapacityScore:     capScore,
		RatingScore:       ratingScore,
		VehicleScore:      vehicleScore,
		AvailabilityScore: availScore,
		ProximityScore:    proximityScore,
		Score: WeightCapacity*capScore +
			WeightRating*ratingScore +
			WeightVehicle*vehicleScore +
			WeightAvailability*availScore +
			WeightProximity*proximityScore,
	}
}

// vehicleMatch scores how well a vehicle serves the selected mode.
// Exact match is 1.0; over-provisioned cooling still serves lower
// modes at a discount; under-provisioned cooling scores 0.
func vehicleMatch(mode models.DeliveryMode, v models.VehicleType) float64 {
	switch mode {
	case models.ModeColdChain:
		if v == models.VehicleColdChain {
			return 1.0
		}
		return 0
	case models.ModeRefrigerated:
		switch v {
		case models.VehicleRefrigerated:
			return 1.0
		case models.VehicleColdChain:
			return 0.8
		default:
			return 0
		}
	default: // STANDARD
		switch v {
		case models.VehicleOpen:
			return 1.0
		default:
			return 0.7
		}
	}
}

// rank sorts descending by score; ties break by higher capacity, then
// by driver identifier, for deterministic ordering.
func rank(drivers []models.DriverScore) {
	sort.Slice(drivers, func(i, j int) bool {
		a, b := drivers[i], drivers[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Driver.CapacityKG != b.Driver.CapacityKG {
			return a.Driver.CapacityKG > b.Driver.CapacityKG
		}
		return a.Driver.ID < b.Driver.ID
	})
}

func recommendations(mode models.DeliveryMode, insufficient bool, count int) []models.Recommendation {
	var recs []models.Recommendation
	add := func(sev models.Severity, msg string) {
		recs = append(recs, models.Recommendation{Severity: sev, Message: msg, Source: string(models.StageLogistics)})
	}

	switch mode {
	case models.ModeColdChain:
		add(models.SeverityHigh, "Cold-chain transport is mandatory for this consignment; do not load onto open vehicles.")
	case models.ModeRefrigerated:
		add(models.SeverityMedium, "Book a refrigerated vehicle; ambient transport will cut shelf life en route.")
	}

	if count == 0 {
		add(models.SeverityHigh, "No eligible drivers in range; widen the search radius or split the consignment.")
	} else if insufficient {
		add(models.SeverityMedium, "Fewer than 3 eligible drivers available; confirm a booking early to avoid losing the slot.")
	}
	return recs
}
