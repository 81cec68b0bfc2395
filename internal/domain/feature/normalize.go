package feature

// ─────────────────────────────────────────────────────────────────────────────
// Normalization — FeatureVector → NormalizedFeatures
// ─────────────────────────────────────────────────────────────────────────────

// Fixed normalization ranges.  Where a theoretical range is known (hazard
// probabilities) it is used directly; for open-ended fields the ranges below
// cap the scale so one extreme listing cannot dominate every score.
const (
	// CrimeScalePer1000 is the total crime rate at which the safety score
	// bottoms out.
	CrimeScalePer1000 = 50.0

	maxBedroomsScale   = 8.0
	maxBathroomsScale  = 6.0
	maxLivingAreaScale = 6000.0
	maxAgeScale        = 100.0

	maxSchoolCountScale    = 10.0
	maxHospitalCountScale  = 5.0
	maxRetailCountScale    = 10.0
	maxTransportCountScale = 10.0
)

// NormalizedFeatures is the [0,1] rescaling of a FeatureVector with the
// convention that 1.0 is always "more favorable" (crime and hazard signals
// are inverted).  Created once per FeatureVector and never mutated.
type NormalizedFeatures struct {
	Bedrooms   float64 `json:"bedrooms"`
	Bathrooms  float64 `json:"bathrooms"`
	LivingArea float64 `json:"living_area"`

	// AgeInv is 1 for a new build, falling linearly to 0 at 100 years.
	AgeInv float64 `json:"age_inv"`

	// School blends access (count within 5 km) and average quality rating.
	School float64 `json:"school"`

	// Hospital is hospital access within 5 km.
	Hospital float64 `json:"hospital"`

	// Retail is retail access within 5 km.
	Retail float64 `json:"retail"`

	// EmployerProximity approximates commute access from transit density
	// within 3 km.
	EmployerProximity float64 `json:"employer_proximity"`

	// CrimeInv is the inverted, scaled total crime rate (1 = safest).
	CrimeInv float64 `json:"crime_inv"`

	// HazardInv is 1 minus the mean hazard probability (1 = safest).
	HazardInv float64 `json:"hazard_inv"`

	// FloodInv is 1 minus the flood probability alone; carried separately
	// because flood exposure dominates lending decisions.
	FloodInv float64 `json:"flood_inv"`

	// Value is the market-attractiveness signal derived from price trends
	// and the demand/supply balance; 0.5 is neutral.
	Value float64 `json:"value"`
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Normalize rescales a FeatureVector into NormalizedFeatures.  The mapping is
// deterministic and side-effect-free; the input vector is not modified.
func Normalize(fv *FeatureVector) NormalizedFeatures {
	school := fv.Proximity[FacilitySchool]
	schoolAccess := clamp01(float64(school.Within5KM) / maxSchoolCountScale)
	schoolRating := clamp01((school.AvgRating - 1) / 4)

	return NormalizedFeatures{
		Bedrooms:   clamp01(fv.Bedrooms / maxBedroomsScale),
		Bathrooms:  clamp01(fv.Bathrooms / maxBathroomsScale),
		LivingArea: clamp01(fv.LivingAreaSqft / maxLivingAreaScale),
		AgeInv:     clamp01(1 - fv.Age/maxAgeScale),

		School:            0.5*schoolAccess + 0.5*schoolRating,
		Hospital:          clamp01(float64(fv.Proximity[FacilityHospital].Within5KM) / maxHospitalCountScale),
		Retail:            clamp01(float64(fv.Proximity[FacilityMall].Within5KM) / maxRetailCountScale),
		EmployerProximity: clamp01(float64(fv.Proximity[FacilityTransport].Within3KM) / maxTransportCountScale),

		CrimeInv:  1 - clamp01(fv.TotalCrimePer1000/CrimeScalePer1000),
		HazardInv: 1 - clamp01(fv.HazardMean()),
		FloodInv:  1 - clamp01(fv.Risk[HazardFlood]),

		Value: clamp01(0.5 + fv.Market.Trend1Y + (fv.Market.DemandIndex-fv.Market.SupplyIndex)/200),
	}
}
