package feature

// ─────────────────────────────────────────────────────────────────────────────
// FeatureVector — extractor output
// ─────────────────────────────────────────────────────────────────────────────

// ProximityStats aggregates the facilities of one type around the property.
// Counts are cumulative by distance band (a facility 0.5 km away counts in
// all three bands).  AvgRating defaults to the neutral midpoint of the 1–5
// scale when no facility of the type carries a rating.
type ProximityStats struct {
	Within1KM int     `json:"within_1km"`
	Within3KM int     `json:"within_3km"`
	Within5KM int     `json:"within_5km"`
	AvgRating float64 `json:"avg_rating"`
}

// FeatureVector is the flat numeric representation of a property and its
// surroundings.  Every field holds a documented neutral default when the
// corresponding raw signal was absent, so downstream arithmetic never sees
// missing data; substitutions are reflected in Completeness and the
// Has*Signal provenance flags instead.
//
// A FeatureVector is immutable once returned by the extractor: engines read
// it, none mutate it.
type FeatureVector struct {
	// Physical attributes.  Age is derived as currentYear − yearBuilt,
	// floored at 0.
	Bedrooms       float64 `json:"bedrooms"`
	Bathrooms      float64 `json:"bathrooms"`
	LivingAreaSqft float64 `json:"living_area_sqft"`
	Age            float64 `json:"age"`
	LotSizeAcres   float64 `json:"lot_size_acres"`

	// Location, carried through for the geo recommendation variant.
	// Zero value when the bundle had no location.
	Location GeoPoint `json:"location"`

	// Proximity holds one entry per supported facility type; the extractor
	// always populates all four keys.
	Proximity map[FacilityType]ProximityStats `json:"proximity"`

	// Risk holds the per-hazard annual probability in [0,1]; the extractor
	// always populates all five keys, defaulting absent hazards to 0.
	Risk map[HazardType]float64 `json:"risk"`

	// Safety aggregates, in incidents per 1000 residents per year.
	TotalCrimePer1000    float64 `json:"total_crime_per_1000"`
	ViolentCrimePer1000  float64 `json:"violent_crime_per_1000"`
	PropertyCrimePer1000 float64 `json:"property_crime_per_1000"`
	CrimeSeverity        float64 `json:"crime_severity"`

	// Market indicators, defaults substituted when no market record exists.
	Market MarketRecord `json:"market"`

	// Completeness is the fraction of required fields (bedrooms, bathrooms,
	// living area, year built, latitude, longitude) that were present in the
	// raw bundle.  Immutable provenance; never recomputed downstream.
	Completeness float64 `json:"completeness"`

	// Provenance flags recording whether each signal group was present in
	// the raw bundle (as opposed to substituted defaults).  Consumed by the
	// confidence estimator's feature-quality term.
	HasMarketSignal    bool `json:"has_market_signal"`
	HasProximitySignal bool `json:"has_proximity_signal"`
	HasSafetySignal    bool `json:"has_safety_signal"`

	// Extra carries forward-compatible optional signals that have no typed
	// field.  Engines ignore keys they do not understand.
	Extra map[string]float64 `json:"extra,omitempty"`
}

// HazardMean returns the mean probability across all supported hazard types.
// Absent map entries count as 0 so the result is stable across extractors.
func (v *FeatureVector) HazardMean() float64 {
	if len(HazardTypes) == 0 {
		return 0
	}
	var sum float64
	for _, h := range HazardTypes {
		sum += v.Risk[h]
	}
	return sum / float64(len(HazardTypes))
}

// FacilityCount5KM returns the 5 km-band count for one facility type,
// tolerating a nil or partially populated Proximity map.
func (v *FeatureVector) FacilityCount5KM(t FacilityType) int {
	return v.Proximity[t].Within5KM
}
