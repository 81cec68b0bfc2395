package feature

import (
	"fmt"
	"time"

	"github.com/turtacn/LandArea-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/LandArea-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Defaults
// ─────────────────────────────────────────────────────────────────────────────

// Neutral defaults substituted for absent raw signals.  Substitution is
// recorded in Completeness and the provenance flags, never in the values.
const (
	DefaultBedrooms       = 3
	DefaultBathrooms      = 2.0
	DefaultLivingAreaSqft = 1500.0
	DefaultYearBuilt      = 2000
	DefaultLotSizeAcres   = 0.25

	// NeutralRating is the midpoint of the 1–5 facility rating scale.
	NeutralRating = 3.0

	// Market indicator defaults, whole USD for price.
	DefaultMarketPricePerSqft = 100.0
	DefaultMarketTrend        = 0.0
	DefaultMarketDemandIndex  = 50.0
	DefaultMarketSupplyIndex  = 50.0
)

// requiredFieldCount is the denominator of the completeness fraction:
// bedrooms, bathrooms, living area, year built, latitude, longitude.
const requiredFieldCount = 6

// ─────────────────────────────────────────────────────────────────────────────
// Extractor interface
// ─────────────────────────────────────────────────────────────────────────────

// Extractor converts a raw signal bundle into a FeatureVector.
type Extractor interface {
	// Extract validates the bundle and produces a fully populated
	// FeatureVector.  Malformed inputs (unknown facility, crime, or hazard
	// types, out-of-range coordinates or probabilities, negative distances
	// or rates) are rejected with a validation error before any defaulting
	// occurs.  Absent optional signals never cause an error.
	Extract(bundle *SignalBundle) (*FeatureVector, error)
}

// DefaultExtractor is the standard Extractor implementation.
type DefaultExtractor struct {
	logger logging.Logger

	// yearNow supplies the current year for age derivation; injected so
	// extraction stays deterministic under test.
	yearNow func() int
}

// ExtractorOption customizes a DefaultExtractor.
type ExtractorOption func(*DefaultExtractor)

// WithYearNow overrides the current-year source, fixing age derivation for
// deterministic tests.
func WithYearNow(f func() int) ExtractorOption {
	return func(e *DefaultExtractor) { e.yearNow = f }
}

// NewExtractor constructs a DefaultExtractor.  A nil logger falls back to the
// no-op logger.
func NewExtractor(logger logging.Logger, opts ...ExtractorOption) *DefaultExtractor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	e := &DefaultExtractor{
		logger:  logger.Named("feature"),
		yearNow: func() int { return time.Now().Year() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ─────────────────────────────────────────────────────────────────────────────
// Extraction
// ─────────────────────────────────────────────────────────────────────────────

// Extract implements Extractor.
func (e *DefaultExtractor) Extract(bundle *SignalBundle) (*FeatureVector, error) {
	if bundle == nil {
		return nil, apperrors.InvalidParam("signal bundle must not be nil")
	}
	if err := e.validate(bundle); err != nil {
		return nil, err
	}

	fv := &FeatureVector{
		Proximity: make(map[FacilityType]ProximityStats, len(FacilityTypes)),
		Risk:      make(map[HazardType]float64, len(HazardTypes)),
	}

	present := 0
	present += e.extractPhysical(bundle, fv)
	if bundle.Location != nil {
		fv.Location = *bundle.Location
		present += 2 // latitude and longitude
	}
	e.extractProximity(bundle, fv)
	e.extractSafety(bundle, fv)
	e.extractRisk(bundle, fv)
	e.extractMarket(bundle, fv)

	fv.Completeness = float64(present) / float64(requiredFieldCount)

	e.logger.Debug("feature vector extracted",
		logging.Float64("completeness", fv.Completeness),
		logging.Bool("has_market", fv.HasMarketSignal),
		logging.Bool("has_proximity", fv.HasProximitySignal),
		logging.Bool("has_safety", fv.HasSafetySignal),
	)
	return fv, nil
}

// validate rejects malformed inputs before any defaulting.
func (e *DefaultExtractor) validate(bundle *SignalBundle) error {
	if bundle.Location != nil {
		if err := bundle.Location.Validate(); err != nil {
			return err
		}
	}
	if a := bundle.Attributes.LivingAreaSqft; a != nil && *a <= 0 {
		return apperrors.InvalidParam("living area must be positive").
			WithDetail(fmt.Sprintf("living_area_sqft=%v", *a))
	}
	if b := bundle.Attributes.Bedrooms; b != nil && *b < 0 {
		return apperrors.InvalidParam("bedrooms must be non-negative")
	}
	if b := bundle.Attributes.Bathrooms; b != nil && *b < 0 {
		return apperrors.InvalidParam("bathrooms must be non-negative")
	}
	for _, f := range bundle.Facilities {
		if _, err := ParseFacilityType(string(f.Type)); err != nil {
			return err
		}
		if f.DistanceKM < 0 {
			return apperrors.InvalidParam("facility distance must be non-negative").
				WithDetail(fmt.Sprintf("type=%s distance_km=%v", f.Type, f.DistanceKM))
		}
	}
	for _, c := range bundle.Crimes {
		if _, err := ParseCrimeType(string(c.Type)); err != nil {
			return err
		}
		if c.RatePer1000 < 0 {
			return apperrors.InvalidParam("crime rate must be non-negative").
				WithDetail(fmt.Sprintf("type=%s rate=%v", c.Type, c.RatePer1000))
		}
	}
	for _, h := range bundle.Hazards {
		if _, err := ParseHazardType(string(h.Type)); err != nil {
			return err
		}
		if h.Probability < 0 || h.Probability > 1 {
			return apperrors.InvalidParam("hazard probability must be in [0,1]").
				WithDetail(fmt.Sprintf("type=%s probability=%v", h.Type, h.Probability))
		}
	}
	return nil
}

// extractPhysical fills the physical attribute fields and returns the number
// of required physical fields that were present in the bundle.
func (e *DefaultExtractor) extractPhysical(bundle *SignalBundle, fv *FeatureVector) int {
	present := 0
	if v := bundle.Attributes.Bedrooms; v != nil {
		fv.Bedrooms = float64(*v)
		present++
	} else {
		fv.Bedrooms = DefaultBedrooms
	}
	if v := bundle.Attributes.Bathrooms; v != nil {
		fv.Bathrooms = *v
		present++
	} else {
		fv.Bathrooms = DefaultBathrooms
	}
	if v := bundle.Attributes.LivingAreaSqft; v != nil {
		fv.LivingAreaSqft = *v
		present++
	} else {
		fv.LivingAreaSqft = DefaultLivingAreaSqft
	}
	yearBuilt := DefaultYearBuilt
	if v := bundle.Attributes.YearBuilt; v != nil {
		yearBuilt = *v
		present++
	}
	age := e.yearNow() - yearBuilt
	if age < 0 {
		age = 0
	}
	fv.Age = float64(age)
	if v := bundle.Attributes.LotSizeAcres; v != nil {
		fv.LotSizeAcres = *v
	} else {
		fv.LotSizeAcres = DefaultLotSizeAcres
	}
	return present
}

// extractProximity fills the distance-banded facility counters and average
// ratings.  All four facility types are always populated; types with no
// rated facility get the neutral midpoint rating.
func (e *DefaultExtractor) extractProximity(bundle *SignalBundle, fv *FeatureVector) {
	type acc struct {
		stats     ProximityStats
		ratingSum float64
		ratingN   int
	}
	accs := make(map[FacilityType]*acc, len(FacilityTypes))
	for _, t := range FacilityTypes {
		accs[t] = &acc{}
	}
	for _, f := range bundle.Facilities {
		a := accs[f.Type]
		if f.DistanceKM <= 1 {
			a.stats.Within1KM++
		}
		if f.DistanceKM <= 3 {
			a.stats.Within3KM++
		}
		if f.DistanceKM <= 5 {
			a.stats.Within5KM++
		}
		if f.Rating != nil {
			a.ratingSum += *f.Rating
			a.ratingN++
		}
	}
	for _, t := range FacilityTypes {
		a := accs[t]
		if a.ratingN > 0 {
			a.stats.AvgRating = a.ratingSum / float64(a.ratingN)
		} else {
			a.stats.AvgRating = NeutralRating
		}
		fv.Proximity[t] = a.stats
	}
	fv.HasProximitySignal = len(bundle.Facilities) > 0
}

// extractSafety sums crime rates into aggregate and category buckets and
// averages severity across records.
func (e *DefaultExtractor) extractSafety(bundle *SignalBundle, fv *FeatureVector) {
	var severitySum float64
	for _, c := range bundle.Crimes {
		fv.TotalCrimePer1000 += c.RatePer1000
		if c.Type.IsViolent() {
			fv.ViolentCrimePer1000 += c.RatePer1000
		} else {
			fv.PropertyCrimePer1000 += c.RatePer1000
		}
		severitySum += c.Severity
	}
	if n := len(bundle.Crimes); n > 0 {
		fv.CrimeSeverity = severitySum / float64(n)
		fv.HasSafetySignal = true
	}
}

// extractRisk maps hazard records into the fixed-size risk vector, defaulting
// absent hazard types to 0.  Duplicate records for a type keep the maximum.
func (e *DefaultExtractor) extractRisk(bundle *SignalBundle, fv *FeatureVector) {
	for _, t := range HazardTypes {
		fv.Risk[t] = 0
	}
	for _, h := range bundle.Hazards {
		if h.Probability > fv.Risk[h.Type] {
			fv.Risk[h.Type] = h.Probability
		}
	}
}

// extractMarket pulls market indicators, substituting documented defaults
// when no market record exists.
func (e *DefaultExtractor) extractMarket(bundle *SignalBundle, fv *FeatureVector) {
	if bundle.Market != nil {
		fv.Market = *bundle.Market
		fv.HasMarketSignal = true
		return
	}
	fv.Market = MarketRecord{
		PricePerSqft: DefaultMarketPricePerSqft,
		Trend6M:      DefaultMarketTrend,
		Trend1Y:      DefaultMarketTrend,
		DemandIndex:  DefaultMarketDemandIndex,
		SupplyIndex:  DefaultMarketSupplyIndex,
	}
}
