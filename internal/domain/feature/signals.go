// Package feature turns raw per-location signal bundles into the flat,
// normalized feature vectors consumed by the valuation, scoring,
// recommendation, and explainability engines.
package feature

import (
	"fmt"

	apperrors "github.com/turtacn/LandArea-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Geography
// ─────────────────────────────────────────────────────────────────────────────

// GeoPoint is a WGS-84 coordinate pair in decimal degrees.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate rejects coordinates outside the valid WGS-84 ranges.
func (p GeoPoint) Validate() error {
	if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
		return apperrors.New(apperrors.ErrCodeInvalidCoordinates,
			apperrors.DefaultMessageForCode(apperrors.ErrCodeInvalidCoordinates)).
			WithDetail(fmt.Sprintf("lat=%v lon=%v", p.Latitude, p.Longitude))
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Property attributes
// ─────────────────────────────────────────────────────────────────────────────

// PropertyAttributes are the caller-supplied physical attributes of the
// property under analysis.  Pointer fields distinguish "absent" from zero:
// absent fields are substituted with documented neutral defaults during
// extraction, and the substitution is recorded in the vector's completeness,
// never in the feature values themselves.
type PropertyAttributes struct {
	Bedrooms       *int     `json:"bedrooms,omitempty"`
	Bathrooms      *float64 `json:"bathrooms,omitempty"`
	LivingAreaSqft *float64 `json:"living_area_sqft,omitempty"`
	YearBuilt      *int     `json:"year_built,omitempty"`
	LotSizeAcres   *float64 `json:"lot_size_acres,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Facilities
// ─────────────────────────────────────────────────────────────────────────────

// FacilityType identifies a category of nearby amenity.
type FacilityType string

const (
	FacilitySchool    FacilityType = "school"
	FacilityHospital  FacilityType = "hospital"
	FacilityMall      FacilityType = "mall"
	FacilityTransport FacilityType = "transport"
)

// FacilityTypes lists every supported facility type in stable order.
var FacilityTypes = []FacilityType{FacilitySchool, FacilityHospital, FacilityMall, FacilityTransport}

// ParseFacilityType converts a string into a FacilityType, rejecting unknown
// values with a typed validation error.
func ParseFacilityType(s string) (FacilityType, error) {
	switch FacilityType(s) {
	case FacilitySchool, FacilityHospital, FacilityMall, FacilityTransport:
		return FacilityType(s), nil
	}
	return "", apperrors.New(apperrors.ErrCodeUnknownFacilityType,
		apperrors.DefaultMessageForCode(apperrors.ErrCodeUnknownFacilityType)).
		WithDetail(s)
}

// Facility is one nearby amenity with its great-circle distance from the
// property and an optional quality rating on a 1–5 scale.
type Facility struct {
	Type       FacilityType `json:"type"`
	DistanceKM float64      `json:"distance_km"`
	Rating     *float64     `json:"rating,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Crime
// ─────────────────────────────────────────────────────────────────────────────

// CrimeType identifies a crime category in the safety signal.
type CrimeType string

const (
	CrimeAssault   CrimeType = "assault"
	CrimeRobbery   CrimeType = "robbery"
	CrimeMurder    CrimeType = "murder"
	CrimeTheft     CrimeType = "theft"
	CrimeBurglary  CrimeType = "burglary"
	CrimeVandalism CrimeType = "vandalism"
)

// ParseCrimeType converts a string into a CrimeType, rejecting unknown values.
func ParseCrimeType(s string) (CrimeType, error) {
	switch CrimeType(s) {
	case CrimeAssault, CrimeRobbery, CrimeMurder, CrimeTheft, CrimeBurglary, CrimeVandalism:
		return CrimeType(s), nil
	}
	return "", apperrors.New(apperrors.ErrCodeUnknownCrimeType,
		apperrors.DefaultMessageForCode(apperrors.ErrCodeUnknownCrimeType)).
		WithDetail(s)
}

// IsViolent reports whether the crime type belongs to the violent category;
// everything else is a property crime.
func (c CrimeType) IsViolent() bool {
	switch c {
	case CrimeAssault, CrimeRobbery, CrimeMurder:
		return true
	}
	return false
}

// CrimeRecord is one crime-category observation for the surrounding area.
// RatePer1000 is incidents per 1000 residents per year; Severity is a 0–10
// severity index for the category.
type CrimeRecord struct {
	Type        CrimeType `json:"type"`
	RatePer1000 float64   `json:"rate_per_1000"`
	Severity    float64   `json:"severity"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Hazards
// ─────────────────────────────────────────────────────────────────────────────

// HazardType identifies a natural-hazard category.
type HazardType string

const (
	HazardFlood      HazardType = "flood"
	HazardEarthquake HazardType = "earthquake"
	HazardHurricane  HazardType = "hurricane"
	HazardWildfire   HazardType = "wildfire"
	HazardTornado    HazardType = "tornado"
)

// HazardTypes lists every supported hazard type in stable order.
var HazardTypes = []HazardType{HazardFlood, HazardEarthquake, HazardHurricane, HazardWildfire, HazardTornado}

// ParseHazardType converts a string into a HazardType, rejecting unknown values.
func ParseHazardType(s string) (HazardType, error) {
	switch HazardType(s) {
	case HazardFlood, HazardEarthquake, HazardHurricane, HazardWildfire, HazardTornado:
		return HazardType(s), nil
	}
	return "", apperrors.New(apperrors.ErrCodeUnknownHazardType,
		apperrors.DefaultMessageForCode(apperrors.ErrCodeUnknownHazardType)).
		WithDetail(s)
}

// HazardRecord is one hazard observation.  Probability is the annual
// occurrence probability in [0,1]; hazard types with no record default to 0.
type HazardRecord struct {
	Type        HazardType `json:"type"`
	Probability float64    `json:"probability"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Market
// ─────────────────────────────────────────────────────────────────────────────

// MarketRecord carries the local market indicators for the property's area.
// All currency values are whole USD.
type MarketRecord struct {
	PricePerSqft float64 `json:"price_per_sqft"`
	Trend6M      float64 `json:"trend_6m"`
	Trend1Y      float64 `json:"trend_1y"`
	DemandIndex  float64 `json:"demand_index"`
	SupplyIndex  float64 `json:"supply_index"`
}

// ─────────────────────────────────────────────────────────────────────────────
// SignalBundle — extractor input
// ─────────────────────────────────────────────────────────────────────────────

// SignalBundle is the raw, per-location input of the feature extractor.
// Every slice and the Market pointer may be empty or nil; extraction
// substitutes documented neutral defaults instead of failing.
type SignalBundle struct {
	Location   *GeoPoint          `json:"location,omitempty"`
	Attributes PropertyAttributes `json:"attributes"`
	Facilities []Facility         `json:"facilities,omitempty"`
	Crimes     []CrimeRecord      `json:"crimes,omitempty"`
	Hazards    []HazardRecord     `json:"hazards,omitempty"`
	Market     *MarketRecord      `json:"market,omitempty"`
}
