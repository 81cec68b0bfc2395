package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseVector(t *testing.T) *FeatureVector {
	t.Helper()
	fv, err := testExtractor().Extract(&SignalBundle{})
	require.NoError(t, err)
	return fv
}

func TestNormalizeZeroHazardsAreFullyFavorable(t *testing.T) {
	fv := baseVector(t)

	nf := Normalize(fv)
	assert.Equal(t, 1.0, nf.HazardInv)
	assert.Equal(t, 1.0, nf.FloodInv)
}

func TestNormalizeCrimeInversion(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		wantInv  float64
	}{
		{name: "no crime is safest", total: 0, wantInv: 1.0},
		{name: "half scale", total: 25, wantInv: 0.5},
		{name: "at scale bottoms out", total: 50, wantInv: 0.0},
		{name: "beyond scale clamps", total: 120, wantInv: 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fv := baseVector(t)
			fv.TotalCrimePer1000 = tt.total
			nf := Normalize(fv)
			assert.InDelta(t, tt.wantInv, nf.CrimeInv, 1e-12)
		})
	}
}

func TestNormalizeSchoolBlendsAccessAndRating(t *testing.T) {
	fv := baseVector(t)
	fv.Proximity[FacilitySchool] = ProximityStats{Within5KM: 5, AvgRating: 5.0}

	nf := Normalize(fv)
	// access = 5/10 = 0.5, rating = (5-1)/4 = 1.0, blend = 0.75.
	assert.InDelta(t, 0.75, nf.School, 1e-12)
}

func TestNormalizeAgeInversion(t *testing.T) {
	fv := baseVector(t)
	fv.Age = 25
	assert.InDelta(t, 0.75, Normalize(fv).AgeInv, 1e-12)

	fv.Age = 150
	assert.Equal(t, 0.0, Normalize(fv).AgeInv)
}

func TestNormalizeNeutralMarketIsNeutralValue(t *testing.T) {
	fv := baseVector(t)
	// Defaults: zero trend, demand == supply.
	assert.InDelta(t, 0.5, Normalize(fv).Value, 1e-12)

	fv.Market.Trend1Y = 0.2
	fv.Market.DemandIndex = 80
	fv.Market.SupplyIndex = 40
	// 0.5 + 0.2 + 40/200 = 0.9.
	assert.InDelta(t, 0.9, Normalize(fv).Value, 1e-12)
}

func TestNormalizeClampsOpenEndedFields(t *testing.T) {
	fv := baseVector(t)
	fv.Bedrooms = 20
	fv.LivingAreaSqft = 50000

	nf := Normalize(fv)
	assert.Equal(t, 1.0, nf.Bedrooms)
	assert.Equal(t, 1.0, nf.LivingArea)
}

func TestNormalizeIsDeterministic(t *testing.T) {
	fv := baseVector(t)
	fv.TotalCrimePer1000 = 17.3
	fv.Risk[HazardFlood] = 0.42

	first := Normalize(fv)
	second := Normalize(fv)
	assert.Equal(t, first, second)
}
