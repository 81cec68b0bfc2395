package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LandArea-Intelligence/internal/domain/explain"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/feature"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/recommend"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/scoring"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/valuation"
	"github.com/turtacn/LandArea-Intelligence/internal/testutil"
	apperrors "github.com/turtacn/LandArea-Intelligence/pkg/errors"
)

func intPtr(v int) *int         { return &v }
func f64Ptr(v float64) *float64 { return &v }

func testBundle() *feature.SignalBundle {
	return &feature.SignalBundle{
		Location: &feature.GeoPoint{Latitude: 40.7, Longitude: -74.0},
		Attributes: feature.PropertyAttributes{
			Bedrooms:       intPtr(3),
			Bathrooms:      f64Ptr(2),
			LivingAreaSqft: f64Ptr(1500),
			YearBuilt:      intPtr(2001),
		},
		Facilities: []feature.Facility{
			{Type: feature.FacilitySchool, DistanceKM: 0.8, Rating: f64Ptr(4.5)},
			{Type: feature.FacilityHospital, DistanceKM: 2.5},
			{Type: feature.FacilityTransport, DistanceKM: 0.4},
		},
		Crimes: []feature.CrimeRecord{
			{Type: feature.CrimeTheft, RatePer1000: 8, Severity: 3},
		},
		Hazards: []feature.HazardRecord{
			{Type: feature.HazardFlood, Probability: 0.05},
		},
		Market: &feature.MarketRecord{
			PricePerSqft: 220, Trend1Y: 0.04, DemandIndex: 60, SupplyIndex: 45,
		},
	}
}

func testCorpusItem(id string, nf feature.NormalizedFeatures, lat, lon float64) recommend.CorpusItem {
	return recommend.CorpusItem{
		ID:         id,
		Vector:     &feature.FeatureVector{Location: feature.GeoPoint{Latitude: lat, Longitude: lon}},
		Normalized: nf,
	}
}

func corpusOf(t *testing.T, items ...recommend.CorpusItem) *recommend.Corpus {
	t.Helper()
	c, err := recommend.NewCorpus(items)
	require.NoError(t, err)
	return c
}

func serviceWith(t *testing.T, ec *EngineContext) *AnalysisService {
	t.Helper()
	return NewAnalysisService(nil, NewContextHolder(ec), nil, nil)
}

func TestAnalyzeFullPipelineHeuristicOnly(t *testing.T) {
	svc := serviceWith(t, nil)

	res, err := svc.Analyze(context.Background(), &Request{Bundle: testBundle()})
	require.NoError(t, err)

	assert.NotEmpty(t, res.AnalysisID)
	assert.Equal(t, "2.0.0", res.EngineVersion)

	require.NotNil(t, res.Valuation)
	assert.Equal(t, valuation.MethodHeuristic, res.Valuation.Method)
	assert.Greater(t, res.Valuation.PointEstimate, 0.0)
	assert.GreaterOrEqual(t, res.Valuation.Uncertainty, 0.0)

	assert.GreaterOrEqual(t, res.ConfidenceLevel, 0.1)
	assert.LessOrEqual(t, res.ConfidenceLevel, 1.0)
	assert.Equal(t, res.ConfidenceLevel, res.Valuation.Confidence)

	require.NotNil(t, res.Score)
	assert.GreaterOrEqual(t, res.Score.Overall, 0.0)
	assert.LessOrEqual(t, res.Score.Overall, 100.0)

	require.NotNil(t, res.Explanation)
	assert.Equal(t, explain.TypeRuleBasedFallback, res.Explanation.Type)
	assert.NotEmpty(t, res.ScoreBreakdown)

	// No corpus loaded: flagged, not failed.
	assert.Contains(t, res.Warnings, "recommendation corpus is empty")
	assert.Empty(t, res.Recommendations)

	assert.NotZero(t, res.InvestmentAction)
	assert.Greater(t, res.ProcessingTime.Nanoseconds(), int64(0))
}

func TestAnalyzeWithCorpusAttachesRecommendations(t *testing.T) {
	nf := feature.NormalizedFeatures{
		Bedrooms: 0.4, Bathrooms: 0.35, LivingArea: 0.25,
		School: 0.7, CrimeInv: 0.8, HazardInv: 0.95,
	}
	ec := &EngineContext{
		Corpus:  corpusOf(t, testCorpusItem("p1", nf, 40.7, -74), testCorpusItem("p2", nf, 40.8, -74)),
		Version: "corpus-2026-08",
	}
	svc := serviceWith(t, ec)

	res, err := svc.Analyze(context.Background(), &Request{Bundle: testBundle(), TopK: 5})
	require.NoError(t, err)

	assert.Equal(t, "2.0.0+corpus-2026-08", res.EngineVersion)
	require.Len(t, res.Recommendations, 2)
	assert.Equal(t, 1, res.Recommendations[0].Rank)
	assert.Equal(t, 2, res.Recommendations[1].Rank)

	// Fewer eligible candidates than topK: flagged, no padding.
	found := false
	for _, w := range res.Warnings {
		if w == "corpus has only 2 eligible candidates for topK=5" {
			found = true
		}
	}
	assert.True(t, found, "expected shortfall warning, got %v", res.Warnings)
}

func TestAnalyzeIncludeToggles(t *testing.T) {
	svc := serviceWith(t, nil)

	res, err := svc.Analyze(context.Background(), &Request{
		Bundle:  testBundle(),
		Include: &Include{Valuation: true},
	})
	require.NoError(t, err)

	assert.NotNil(t, res.Valuation)
	assert.Nil(t, res.Score)
	assert.Nil(t, res.Explanation)
	assert.Empty(t, res.Recommendations)
	// Confidence is always present regardless of toggles.
	assert.GreaterOrEqual(t, res.ConfidenceLevel, 0.1)
}

func TestAnalyzePropagatesValidationErrors(t *testing.T) {
	svc := serviceWith(t, nil)

	bundle := testBundle()
	bundle.Hazards = append(bundle.Hazards, feature.HazardRecord{Type: "meteor", Probability: 0.5})

	_, err := svc.Analyze(context.Background(), &Request{Bundle: bundle})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUnknownHazardType))

	_, err = svc.Analyze(context.Background(), &Request{
		Bundle:  testBundle(),
		Weights: scoring.ScoreWeights{"nonsense": 3},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeWeightInvalid))
}

func TestAnalyzeDegenerateWeightsFlagged(t *testing.T) {
	svc := serviceWith(t, nil)
	zero := scoring.ScoreWeights{}
	for _, comp := range scoring.Components {
		zero[comp] = 0
	}

	res, err := svc.Analyze(context.Background(), &Request{Bundle: testBundle(), Weights: zero})
	require.NoError(t, err)

	require.NotNil(t, res.Score)
	assert.True(t, res.Score.Degenerate)
	assert.NotEmpty(t, res.Warnings)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	svc := serviceWith(t, nil)
	req := &Request{Bundle: testBundle()}

	first, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Valuation, second.Valuation)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.ConfidenceLevel, second.ConfidenceLevel)
	assert.Equal(t, first.Suitability, second.Suitability)
	assert.NotEqual(t, first.AnalysisID, second.AnalysisID)
}

func TestAnalyzeEnsembleSnapshot(t *testing.T) {
	model := &valuation.EnsembleModel{
		Trees: []valuation.Tree{
			{Nodes: []valuation.Node{{Left: -1, Right: -1, Value: 310000}}},
			{Nodes: []valuation.Node{{Left: -1, Right: -1, Value: 330000}}},
		},
		FeatureNames: valuation.ModelFeatureNames,
		Version:      "2.0.0",
	}
	require.NoError(t, model.Validate())

	svc := serviceWith(t, &EngineContext{Model: model})
	res, err := svc.Analyze(context.Background(), &Request{Bundle: testBundle()})
	require.NoError(t, err)

	assert.Equal(t, valuation.MethodEnsemble, res.Valuation.Method)
	assert.InDelta(t, 320000.0, res.Valuation.PointEstimate, 1e-9)
	require.NotNil(t, res.Explanation)
	assert.Equal(t, explain.TypeAttribution, res.Explanation.Type)
}

func TestAnalyzeLogsCompletion(t *testing.T) {
	ml := testutil.NewMockLogger()
	svc := NewAnalysisService(nil, NewContextHolder(nil), ml, nil)

	_, err := svc.Analyze(context.Background(), &Request{Bundle: testBundle()})
	require.NoError(t, err)

	assert.True(t, ml.HasMessage("info", "analysis completed"), "entries: %v", ml.Entries())
}

func TestContextHolderSwap(t *testing.T) {
	holder := NewContextHolder(nil)
	require.NotNil(t, holder.Current())
	assert.NotNil(t, holder.Current().Interactions)

	next := &EngineContext{Version: "v2"}
	holder.Swap(next)
	assert.Equal(t, "v2", holder.Current().Version)
	assert.NotNil(t, holder.Current().Interactions)
}

func TestRecommendOperations(t *testing.T) {
	nf := feature.NormalizedFeatures{Bedrooms: 0.4, Bathrooms: 0.3, LivingArea: 0.3, School: 0.6, CrimeInv: 0.7, HazardInv: 0.9}
	ec := &EngineContext{
		Corpus: corpusOf(t,
			testCorpusItem("a", nf, 40.70, -74.0),
			testCorpusItem("b", nf, 40.71, -74.0),
			testCorpusItem("c", nf, 44.0, -74.0),
		),
	}
	svc := serviceWith(t, ec)
	ctx := context.Background()

	recs, err := svc.Recommend(ctx, recommend.Seed{ID: "a"}, 0, nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.NotEqual(t, "a", r.TargetID)
	}

	near, err := svc.RecommendNear(ctx, feature.GeoPoint{Latitude: 40.7, Longitude: -74.0}, 0, 0)
	require.NoError(t, err)
	require.Len(t, near, 2)
	assert.Equal(t, "a", near[0].TargetID)

	// Zero radius falls back to the configured default; a negative radius
	// is malformed.
	_, err = svc.RecommendNear(ctx, feature.GeoPoint{Latitude: 40.7, Longitude: -74.0}, -5, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeRadiusInvalid))
}
