package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LandArea-Intelligence/internal/domain/feature"
	apperrors "github.com/turtacn/LandArea-Intelligence/pkg/errors"
)

func item(id string, nf feature.NormalizedFeatures) CorpusItem {
	return CorpusItem{
		ID:         id,
		Vector:     &feature.FeatureVector{},
		Normalized: nf,
	}
}

func geoItem(id string, lat, lon float64) CorpusItem {
	return CorpusItem{
		ID:     id,
		Vector: &feature.FeatureVector{Location: feature.GeoPoint{Latitude: lat, Longitude: lon}},
	}
}

func nfWith(beds, school float64) feature.NormalizedFeatures {
	return feature.NormalizedFeatures{
		Bedrooms:   beds,
		Bathrooms:  0.5,
		LivingArea: 0.5,
		School:     school,
		CrimeInv:   0.5,
		HazardInv:  0.5,
	}
}

func mustCorpus(t *testing.T, items ...CorpusItem) *Corpus {
	t.Helper()
	c, err := NewCorpus(items)
	require.NoError(t, err)
	return c
}

func TestNewCorpusRejectsBadItems(t *testing.T) {
	_, err := NewCorpus([]CorpusItem{item("a", nfWith(0.5, 0.5)), item("a", nfWith(0.5, 0.5))})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCorpusLoad))

	_, err = NewCorpus([]CorpusItem{item("", nfWith(0.5, 0.5))})
	require.Error(t, err)

	_, err = NewCorpus([]CorpusItem{{ID: "a"}})
	require.Error(t, err)
}

func TestInteractionMatrix(t *testing.T) {
	m, err := BuildInteractionMatrix([]Interaction{
		{UserID: "u1", ItemID: "a", Type: InteractionView},
		{UserID: "u1", ItemID: "a", Type: InteractionSave},
		{UserID: "u1", ItemID: "b", Type: InteractionContact},
		{UserID: "u2", ItemID: "b", Type: InteractionShare},
	})
	require.NoError(t, err)

	// a and b share user u1: similarity is positive but below 1.
	sim := m.ItemSimilarity("a", "b")
	assert.Greater(t, sim, 0.0)
	assert.Less(t, sim, 1.0)

	// Symmetric.
	assert.Equal(t, sim, m.ItemSimilarity("b", "a"))

	// No interactions recorded for c: similarity 0 to everything.
	assert.Equal(t, 0.0, m.ItemSimilarity("a", "c"))
	assert.False(t, m.HasInteractions("c"))
	assert.True(t, m.HasInteractions("a"))
}

func TestBuildInteractionMatrixRejectsBadRecords(t *testing.T) {
	_, err := BuildInteractionMatrix([]Interaction{{UserID: "u", ItemID: "a", Type: "teleport"}})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInteractionParse))

	_, err = BuildInteractionMatrix([]Interaction{{UserID: "", ItemID: "a", Type: InteractionView}})
	require.Error(t, err)
}

func TestInteractionWeights(t *testing.T) {
	assert.Equal(t, 1.0, InteractionView.Weight())
	assert.Equal(t, 3.0, InteractionSave.Weight())
	assert.Equal(t, 5.0, InteractionContact.Weight())
	assert.Equal(t, 2.0, InteractionShare.Weight())
	assert.Equal(t, 4.0, InteractionAnalysis.Weight())
}

func TestContentSimilarity(t *testing.T) {
	a := nfWith(0.5, 0.8)
	assert.InDelta(t, 1.0, contentSimilarity(a, a), 1e-12)

	zero := feature.NormalizedFeatures{}
	assert.Equal(t, 0.0, contentSimilarity(a, zero))
}

func TestRecommendZeroInteractionsMatchesContentOrder(t *testing.T) {
	seedNF := nfWith(0.5, 0.9)
	corpus := mustCorpus(t,
		item("seed", seedNF),
		item("near", nfWith(0.5, 0.85)),
		item("mid", nfWith(0.6, 0.4)),
		item("far", nfWith(0.1, 0.05)),
	)
	empty := EmptyInteractionMatrix()

	got, err := NewEngine(nil).Recommend(corpus, empty, Seed{ID: "seed"}, 3, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// With no interaction history anywhere, the fused ranking is exactly
	// the pure content ranking.
	assert.Equal(t, "near", got[0].TargetID)
	assert.Equal(t, "mid", got[1].TargetID)
	assert.Equal(t, "far", got[2].TargetID)

	for i, c := range got {
		assert.Equal(t, i+1, c.Rank)
		assert.NotEqual(t, "seed", c.TargetID)
		assert.GreaterOrEqual(t, c.SimilarityScore, 0.0)
		assert.LessOrEqual(t, c.SimilarityScore, 1.0)
	}
	assert.Greater(t, got[0].SimilarityScore, got[1].SimilarityScore)
}

func TestRecommendCollaborativeSignalLiftsItem(t *testing.T) {
	seedNF := nfWith(0.5, 0.9)
	corpus := mustCorpus(t,
		item("seed", seedNF),
		item("plain", nfWith(0.5, 0.88)), // content favorite
		item("loved", nfWith(0.5, 0.5)),
	)
	m, err := BuildInteractionMatrix([]Interaction{
		{UserID: "u1", ItemID: "seed", Type: InteractionContact},
		{UserID: "u1", ItemID: "loved", Type: InteractionContact},
		{UserID: "u2", ItemID: "seed", Type: InteractionSave},
		{UserID: "u2", ItemID: "loved", Type: InteractionSave},
	})
	require.NoError(t, err)

	// Heavily collaborative blend: shared interaction history outweighs the
	// small content edge.
	alpha := 0.2
	got, err := NewEngine(nil).Recommend(corpus, m, Seed{ID: "seed"}, 2, &alpha)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "loved", got[0].TargetID)
	assert.Contains(t, got[0].Reason, "similar activity")
	assert.Equal(t, "plain", got[1].TargetID)
}

func TestRecommendRawFeatureSeed(t *testing.T) {
	corpus := mustCorpus(t,
		item("a", nfWith(0.5, 0.8)),
		item("b", nfWith(0.2, 0.1)),
	)
	seedNF := nfWith(0.5, 0.82)

	got, err := NewEngine(nil).Recommend(corpus, EmptyInteractionMatrix(),
		Seed{Features: &seedNF}, 5, nil)
	require.NoError(t, err)

	// No corpus identity: nothing is excluded, ranking is content-only.
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].TargetID)
}

func TestRecommendNoPaddingBelowTopK(t *testing.T) {
	corpus := mustCorpus(t, item("seed", nfWith(0.5, 0.5)), item("only", nfWith(0.5, 0.6)))

	got, err := NewEngine(nil).Recommend(corpus, EmptyInteractionMatrix(), Seed{ID: "seed"}, 10, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Rank)
}

func TestRecommendValidation(t *testing.T) {
	corpus := mustCorpus(t, item("a", nfWith(0.5, 0.5)))
	engine := NewEngine(nil)
	empty := EmptyInteractionMatrix()

	_, err := engine.Recommend(corpus, empty, Seed{ID: "a"}, 0, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTopKInvalid))

	bad := 1.5
	_, err = engine.Recommend(corpus, empty, Seed{ID: "a"}, 3, &bad)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMixRatioInvalid))

	_, err = engine.Recommend(corpus, empty, Seed{ID: "ghost"}, 3, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSeedNotInCorpus))

	_, err = engine.Recommend(corpus, empty, Seed{}, 3, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestRecommendTieBreaksByAscendingID(t *testing.T) {
	same := nfWith(0.5, 0.5)
	corpus := mustCorpus(t, item("seed", same), item("zeta", same), item("alpha", same))

	got, err := NewEngine(nil).Recommend(corpus, EmptyInteractionMatrix(), Seed{ID: "seed"}, 2, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0].TargetID)
	assert.Equal(t, "zeta", got[1].TargetID)
}

func TestRecommendNear(t *testing.T) {
	origin := feature.GeoPoint{Latitude: 40.0, Longitude: -74.0}
	corpus := mustCorpus(t,
		geoItem("close", 40.01, -74.0),  // ~1.1 km
		geoItem("edge", 40.08, -74.0),   // ~8.9 km
		geoItem("outside", 41.0, -74.0), // ~111 km
	)

	got, err := NewEngine(nil).RecommendNear(corpus, origin, 10, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "close", got[0].TargetID)
	assert.Equal(t, "edge", got[1].TargetID)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 2, got[1].Rank)
	assert.Greater(t, got[0].SimilarityScore, got[1].SimilarityScore)
	assert.Contains(t, got[0].Reason, "km")
}

func TestRecommendNearSimilarityFloor(t *testing.T) {
	origin := feature.GeoPoint{Latitude: 40.0, Longitude: -74.0}
	// ~9.99 km north of origin, just inside a 10 km radius.
	corpus := mustCorpus(t, geoItem("boundary", 40.0899, -74.0))

	got, err := NewEngine(nil).RecommendNear(corpus, origin, 10, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.GreaterOrEqual(t, got[0].SimilarityScore, 0.1)
}

func TestRecommendNearValidation(t *testing.T) {
	corpus := mustCorpus(t, geoItem("a", 40, -74))
	engine := NewEngine(nil)
	origin := feature.GeoPoint{Latitude: 40, Longitude: -74}

	_, err := engine.RecommendNear(corpus, origin, 0, 5)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeRadiusInvalid))

	_, err = engine.RecommendNear(corpus, origin, 10, 0)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTopKInvalid))

	_, err = engine.RecommendNear(corpus, feature.GeoPoint{Latitude: 99}, 10, 5)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidCoordinates))
}
