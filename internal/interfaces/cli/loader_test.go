package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LandArea-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/LandArea-Intelligence/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const corpusJSON = `[
  {
    "id": "p1",
    "bundle": {
      "location": {"latitude": 40.7, "longitude": -74.0},
      "attributes": {"bedrooms": 3, "bathrooms": 2, "living_area_sqft": 1500, "year_built": 2001},
      "facilities": [{"type": "school", "distance_km": 0.8, "rating": 4.5}]
    }
  },
  {
    "id": "p2",
    "bundle": {
      "location": {"latitude": 40.8, "longitude": -74.0},
      "attributes": {"bedrooms": 4, "bathrooms": 2.5, "living_area_sqft": 2100, "year_built": 1995}
    }
  }
]`

func TestLoadCorpus(t *testing.T) {
	path := writeFile(t, "corpus.json", corpusJSON)

	corpus, err := loadCorpus(path, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, corpus.Len())

	item, ok := corpus.Get("p1")
	require.True(t, ok)
	assert.Equal(t, 1500.0, item.Vector.LivingAreaSqft)
	assert.Greater(t, item.Normalized.School, 0.0)
}

func TestLoadCorpusRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: `{{{`},
		{name: "negative area", content: `[{"id": "x", "bundle": {"attributes": {"living_area_sqft": -5}}}]`},
		{name: "duplicate id", content: `[{"id": "x", "bundle": {}}, {"id": "x", "bundle": {}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "corpus.json", tt.content)
			_, err := loadCorpus(path, logging.NewNopLogger())
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCorpusLoad))
		})
	}
}

func TestLoadCorpusMissingFile(t *testing.T) {
	_, err := loadCorpus(filepath.Join(t.TempDir(), "nope.json"), logging.NewNopLogger())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCorpusLoad))
}

func TestLoadInteractions(t *testing.T) {
	path := writeFile(t, "log.json", `[
	  {"user_id": "u1", "item_id": "p1", "type": "save"},
	  {"user_id": "u1", "item_id": "p2", "type": "view"},
	  {"user_id": "u2", "item_id": "p1", "type": "contact"}
	]`)

	matrix, err := loadInteractions(path)
	require.NoError(t, err)
	assert.True(t, matrix.HasInteractions("p1"))
	assert.Greater(t, matrix.ItemSimilarity("p1", "p2"), 0.0)
}

func TestLoadInteractionsRejectsUnknownType(t *testing.T) {
	path := writeFile(t, "log.json", `[{"user_id": "u1", "item_id": "p1", "type": "teleport"}]`)

	_, err := loadInteractions(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInteractionParse))
}

func TestLoadEngineContextAllOptional(t *testing.T) {
	ec, err := loadEngineContext(&RootOptions{}, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Nil(t, ec.Model)
	assert.Nil(t, ec.Corpus)
	assert.Empty(t, ec.Version)
}

func TestLoadEngineContextModelVersionFallsThrough(t *testing.T) {
	modelPath := writeFile(t, "model.json", `{
	  "version": "2026-08-rc1",
	  "feature_names": ["living_area_sqft", "norm_school", "norm_crime_inv", "age",
	                    "bedrooms", "bathrooms", "norm_flood_inv", "norm_hospital"],
	  "trees": [{"nodes": [{"feature": -1, "threshold": 0, "left": -1, "right": -1, "value": 250000}]}]
	}`)

	ec, err := loadEngineContext(&RootOptions{ModelPath: modelPath}, logging.NewNopLogger())
	require.NoError(t, err)
	require.NotNil(t, ec.Model)
	// No explicit snapshot version: the model's own version labels the snapshot.
	assert.Equal(t, "2026-08-rc1", ec.Version)

	ec, err = loadEngineContext(&RootOptions{ModelPath: modelPath, SnapshotVersion: "override"},
		logging.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, "override", ec.Version)
}
