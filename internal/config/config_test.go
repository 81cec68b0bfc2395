package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.15, cfg.Valuation.FallbackUncertaintyPct)
	assert.Equal(t, 100.0, cfg.Valuation.DefaultPricePerSqft)
	assert.Equal(t, 0.6, cfg.Recommend.FusionAlpha)
	assert.Equal(t, 10, cfg.Recommend.DefaultTopK)
	assert.Equal(t, 2, cfg.Recommend.PoolMultiplier)
	assert.Equal(t, 50000.0, cfg.Confidence.MaxReasonableUncertainty)
	assert.Equal(t, 0.1, cfg.Confidence.Floor)
	assert.True(t, cfg.Analysis.IncludeRecommendations)
	assert.True(t, cfg.Analysis.IncludeExplanation)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*EngineConfig)
		wantErr string
	}{
		{
			name:   "defaults pass",
			mutate: func(_ *EngineConfig) {},
		},
		{
			name:    "negative fallback uncertainty",
			mutate:  func(c *EngineConfig) { c.Valuation.FallbackUncertaintyPct = -0.1 },
			wantErr: "fallback_uncertainty_pct",
		},
		{
			name:    "zero price per sqft",
			mutate:  func(c *EngineConfig) { c.Valuation.DefaultPricePerSqft = 0 },
			wantErr: "default_price_per_sqft",
		},
		{
			name:    "negative scoring weight",
			mutate:  func(c *EngineConfig) { c.Scoring.Weights = map[string]float64{"value": -1} },
			wantErr: "scoring.weights",
		},
		{
			name:    "fusion alpha above one",
			mutate:  func(c *EngineConfig) { c.Recommend.FusionAlpha = 1.2 },
			wantErr: "fusion_alpha",
		},
		{
			name:    "zero topK",
			mutate:  func(c *EngineConfig) { c.Recommend.DefaultTopK = 0 },
			wantErr: "default_top_k",
		},
		{
			name: "confidence weights not summing to one",
			mutate: func(c *EngineConfig) {
				c.Confidence.UncertaintyWeight = 0.5
			},
			wantErr: "blend weights",
		},
		{
			name:    "confidence floor above one",
			mutate:  func(c *EngineConfig) { c.Confidence.Floor = 1.5 },
			wantErr: "floor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	yaml := []byte(`
log:
  level: debug
recommend:
  fusion_alpha: 0.8
  default_top_k: 5
scoring:
  weights:
    value: 10
    school: 4
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 0.8, cfg.Recommend.FusionAlpha)
	assert.Equal(t, 5, cfg.Recommend.DefaultTopK)
	assert.Equal(t, 10.0, cfg.Scoring.Weights["value"])
	assert.Equal(t, 4.0, cfg.Scoring.Weights["school"])

	// Untouched sections keep their defaults.
	assert.Equal(t, 50000.0, cfg.Confidence.MaxReasonableUncertainty)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	yaml := []byte(`
recommend:
  fusion_alpha: 3.0
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fusion_alpha")
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LANDAI_RECOMMEND_FUSION_ALPHA", "0.25")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Recommend.FusionAlpha)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/engine.yaml")
	require.Error(t, err)
}
