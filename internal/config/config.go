// Package config defines the engine configuration model and its viper-based
// loader.  Configuration is read from a YAML file, overridden by environment
// variables with the LANDAI_ prefix, and validated before the engine starts.
package config

import (
	"fmt"
	"math"

	"github.com/turtacn/LandArea-Intelligence/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// EngineConfig — top-level configuration
// ─────────────────────────────────────────────────────────────────────────────

// EngineConfig is the root configuration object for the analysis engine.
// Zero values are replaced by documented defaults during loading; Validate
// rejects combinations that would produce undefined behavior at runtime.
type EngineConfig struct {
	// Log configures the structured logger.
	Log logging.LogConfig `yaml:"log" mapstructure:"log"`

	// Valuation configures the automated valuation model and its fallback.
	Valuation ValuationConfig `yaml:"valuation" mapstructure:"valuation"`

	// Scoring configures the beneficiary scoring engine.
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`

	// Recommend configures the hybrid recommendation engine.
	Recommend RecommendConfig `yaml:"recommend" mapstructure:"recommend"`

	// Confidence configures the analysis confidence estimator.
	Confidence ConfidenceConfig `yaml:"confidence" mapstructure:"confidence"`

	// Analysis configures the application-level analysis service.
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`

	// Metrics configures metric collection.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// ValuationConfig holds the tunables of the valuation pipeline.
type ValuationConfig struct {
	// ModelPath is the filesystem path of the serialized ensemble artifact.
	// When empty or unreadable the heuristic fallback valuator is used.
	ModelPath string `yaml:"model_path" mapstructure:"model_path"`

	// FallbackUncertaintyPct is the uncertainty assigned by the heuristic
	// fallback, as a fraction of the point estimate.
	FallbackUncertaintyPct float64 `yaml:"fallback_uncertainty_pct" mapstructure:"fallback_uncertainty_pct"`

	// DefaultPricePerSqft is the market price substitute used when no local
	// market signal is available, in whole USD per square foot.
	DefaultPricePerSqft float64 `yaml:"default_price_per_sqft" mapstructure:"default_price_per_sqft"`
}

// ScoringConfig holds the tunables of the beneficiary scoring engine.
type ScoringConfig struct {
	// Weights maps scoring component names to their relative importance.
	// Missing components fall back to the engine defaults; negative weights
	// are rejected by Validate.
	Weights map[string]float64 `yaml:"weights" mapstructure:"weights"`
}

// RecommendConfig holds the tunables of the recommendation engine.
type RecommendConfig struct {
	// FusionAlpha is the content-based share of the hybrid blend, in [0,1].
	// 1.0 means pure content similarity, 0.0 means pure collaborative.
	FusionAlpha float64 `yaml:"fusion_alpha" mapstructure:"fusion_alpha"`

	// DefaultTopK is the result-set size when the caller does not specify one.
	DefaultTopK int `yaml:"default_top_k" mapstructure:"default_top_k"`

	// PoolMultiplier sizes the content pre-filter pool as a multiple of topK.
	PoolMultiplier int `yaml:"pool_multiplier" mapstructure:"pool_multiplier"`

	// DefaultRadiusKM is the search radius for location-only recommendations
	// when the caller does not specify one, in kilometers.
	DefaultRadiusKM float64 `yaml:"default_radius_km" mapstructure:"default_radius_km"`
}

// ConfidenceConfig holds the tunables of the confidence estimator.
type ConfidenceConfig struct {
	// MaxReasonableUncertainty is the valuation uncertainty (USD) at which
	// uncertainty-derived confidence reaches zero.
	MaxReasonableUncertainty float64 `yaml:"max_reasonable_uncertainty" mapstructure:"max_reasonable_uncertainty"`

	// UncertaintyWeight, CompletenessWeight, and FeatureQualityWeight blend
	// the three confidence signals.  They must sum to 1.
	UncertaintyWeight    float64 `yaml:"uncertainty_weight" mapstructure:"uncertainty_weight"`
	CompletenessWeight   float64 `yaml:"completeness_weight" mapstructure:"completeness_weight"`
	FeatureQualityWeight float64 `yaml:"feature_quality_weight" mapstructure:"feature_quality_weight"`

	// Floor is the minimum confidence ever reported, in (0,1].
	Floor float64 `yaml:"floor" mapstructure:"floor"`
}

// AnalysisConfig holds application-service toggles.
type AnalysisConfig struct {
	// IncludeRecommendations enables the recommendation stage of a full
	// analysis.  Disabled analyses omit the recommendation list entirely.
	IncludeRecommendations bool `yaml:"include_recommendations" mapstructure:"include_recommendations"`

	// IncludeExplanation enables the explainability stage of a full analysis.
	IncludeExplanation bool `yaml:"include_explanation" mapstructure:"include_explanation"`
}

// MetricsConfig holds metric-collection settings.
type MetricsConfig struct {
	// Enabled switches between the Prometheus and noop metric implementations.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Namespace is the Prometheus metric namespace prefix.
	Namespace string `yaml:"namespace" mapstructure:"namespace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate checks the configuration for values that would produce undefined
// engine behavior.  It returns the first violation found.
func (c *EngineConfig) Validate() error {
	if c.Valuation.FallbackUncertaintyPct < 0 || c.Valuation.FallbackUncertaintyPct > 1 {
		return fmt.Errorf("config: valuation.fallback_uncertainty_pct must be in [0,1], got %v",
			c.Valuation.FallbackUncertaintyPct)
	}
	if c.Valuation.DefaultPricePerSqft <= 0 {
		return fmt.Errorf("config: valuation.default_price_per_sqft must be positive, got %v",
			c.Valuation.DefaultPricePerSqft)
	}
	for name, w := range c.Scoring.Weights {
		if w < 0 {
			return fmt.Errorf("config: scoring.weights[%s] must be non-negative, got %v", name, w)
		}
	}
	if c.Recommend.FusionAlpha < 0 || c.Recommend.FusionAlpha > 1 {
		return fmt.Errorf("config: recommend.fusion_alpha must be in [0,1], got %v",
			c.Recommend.FusionAlpha)
	}
	if c.Recommend.DefaultTopK <= 0 {
		return fmt.Errorf("config: recommend.default_top_k must be positive, got %d",
			c.Recommend.DefaultTopK)
	}
	if c.Recommend.PoolMultiplier < 1 {
		return fmt.Errorf("config: recommend.pool_multiplier must be >= 1, got %d",
			c.Recommend.PoolMultiplier)
	}
	if c.Recommend.DefaultRadiusKM <= 0 {
		return fmt.Errorf("config: recommend.default_radius_km must be positive, got %v",
			c.Recommend.DefaultRadiusKM)
	}
	if c.Confidence.MaxReasonableUncertainty <= 0 {
		return fmt.Errorf("config: confidence.max_reasonable_uncertainty must be positive, got %v",
			c.Confidence.MaxReasonableUncertainty)
	}
	sum := c.Confidence.UncertaintyWeight + c.Confidence.CompletenessWeight + c.Confidence.FeatureQualityWeight
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("config: confidence blend weights must sum to 1, got %v", sum)
	}
	if c.Confidence.Floor <= 0 || c.Confidence.Floor > 1 {
		return fmt.Errorf("config: confidence.floor must be in (0,1], got %v", c.Confidence.Floor)
	}
	return nil
}
