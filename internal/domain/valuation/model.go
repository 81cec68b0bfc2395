// Package valuation implements the automated valuation model: an ensemble of
// regression trees with a dispersion-based uncertainty measure, and a bounded
// heuristic fallback used whenever no trained ensemble is available.
package valuation

import (
	"fmt"
	"math"

	"github.com/turtacn/LandArea-Intelligence/internal/domain/feature"
	apperrors "github.com/turtacn/LandArea-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Model feature layout
// ─────────────────────────────────────────────────────────────────────────────

// ModelFeatureNames is the fixed input layout of the ensemble.  The order is
// part of the artifact contract: trees reference features by index.
var ModelFeatureNames = []string{
	"living_area_sqft",
	"norm_school",
	"norm_crime_inv",
	"age",
	"bedrooms",
	"bathrooms",
	"norm_flood_inv",
	"norm_hospital",
}

// Vectorize projects a feature vector and its normalization into the model's
// input layout.
func Vectorize(fv *feature.FeatureVector, nf feature.NormalizedFeatures) []float64 {
	return []float64{
		fv.LivingAreaSqft,
		nf.School,
		nf.CrimeInv,
		fv.Age,
		fv.Bedrooms,
		fv.Bathrooms,
		nf.FloodInv,
		nf.Hospital,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Regression trees
// ─────────────────────────────────────────────────────────────────────────────

// Node is one node of a regression tree in the flattened artifact layout.
// Internal nodes route on Feature/Threshold; leaves have Left == Right == -1.
// Value is the mean training target of the samples that reached the node and
// is present on internal nodes as well, which is what makes decision-path
// attribution possible.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool { return n.Left < 0 && n.Right < 0 }

// Tree is one regression tree.  Nodes[0] is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Predict traverses the tree for input x and returns the leaf value.
func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.IsLeaf() {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// PathContributions decomposes the tree's prediction for x into the root
// value (bias) plus one signed contribution per feature.  Each split's
// contribution is the change in node mean caused by taking that branch,
// credited to the split feature.  bias + Σ contributions reconstructs
// Predict(x) exactly up to float rounding.
func (t *Tree) PathContributions(x []float64, nFeatures int) (bias float64, contrib []float64) {
	contrib = make([]float64, nFeatures)
	i := 0
	bias = t.Nodes[0].Value
	for {
		n := t.Nodes[i]
		if n.IsLeaf() {
			return bias, contrib
		}
		var next int
		if x[n.Feature] <= n.Threshold {
			next = n.Left
		} else {
			next = n.Right
		}
		contrib[n.Feature] += t.Nodes[next].Value - n.Value
		i = next
	}
}

// validate checks node indices and feature references for structural
// soundness so traversal can never panic on a loaded artifact.
func (t *Tree) validate(nFeatures int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.IsLeaf() {
			continue
		}
		if n.Left < 0 || n.Left >= len(t.Nodes) || n.Right < 0 || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has out-of-range child", i)
		}
		// Children must come after the parent: guarantees termination.
		if n.Left <= i || n.Right <= i {
			return fmt.Errorf("node %d has non-forward child reference", i)
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return fmt.Errorf("node %d references unknown feature %d", i, n.Feature)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// EnsembleModel
// ─────────────────────────────────────────────────────────────────────────────

// EnsembleModel is the primary valuation backend: independently trained
// regression trees whose mean is the point estimate and whose standard
// deviation is the uncertainty.  The model is immutable after loading and
// safe for unlimited concurrent use.
type EnsembleModel struct {
	Trees        []Tree   `json:"trees"`
	FeatureNames []string `json:"feature_names"`
	Version      string   `json:"version"`
}

// Validate checks the artifact's structural integrity: a non-empty tree set,
// the expected feature layout, and sound node references in every tree.
func (m *EnsembleModel) Validate() error {
	if len(m.Trees) == 0 {
		return apperrors.New(apperrors.ErrCodeModelUntrained,
			apperrors.DefaultMessageForCode(apperrors.ErrCodeModelUntrained))
	}
	if len(m.FeatureNames) != len(ModelFeatureNames) {
		return apperrors.New(apperrors.ErrCodeModelArtifact,
			"model artifact feature layout mismatch").
			WithDetail(fmt.Sprintf("want %d features, got %d", len(ModelFeatureNames), len(m.FeatureNames)))
	}
	for i, name := range m.FeatureNames {
		if name != ModelFeatureNames[i] {
			return apperrors.New(apperrors.ErrCodeModelArtifact,
				"model artifact feature layout mismatch").
				WithDetail(fmt.Sprintf("feature %d: want %q, got %q", i, ModelFeatureNames[i], name))
		}
	}
	for i := range m.Trees {
		if err := m.Trees[i].validate(len(m.FeatureNames)); err != nil {
			return apperrors.New(apperrors.ErrCodeModelArtifact, "invalid tree structure").
				WithDetail(fmt.Sprintf("tree %d: %v", i, err))
		}
	}
	return nil
}

// Predict returns the ensemble mean and the standard deviation of the
// per-tree predictions for input x.
func (m *EnsembleModel) Predict(x []float64) (mean, std float64) {
	n := float64(len(m.Trees))
	var sum float64
	preds := make([]float64, len(m.Trees))
	for i := range m.Trees {
		p := m.Trees[i].Predict(x)
		preds[i] = p
		sum += p
	}
	mean = sum / n

	var variance float64
	for _, p := range preds {
		d := p - mean
		variance += d * d
	}
	variance /= n
	std = math.Sqrt(variance)
	return mean, std
}

// PathContributions averages the per-tree decision-path decomposition across
// the ensemble: base is the mean of per-tree root values, contributions are
// the mean per-feature path contributions.  base + Σ contributions equals
// Predict's mean up to float rounding.
func (m *EnsembleModel) PathContributions(x []float64) (base float64, contributions []float64) {
	nf := len(m.FeatureNames)
	contributions = make([]float64, nf)
	n := float64(len(m.Trees))
	for i := range m.Trees {
		b, c := m.Trees[i].PathContributions(x, nf)
		base += b
		for j := range c {
			contributions[j] += c[j]
		}
	}
	base /= n
	for j := range contributions {
		contributions[j] /= n
	}
	return base, contributions
}
