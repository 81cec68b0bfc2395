package recommend

import (
	"math"

	"github.com/turtacn/LandArea-Intelligence/internal/domain/feature"
)

// ─────────────────────────────────────────────────────────────────────────────
// Content similarity
// ─────────────────────────────────────────────────────────────────────────────

// contentDims projects the normalized features onto the fixed dimension
// subset used for content similarity: bedrooms, bathrooms, living area,
// school quality, safety, and environmental risk.  The subset is part of the
// engine contract; changing it changes every ranking.
func contentDims(nf feature.NormalizedFeatures) [6]float64 {
	return [6]float64{
		nf.Bedrooms,
		nf.Bathrooms,
		nf.LivingArea,
		nf.School,
		nf.CrimeInv,
		nf.HazardInv,
	}
}

// contentSimilarity is the cosine similarity of two items in the fixed
// content dimension subset.  Both vectors are non-negative, so the result is
// in [0,1]; a zero vector has similarity 0 to everything.
func contentSimilarity(a, b feature.NormalizedFeatures) float64 {
	va, vb := contentDims(a), contentDims(b)
	var dot, na, nb float64
	for i := range va {
		dot += va[i] * vb[i]
		na += va[i] * va[i]
		nb += vb[i] * vb[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
