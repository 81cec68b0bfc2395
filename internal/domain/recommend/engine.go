package recommend

import (
	"fmt"
	"sort"

	"github.com/turtacn/LandArea-Intelligence/internal/domain/feature"
	"github.com/turtacn/LandArea-Intelligence/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/LandArea-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Candidates and seeds
// ─────────────────────────────────────────────────────────────────────────────

// Candidate is one recommended property in a ranked result set.
type Candidate struct {
	// TargetID is the corpus ID of the recommended item.
	TargetID string `json:"target_id"`

	// SimilarityScore is the content (or geo) similarity to the seed, in [0,1].
	SimilarityScore float64 `json:"similarity_score"`

	// ConfidenceScore is the fused ranking score, in [0,1].
	ConfidenceScore float64 `json:"confidence_score"`

	// Rank is 1-based, dense, and unique within a result set.
	Rank int `json:"rank"`

	// Reason is a human-readable note on which signals surfaced the item.
	Reason string `json:"reason"`
}

// Seed identifies the property to recommend around: either a known corpus
// member by ID, or a raw feature set for a property outside the corpus.
// Exactly one of the two must be set.
type Seed struct {
	// ID of a corpus member.  The member itself is excluded from results and
	// its interaction history powers the collaborative signal.
	ID string

	// Features of an out-of-corpus property.  With no corpus identity there
	// is no interaction history, so ranking is content-only.
	Features *feature.NormalizedFeatures
}

// ─────────────────────────────────────────────────────────────────────────────
// Engine
// ─────────────────────────────────────────────────────────────────────────────

// Engine produces ranked recommendation candidates against a corpus snapshot.
// The corpus and interaction matrix are passed per call so callers can swap
// snapshots atomically without touching the engine.
type Engine interface {
	// Recommend returns up to topK candidates ranked by the fused
	// content/collaborative score.  mixRatio overrides the configured fusion
	// alpha when non-nil.  Fewer than topK eligible candidates are returned
	// as-is with no padding.
	Recommend(corpus *Corpus, interactions *InteractionMatrix, seed Seed, topK int, mixRatio *float64) ([]Candidate, error)

	// RecommendNear returns up to topK candidates within radiusKM of origin,
	// ranked by proximity.
	RecommendNear(corpus *Corpus, origin feature.GeoPoint, radiusKM float64, topK int) ([]Candidate, error)
}

// DefaultEngine is the standard hybrid Engine implementation.
type DefaultEngine struct {
	logger logging.Logger

	// fusionAlpha is the content share of the hybrid blend.
	fusionAlpha float64

	// poolMultiplier sizes the content pre-filter pool as a multiple of topK.
	poolMultiplier int
}

// EngineOption customizes a DefaultEngine.
type EngineOption func(*DefaultEngine)

// WithFusionAlpha overrides the default fusion alpha (0.6).
func WithFusionAlpha(alpha float64) EngineOption {
	return func(e *DefaultEngine) { e.fusionAlpha = alpha }
}

// WithPoolMultiplier overrides the content pre-filter pool multiplier (2).
func WithPoolMultiplier(m int) EngineOption {
	return func(e *DefaultEngine) { e.poolMultiplier = m }
}

// NewEngine constructs a DefaultEngine with the documented defaults.
func NewEngine(logger logging.Logger, opts ...EngineOption) *DefaultEngine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	e := &DefaultEngine{
		logger:         logger.Named("recommend"),
		fusionAlpha:    0.6,
		poolMultiplier: 2,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ─────────────────────────────────────────────────────────────────────────────
// Hybrid recommendation
// ─────────────────────────────────────────────────────────────────────────────

// scored pairs a corpus item with its ranking signals during fusion.
type scored struct {
	id         string
	contentSim float64
	collabSim  float64
	fused      float64
}

// Recommend implements Engine.
func (e *DefaultEngine) Recommend(corpus *Corpus, interactions *InteractionMatrix, seed Seed, topK int, mixRatio *float64) ([]Candidate, error) {
	if topK <= 0 {
		return nil, apperrors.New(apperrors.ErrCodeTopKInvalid,
			apperrors.DefaultMessageForCode(apperrors.ErrCodeTopKInvalid)).
			WithDetail(fmt.Sprintf("topK=%d", topK))
	}
	alpha := e.fusionAlpha
	if mixRatio != nil {
		if *mixRatio < 0 || *mixRatio > 1 {
			return nil, apperrors.New(apperrors.ErrCodeMixRatioInvalid,
				apperrors.DefaultMessageForCode(apperrors.ErrCodeMixRatioInvalid)).
				WithDetail(fmt.Sprintf("mixRatio=%v", *mixRatio))
		}
		alpha = *mixRatio
	}

	seedNF, seedID, err := resolveSeed(corpus, seed)
	if err != nil {
		return nil, err
	}

	// Content pass: similarity against every corpus member except the seed,
	// trimmed to the pre-filter pool to bound the fusion cost.
	pool := make([]scored, 0, corpus.Len())
	for _, item := range corpus.Items() {
		if item.ID == seedID && seedID != "" {
			continue
		}
		pool = append(pool, scored{
			id:         item.ID,
			contentSim: contentSimilarity(seedNF, item.Normalized),
		})
	}
	sortByScore(pool, func(s scored) float64 { return s.contentSim })
	if limit := e.poolMultiplier * topK; len(pool) > limit {
		pool = pool[:limit]
	}

	// Collaborative pass over the pool.  An out-of-corpus seed has no
	// interaction column, so every collaborative similarity is 0 and the
	// fused order collapses to the pure content order.
	if seedID != "" {
		for i := range pool {
			pool[i].collabSim = interactions.ItemSimilarity(seedID, pool[i].id)
		}
	}

	// Fusion on normalized ranks rather than raw scores: the two signals
	// live on different scales and would not combine fairly otherwise.
	// Items with no collaborative signal contribute 0 on that side instead
	// of occupying a rank, so a silent corpus never perturbs content order.
	contentPos := positionsByScore(pool, func(s scored) float64 { return s.contentSim }, false)
	collabPos := positionsByScore(pool, func(s scored) float64 { return s.collabSim }, true)
	for i := range pool {
		fused := alpha * rankWeight(contentPos[pool[i].id])
		if pos, ok := collabPos[pool[i].id]; ok {
			fused += (1 - alpha) * rankWeight(pos)
		}
		pool[i].fused = fused
	}

	sortByScore(pool, func(s scored) float64 { return s.fused })
	if len(pool) > topK {
		pool = pool[:topK]
	}

	candidates := make([]Candidate, len(pool))
	for i, s := range pool {
		candidates[i] = Candidate{
			TargetID:        s.id,
			SimilarityScore: s.contentSim,
			ConfidenceScore: clamp01(s.fused),
			Rank:            i + 1,
			Reason:          fusionReason(s),
		}
	}
	e.logger.Debug("hybrid recommendation computed",
		logging.Int("corpus_size", corpus.Len()),
		logging.Int("returned", len(candidates)),
		logging.Float64("alpha", alpha),
	)
	return candidates, nil
}

// resolveSeed returns the seed's normalized features and corpus ID (empty for
// an out-of-corpus seed).
func resolveSeed(corpus *Corpus, seed Seed) (feature.NormalizedFeatures, string, error) {
	if seed.ID != "" {
		item, ok := corpus.Get(seed.ID)
		if !ok {
			return feature.NormalizedFeatures{}, "", apperrors.New(apperrors.ErrCodeSeedNotInCorpus,
				apperrors.DefaultMessageForCode(apperrors.ErrCodeSeedNotInCorpus)).
				WithDetail(seed.ID)
		}
		return item.Normalized, item.ID, nil
	}
	if seed.Features != nil {
		return *seed.Features, "", nil
	}
	return feature.NormalizedFeatures{}, "", apperrors.InvalidParam(
		"seed must carry a corpus id or a feature set")
}

// rankWeight is the rank normalization 1/(1+position) with 0-based positions.
func rankWeight(position int) float64 { return 1 / float64(1+position) }

// positionsByScore assigns 0-based positions by descending score with ties
// broken by ascending ID.  When skipZero is set, zero-score items receive no
// position at all.
func positionsByScore(pool []scored, score func(scored) float64, skipZero bool) map[string]int {
	ordered := make([]scored, len(pool))
	copy(ordered, pool)
	sortByScore(ordered, score)

	positions := make(map[string]int, len(ordered))
	pos := 0
	for _, s := range ordered {
		if skipZero && score(s) == 0 {
			continue
		}
		positions[s.id] = pos
		pos++
	}
	return positions
}

// sortByScore orders descending by score, ties by ascending ID.
func sortByScore(pool []scored, score func(scored) float64) {
	sort.SliceStable(pool, func(i, j int) bool {
		si, sj := score(pool[i]), score(pool[j])
		if si != sj {
			return si > sj
		}
		return pool[i].id < pool[j].id
	})
}

func fusionReason(s scored) string {
	if s.collabSim > 0 {
		return "similar features and favored by users with similar activity"
	}
	return "similar features"
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ─────────────────────────────────────────────────────────────────────────────
// Location-only variant
// ─────────────────────────────────────────────────────────────────────────────

// RecommendNear implements Engine.
func (e *DefaultEngine) RecommendNear(corpus *Corpus, origin feature.GeoPoint, radiusKM float64, topK int) ([]Candidate, error) {
	if radiusKM <= 0 {
		return nil, apperrors.New(apperrors.ErrCodeRadiusInvalid,
			apperrors.DefaultMessageForCode(apperrors.ErrCodeRadiusInvalid)).
			WithDetail(fmt.Sprintf("radius_km=%v", radiusKM))
	}
	if topK <= 0 {
		return nil, apperrors.New(apperrors.ErrCodeTopKInvalid,
			apperrors.DefaultMessageForCode(apperrors.ErrCodeTopKInvalid)).
			WithDetail(fmt.Sprintf("topK=%d", topK))
	}
	if err := origin.Validate(); err != nil {
		return nil, err
	}

	latDelta, lonDelta := boundingBox(origin, radiusKM)

	type geoScored struct {
		id         string
		distanceKM float64
		sim        float64
	}
	var hits []geoScored
	for _, item := range corpus.Items() {
		p := item.Vector.Location
		if !inBoundingBox(origin, p, latDelta, lonDelta) {
			continue
		}
		d := haversineKM(origin, p)
		if d > radiusKM {
			continue
		}
		// The 0.1 floor keeps boundary candidates distinguishable from
		// non-candidates.
		hits = append(hits, geoScored{
			id:         item.ID,
			distanceKM: d,
			sim:        maxFloat(0.1, 1-d/radiusKM),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].sim != hits[j].sim {
			return hits[i].sim > hits[j].sim
		}
		return hits[i].id < hits[j].id
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}

	candidates := make([]Candidate, len(hits))
	for i, h := range hits {
		candidates[i] = Candidate{
			TargetID:        h.id,
			SimilarityScore: h.sim,
			ConfidenceScore: h.sim,
			Rank:            i + 1,
			Reason:          fmt.Sprintf("%.1f km from the requested location", h.distanceKM),
		}
	}
	return candidates, nil
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
