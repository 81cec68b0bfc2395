// Package analysis is the application layer of the engine: it wires the
// feature, valuation, scoring, confidence, recommendation, and explanation
// engines into the two externally invoked operations (single-property
// analysis and corpus-relative recommendation) behind plain structured
// request/result records.
package analysis

import (
	"sync/atomic"

	"github.com/turtacn/LandArea-Intelligence/internal/domain/recommend"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/valuation"
)

// EngineVersion is the engine lineage stamped on every result for
// reproducibility auditing.
const EngineVersion = "2.0.0"

// ─────────────────────────────────────────────────────────────────────────────
// EngineContext — immutable model/corpus snapshot
// ─────────────────────────────────────────────────────────────────────────────

// EngineContext is one immutable snapshot of the externally loaded state:
// the trained ensemble (nil when running heuristic-only), the recommendation
// corpus, and the interaction matrix.  In-flight analyses hold the snapshot
// they started with; refreshes swap the whole snapshot atomically so no
// caller ever observes a partially updated model.
type EngineContext struct {
	Model        *valuation.EnsembleModel
	Corpus       *recommend.Corpus
	Interactions *recommend.InteractionMatrix

	// Version identifies the model/corpus generation, combined with
	// EngineVersion on results.
	Version string
}

// ContextHolder publishes the current EngineContext snapshot.
type ContextHolder struct {
	ptr atomic.Pointer[EngineContext]
}

// NewContextHolder creates a holder seeded with the given snapshot.  A nil
// snapshot is replaced by an empty one so Current never returns nil.
func NewContextHolder(ec *EngineContext) *ContextHolder {
	h := &ContextHolder{}
	h.Swap(ec)
	return h
}

// Current returns the active snapshot.
func (h *ContextHolder) Current() *EngineContext {
	return h.ptr.Load()
}

// Swap atomically publishes a new snapshot.  The previous snapshot stays
// valid for analyses that already loaded it.
func (h *ContextHolder) Swap(ec *EngineContext) {
	if ec == nil {
		ec = &EngineContext{}
	}
	if ec.Interactions == nil {
		ec.Interactions = recommend.EmptyInteractionMatrix()
	}
	h.ptr.Store(ec)
}
