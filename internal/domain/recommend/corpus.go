// Package recommend implements hybrid property recommendation: content-based
// similarity in normalized feature space fused with collaborative similarity
// derived from user interaction logs, plus a location-only variant for bare
// geo-point queries.
package recommend

import (
	"fmt"
	"sort"

	"github.com/turtacn/LandArea-Intelligence/internal/domain/feature"
	apperrors "github.com/turtacn/LandArea-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Corpus
// ─────────────────────────────────────────────────────────────────────────────

// CorpusItem is one previously analyzed property in the recommendation corpus.
type CorpusItem struct {
	// ID is the stable corpus identifier, unique within a corpus.
	ID string `json:"id"`

	// Vector is the item's extracted feature vector.
	Vector *feature.FeatureVector `json:"vector"`

	// Normalized is the item's normalized feature set, derived once from
	// Vector at corpus build time.
	Normalized feature.NormalizedFeatures `json:"normalized"`
}

// Corpus is an immutable snapshot of candidate properties.  Build it once,
// share it across any number of concurrent recommendation calls, and swap
// the whole snapshot to refresh.
type Corpus struct {
	items []CorpusItem
	byID  map[string]int
}

// NewCorpus builds a Corpus from items.  Items are ordered by ascending ID
// internally so that every downstream tie-break is deterministic.  Duplicate
// or empty IDs and nil vectors are rejected.
func NewCorpus(items []CorpusItem) (*Corpus, error) {
	sorted := make([]CorpusItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	byID := make(map[string]int, len(sorted))
	for i, item := range sorted {
		if item.ID == "" {
			return nil, apperrors.New(apperrors.ErrCodeCorpusLoad, "corpus item has empty id")
		}
		if item.Vector == nil {
			return nil, apperrors.New(apperrors.ErrCodeCorpusLoad, "corpus item has nil vector").
				WithDetail(item.ID)
		}
		if _, dup := byID[item.ID]; dup {
			return nil, apperrors.New(apperrors.ErrCodeCorpusLoad, "duplicate corpus id").
				WithDetail(item.ID)
		}
		byID[item.ID] = i
	}
	return &Corpus{items: sorted, byID: byID}, nil
}

// Len returns the number of corpus items.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Get returns the item with the given ID.
func (c *Corpus) Get(id string) (CorpusItem, bool) {
	if c == nil {
		return CorpusItem{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return CorpusItem{}, false
	}
	return c.items[i], true
}

// Items returns the items in ascending-ID order.  The returned slice is the
// corpus's internal storage: callers must not modify it.
func (c *Corpus) Items() []CorpusItem {
	if c == nil {
		return nil
	}
	return c.items
}

func (c *Corpus) String() string {
	return fmt.Sprintf("Corpus(%d items)", c.Len())
}
