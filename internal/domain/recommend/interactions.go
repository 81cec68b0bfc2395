package recommend

import (
	"math"

	apperrors "github.com/turtacn/LandArea-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Interactions
// ─────────────────────────────────────────────────────────────────────────────

// InteractionType identifies one kind of user action on a property listing.
type InteractionType string

const (
	InteractionView     InteractionType = "view"
	InteractionSave     InteractionType = "save"
	InteractionContact  InteractionType = "contact"
	InteractionShare    InteractionType = "share"
	InteractionAnalysis InteractionType = "analysis"
)

// interactionWeights is the documented weight of each interaction type in the
// collaborative signal.  Contacting an agent is the strongest intent signal;
// a view is the weakest.
var interactionWeights = map[InteractionType]float64{
	InteractionView:     1,
	InteractionSave:     3,
	InteractionContact:  5,
	InteractionShare:    2,
	InteractionAnalysis: 4,
}

// Weight returns the interaction type's collaborative weight, or 0 for an
// unknown type.
func (t InteractionType) Weight() float64 { return interactionWeights[t] }

// ParseInteractionType converts a string into an InteractionType, rejecting
// unknown values with a typed parse error.
func ParseInteractionType(s string) (InteractionType, error) {
	t := InteractionType(s)
	if _, ok := interactionWeights[t]; !ok {
		return "", apperrors.New(apperrors.ErrCodeInteractionParse,
			apperrors.DefaultMessageForCode(apperrors.ErrCodeInteractionParse)).
			WithDetail(s)
	}
	return t, nil
}

// Interaction is one user action on one corpus item.
type Interaction struct {
	UserID string          `json:"user_id"`
	ItemID string          `json:"item_id"`
	Type   InteractionType `json:"type"`
}

// ─────────────────────────────────────────────────────────────────────────────
// InteractionMatrix
// ─────────────────────────────────────────────────────────────────────────────

// InteractionMatrix is the sparse item-by-user weight matrix built from an
// interaction log.  It is immutable after construction and safe for
// unlimited concurrent reads; refresh by building a new matrix and swapping
// the snapshot reference.
type InteractionMatrix struct {
	// columns maps itemID → userID → accumulated interaction weight.
	columns map[string]map[string]float64

	// norms caches each column's Euclidean norm for cosine computation.
	norms map[string]float64
}

// BuildInteractionMatrix aggregates an interaction log into an
// InteractionMatrix.  Repeated interactions accumulate; records with an
// unknown type or empty IDs are rejected.
func BuildInteractionMatrix(log []Interaction) (*InteractionMatrix, error) {
	m := &InteractionMatrix{
		columns: make(map[string]map[string]float64),
		norms:   make(map[string]float64),
	}
	for _, in := range log {
		if in.UserID == "" || in.ItemID == "" {
			return nil, apperrors.New(apperrors.ErrCodeInteractionParse,
				"interaction must carry user and item ids")
		}
		if _, err := ParseInteractionType(string(in.Type)); err != nil {
			return nil, err
		}
		col := m.columns[in.ItemID]
		if col == nil {
			col = make(map[string]float64)
			m.columns[in.ItemID] = col
		}
		col[in.UserID] += in.Type.Weight()
	}
	for itemID, col := range m.columns {
		var sq float64
		for _, w := range col {
			sq += w * w
		}
		m.norms[itemID] = math.Sqrt(sq)
	}
	return m, nil
}

// EmptyInteractionMatrix returns a matrix with no recorded interactions.
func EmptyInteractionMatrix() *InteractionMatrix {
	return &InteractionMatrix{
		columns: map[string]map[string]float64{},
		norms:   map[string]float64{},
	}
}

// ItemSimilarity returns the cosine similarity of two item columns.  An item
// with no recorded interactions has similarity 0 to everything, so it can
// never surface through the collaborative signal alone.
func (m *InteractionMatrix) ItemSimilarity(a, b string) float64 {
	if m == nil {
		return 0
	}
	colA, colB := m.columns[a], m.columns[b]
	normA, normB := m.norms[a], m.norms[b]
	if normA == 0 || normB == 0 {
		return 0
	}
	// Iterate the smaller column.
	if len(colB) < len(colA) {
		colA, colB = colB, colA
	}
	var dot float64
	for user, wa := range colA {
		if wb, ok := colB[user]; ok {
			dot += wa * wb
		}
	}
	return dot / (normA * normB)
}

// HasInteractions reports whether the item has any recorded interactions.
func (m *InteractionMatrix) HasInteractions(itemID string) bool {
	return m != nil && m.norms[itemID] > 0
}
