package analysis

import (
	"github.com/turtacn/LandArea-Intelligence/internal/domain/feature"
	"github.com/turtacn/LandArea-Intelligence/internal/domain/scoring"
)

// ─────────────────────────────────────────────────────────────────────────────
// Land suitability composite
// ─────────────────────────────────────────────────────────────────────────────

// SuitabilityScore is the equal-weight composite of the four land-use
// dimensions, each on a 0–100 scale.
type SuitabilityScore struct {
	Facility float64 `json:"facility"`
	Safety   float64 `json:"safety"`
	Market   float64 `json:"market"`
	Disaster float64 `json:"disaster"`
	Overall  float64 `json:"overall"`
}

// computeSuitability derives the composite from normalized features.  Each
// dimension carries an equal 25% share of the overall.
func computeSuitability(nf feature.NormalizedFeatures) SuitabilityScore {
	facility := 100 * (nf.School + nf.Hospital + nf.Retail + nf.EmployerProximity) / 4
	safety := 100 * nf.CrimeInv
	market := 100 * nf.Value
	disaster := 100 * nf.HazardInv

	return SuitabilityScore{
		Facility: facility,
		Safety:   safety,
		Market:   market,
		Disaster: disaster,
		Overall:  (facility + safety + market + disaster) / 4,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Investment action
// ─────────────────────────────────────────────────────────────────────────────

// Action is the investment recommendation derived from the combined
// suitability and beneficiary scores.
type Action string

const (
	ActionBuy   Action = "buy"
	ActionHold  Action = "hold"
	ActionAvoid Action = "avoid"
)

// RiskTolerance selects the action thresholds.
type RiskTolerance string

const (
	RiskLow    RiskTolerance = "low"
	RiskMedium RiskTolerance = "medium"
	RiskHigh   RiskTolerance = "high"
)

// actionThresholds maps a risk tolerance to its buy floor and avoid ceiling
// on the combined 0–100 score.
var actionThresholds = map[RiskTolerance]struct{ buy, avoid float64 }{
	RiskLow:    {buy: 75, avoid: 50},
	RiskMedium: {buy: 70, avoid: 45},
	RiskHigh:   {buy: 60, avoid: 35},
}

// Hard-avoid guards that apply regardless of risk tolerance: dangerously
// unsafe or disaster-prone locations are never a buy or hold.
const (
	hardAvoidSafetyFloor   = 30.0
	hardAvoidDisasterFloor = 20.0
)

// combinedScoreWeights blend suitability and beneficiary into the action input.
const (
	suitabilityShare = 0.6
	beneficiaryShare = 0.4
)

// investmentAction derives the buy/hold/avoid call.  An unknown risk
// tolerance falls back to medium.
func investmentAction(suitability SuitabilityScore, score *scoring.BeneficiaryScore, tolerance RiskTolerance) (Action, float64) {
	var beneficiary float64
	if score != nil && !score.Degenerate {
		beneficiary = score.Overall
	}
	combined := suitabilityShare*suitability.Overall + beneficiaryShare*beneficiary

	if suitability.Safety < hardAvoidSafetyFloor || suitability.Disaster < hardAvoidDisasterFloor {
		return ActionAvoid, combined
	}

	th, ok := actionThresholds[tolerance]
	if !ok {
		th = actionThresholds[RiskMedium]
	}
	switch {
	case combined >= th.buy:
		return ActionBuy, combined
	case combined < th.avoid:
		return ActionAvoid, combined
	default:
		return ActionHold, combined
	}
}
