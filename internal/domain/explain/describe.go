package explain

import (
	"fmt"
	"strings"
)

// featureMeta carries the presentation template inputs for one model feature.
type featureMeta struct {
	label string
	unit  string
}

var featureMetaByName = map[string]featureMeta{
	"living_area_sqft": {label: "Living area", unit: "sqft"},
	"norm_school":      {label: "School quality", unit: "score"},
	"norm_crime_inv":   {label: "Neighborhood safety", unit: "score"},
	"age":              {label: "Property age", unit: "years"},
	"bedrooms":         {label: "Bedrooms", unit: ""},
	"bathrooms":        {label: "Bathrooms", unit: ""},
	"norm_flood_inv":   {label: "Flood safety", unit: "score"},
	"norm_hospital":    {label: "Hospital access", unit: "score"},
	residualFeatureName: {label: "Other market factors", unit: ""},
}

// describe renders the per-feature template:
// "{label} ({value} {unit}) increases/decreases value by ${amount}".
// Pure formatting; no decision logic.
func describe(name string, rawValue, contribution float64) string {
	meta, ok := featureMetaByName[name]
	if !ok {
		meta = featureMeta{label: name}
	}

	direction := "increases"
	amount := contribution
	if contribution < 0 {
		direction = "decreases"
		amount = -contribution
	}

	if name == residualFeatureName {
		return fmt.Sprintf("%s %s value by $%.0f", meta.label, direction, amount)
	}
	value := fmt.Sprintf("%.2g", rawValue)
	if meta.unit != "" {
		value += " " + meta.unit
	}
	return fmt.Sprintf("%s (%s) %s value by $%.0f", meta.label, value, direction, amount)
}

// summarize builds a one-line digest of the leading drivers in each direction.
func summarize(positive, negative []Attribution) string {
	var parts []string
	if len(positive) > 0 {
		parts = append(parts, fmt.Sprintf("value is driven up mainly by %s",
			labelOf(positive[0].FeatureName)))
	}
	if len(negative) > 0 {
		parts = append(parts, fmt.Sprintf("held back mainly by %s",
			labelOf(negative[0].FeatureName)))
	}
	if len(parts) == 0 {
		return "no single factor dominates this valuation"
	}
	return strings.Join(parts, "; ")
}

func labelOf(name string) string {
	if meta, ok := featureMetaByName[name]; ok {
		return strings.ToLower(meta.label)
	}
	return name
}
