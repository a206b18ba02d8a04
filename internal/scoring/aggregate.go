package scoring

import (
	"math"
	"strings"

	"github.com/mind-engage/fundreview/internal/evaluation"
)

// Totals is the aggregate of a set of evaluation components.
type Totals struct {
	Actual     float64 `json:"actual"`
	Maximum    float64 `json:"maximum"`
	Percentage float64 `json:"percentage"`
}

// Aggregate sums actual and maximum points. Unscored components count as 0,
// so the percentage is only meaningful once everything is scored.
func Aggregate(comps []evaluation.Component) Totals {
	var t Totals
	for _, c := range comps {
		if c.ActualPoint != nil {
			t.Actual += *c.ActualPoint
		}
		t.Maximum += c.MaximumPoint
	}
	if t.Maximum > 0 {
		t.Percentage = 100 * t.Actual / t.Maximum
	}
	return t
}

// Round2 rounds to two decimals for display.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// Share is one slice of the final-review breakdown.
type Share struct {
	ComponentID   string   `json:"componentId"`
	ComponentName string   `json:"componentName"`
	Actual        *float64 `json:"actual"`
	Maximum       float64  `json:"maximum"`
	Percentage    float64  `json:"percentage"` // of this component's own maximum
	ShareOfTotal  float64  `json:"shareOfTotal"`
}

// Breakdown returns per-component percentages and each component's share of
// the total actual points (the pie chart in the final review).
func Breakdown(comps []evaluation.Component) []Share {
	total := Aggregate(comps).Actual
	out := make([]Share, 0, len(comps))
	for _, c := range comps {
		sh := Share{
			ComponentID:   c.ID,
			ComponentName: c.ComponentName,
			Actual:        c.ActualPoint,
			Maximum:       c.MaximumPoint,
		}
		if sh.ComponentName == "" {
			sh.ComponentName = ComponentName(c.TypeName)
		}
		if c.ActualPoint != nil {
			if c.MaximumPoint > 0 {
				sh.Percentage = Round2(100 * *c.ActualPoint / c.MaximumPoint)
			}
			if total > 0 {
				sh.ShareOfTotal = Round2(100 * *c.ActualPoint / total)
			}
		}
		out = append(out, sh)
	}
	return out
}

// ComponentName turns a snake_case type name into Title Case:
// "BUSINESS_MODEL" -> "Business Model".
func ComponentName(typeName string) string {
	parts := strings.FieldsFunc(typeName, func(r rune) bool { return r == '_' || r == ' ' })
	for i, p := range parts {
		p = strings.ToLower(p)
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
