package scoring

import (
	"errors"
	"testing"

	"github.com/mind-engage/fundreview/internal/evaluation"
)

var defaults = Thresholds{Pass: 70, Excellent: 90, Resubmit: 30}

func TestAggregateScenario(t *testing.T) {
	got := Aggregate([]evaluation.Component{
		{ActualPoint: evaluation.Point(8), MaximumPoint: 10},
		{ActualPoint: evaluation.Point(18), MaximumPoint: 20},
	})
	if got.Actual != 26 || got.Maximum != 30 {
		t.Fatalf("totals = %+v", got)
	}
	if Round2(got.Percentage) != 86.67 {
		t.Fatalf("percentage = %v", got.Percentage)
	}
}

func TestAggregateEdgeCases(t *testing.T) {
	if got := Aggregate(nil); got != (Totals{}) {
		t.Fatalf("empty = %+v", got)
	}
	got := Aggregate([]evaluation.Component{{ActualPoint: evaluation.Point(3)}, {}})
	if got.Percentage != 0 {
		t.Fatalf("zero maximum must give 0%%, got %v", got.Percentage)
	}
	got = Aggregate([]evaluation.Component{
		{ActualPoint: evaluation.Point(4), MaximumPoint: 5},
		{MaximumPoint: 5},
	})
	if got.Actual != 4 || got.Maximum != 10 || got.Percentage != 40 {
		t.Fatalf("partial = %+v", got)
	}
	if got.Actual > got.Maximum {
		t.Fatalf("actual exceeds maximum")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		pct float64
		cat Category
		rec Recommendation
		sev Severity
	}{
		{95, CategoryPotential, RecommendApprove, SeverityNone},
		{90, CategoryPotential, RecommendApprove, SeverityNone},
		{80, CategoryPass, RecommendApprove, SeverityNone},
		{70, CategoryPass, RecommendApprove, SeverityNone},
		{50, CategoryResubmit, RecommendReject, SeveritySoft},
		{30, CategoryResubmit, RecommendReject, SeveritySoft},
		{10, CategoryReject, RecommendReject, SeverityHard},
	}
	for _, c := range cases {
		got := Classify(c.pct, defaults)
		if got.Category != c.cat || got.Recommendation != c.rec || got.Severity != c.sev {
			t.Errorf("Classify(%v) = %+v", c.pct, got)
		}
		if got.Message == "" {
			t.Errorf("Classify(%v) has no message", c.pct)
		}
	}
}

func TestThresholdsOrdered(t *testing.T) {
	if !defaults.Ordered() {
		t.Fatalf("defaults must be ordered")
	}
	if (Thresholds{Pass: 80, Excellent: 70, Resubmit: 30}).Ordered() {
		t.Fatalf("excellent below pass is not ordered")
	}
}

func TestComponentName(t *testing.T) {
	cases := map[string]string{
		"BUSINESS_MODEL":      "Business Model",
		"team":                "Team",
		"market_size_and_fit": "Market Size And Fit",
		"":                    "",
	}
	for in, want := range cases {
		if got := ComponentName(in); got != want {
			t.Errorf("ComponentName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidatePoint(t *testing.T) {
	if err := ValidatePoint(2.5, 5); err != nil {
		t.Fatalf("half point under max 5: %v", err)
	}
	if err := ValidatePoint(2.5, 10); !errors.Is(err, ErrInvalidPoint) {
		t.Fatalf("half point over max 5 must fail, got %v", err)
	}
	if err := ValidatePoint(-1, 10); !errors.Is(err, ErrInvalidPoint) {
		t.Fatalf("negative must fail")
	}
	if err := ValidatePoint(11, 10); !errors.Is(err, ErrInvalidPoint) {
		t.Fatalf("above max must fail")
	}
	if err := ValidatePoint(10, 10); err != nil {
		t.Fatalf("max itself is valid: %v", err)
	}
}

func TestAllowedPoints(t *testing.T) {
	got := AllowedPoints(2)
	want := []float64{0, 0.5, 1, 1.5, 2}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v", got)
		}
	}
	if n := len(AllowedPoints(10)); n != 11 {
		t.Fatalf("max 10 should give 11 options, got %d", n)
	}
}

func TestBreakdown(t *testing.T) {
	shares := Breakdown([]evaluation.Component{
		{ID: "a", TypeName: "TEAM", ActualPoint: evaluation.Point(8), MaximumPoint: 10},
		{ID: "b", ComponentName: "Market", ActualPoint: evaluation.Point(2), MaximumPoint: 10},
	})
	if shares[0].ComponentName != "Team" || shares[0].Percentage != 80 || shares[0].ShareOfTotal != 80 {
		t.Fatalf("share a = %+v", shares[0])
	}
	if shares[1].ShareOfTotal != 20 {
		t.Fatalf("share b = %+v", shares[1])
	}
}
