package scoring

import "fmt"

// Thresholds are percentage boundaries (0-100). They are expected to satisfy
// Excellent >= Pass >= Resubmit; Classify does not check this.
type Thresholds struct {
	Pass      float64 `json:"pass"`
	Excellent float64 `json:"excellent"`
	Resubmit  float64 `json:"resubmit"`
}

func (t Thresholds) Ordered() bool {
	return t.Excellent >= t.Pass && t.Pass >= t.Resubmit
}

type Category string

const (
	CategoryPotential Category = "Potential/Excellent"
	CategoryPass      Category = "Pass/Approved"
	CategoryResubmit  Category = "Needs Improvement/Resubmit"
	CategoryReject    Category = "Below Standards/Reject"
)

type Recommendation string

const (
	RecommendApprove Recommendation = "approve"
	RecommendReject  Recommendation = "reject"
)

// Severity distinguishes a soft reject (resubmission welcome) from a hard one.
type Severity string

const (
	SeverityNone Severity = "none"
	SeveritySoft Severity = "soft"
	SeverityHard Severity = "hard"
)

type Classification struct {
	Category       Category       `json:"category"`
	Recommendation Recommendation `json:"recommendation"`
	Severity       Severity       `json:"severity"`
	Message        string         `json:"message"`
}

// Classify maps a percentage to a category; the first matching band wins.
func Classify(pct float64, t Thresholds) Classification {
	switch {
	case pct >= t.Excellent:
		return Classification{
			Category:       CategoryPotential,
			Recommendation: RecommendApprove,
			Severity:       SeverityNone,
			Message:        fmt.Sprintf("Score %.2f%% meets the excellence threshold (%.0f%%). The project shows strong potential.", pct, t.Excellent),
		}
	case pct >= t.Pass:
		return Classification{
			Category:       CategoryPass,
			Recommendation: RecommendApprove,
			Severity:       SeverityNone,
			Message:        fmt.Sprintf("Score %.2f%% meets the pass threshold (%.0f%%).", pct, t.Pass),
		}
	case pct >= t.Resubmit:
		return Classification{
			Category:       CategoryResubmit,
			Recommendation: RecommendReject,
			Severity:       SeveritySoft,
			Message:        fmt.Sprintf("Score %.2f%% is below the pass threshold (%.0f%%). The project needs improvement and may be resubmitted.", pct, t.Pass),
		}
	default:
		return Classification{
			Category:       CategoryReject,
			Recommendation: RecommendReject,
			Severity:       SeverityHard,
			Message:        fmt.Sprintf("Score %.2f%% is below the resubmission threshold (%.0f%%). The project does not meet platform standards.", pct, t.Resubmit),
		}
	}
}
