package evaluation

// Component is one scored category of a project review (e.g. "Business Model").
// ActualPoint stays nil until every child Item is scored.
type Component struct {
	ID            string   `json:"id"`
	TypeName      string   `json:"typeName"`
	ComponentName string   `json:"componentName"`
	ActualPoint   *float64 `json:"actualPoint"`
	MaximumPoint  float64  `json:"maximumPoint"`
	Comment       string   `json:"comment"`
}

// Item is one rubric line within a component.
type Item struct {
	ID                 string   `json:"id"`
	EvaluationID       string   `json:"evaluationId"`
	BasicRequirement   string   `json:"basicRequirement"`
	EvaluationCriteria string   `json:"evaluationCriteria"`
	MaxPoint           float64  `json:"maxPoint"`
	ActualPoint        *float64 `json:"actualPoint"`
}

func Point(v float64) *float64 { return &v }
