package project

import "time"

type Project struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Status       Status  `json:"status"`
	TargetAmount float64 `json:"totalTargetAmount,omitempty"`
	RaisedAmount float64 `json:"totalRaisedAmount,omitempty"`
	CreatorID    string  `json:"creatorId,omitempty"`
}

type PhaseStatus string

const (
	PhasePlan      PhaseStatus = "PLAN"
	PhaseProcess   PhaseStatus = "PROCESS"
	PhaseCompleted PhaseStatus = "COMPLETED"
	PhaseDisbursed PhaseStatus = "DISBURSED"
	PhaseFailed    PhaseStatus = "FAILED"
	PhaseRefunded  PhaseStatus = "REFUNDED"
)

type Document struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

type Milestone struct {
	ID          string `json:"id"`
	PhaseID     string `json:"phaseId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Phase is a funding period of a project. RequiredDocuments lists the
// document types that must be uploaded before the phase can be approved or
// paid out.
type Phase struct {
	ID                string      `json:"id"`
	ProjectID         string      `json:"projectId"`
	PhaseNumber       int         `json:"phaseNumber"`
	Status            PhaseStatus `json:"status"`
	TargetAmount      float64     `json:"targetAmount"`
	RaisedAmount      float64     `json:"raiseAmount"`
	StartDate         *time.Time  `json:"startDate,omitempty"`
	EndDate           *time.Time  `json:"endDate,omitempty"`
	RequiredDocuments []string    `json:"requiredDocuments"`
	Documents         []Document  `json:"documents"`
	Milestones        []Milestone `json:"milestones,omitempty"`
}

// MissingDocuments returns the required document types with no uploaded document.
func (p Phase) MissingDocuments() []string {
	have := make(map[string]struct{}, len(p.Documents))
	for _, d := range p.Documents {
		if d.URL != "" {
			have[d.Type] = struct{}{}
		}
	}
	var missing []string
	for _, req := range p.RequiredDocuments {
		if _, ok := have[req]; !ok {
			missing = append(missing, req)
		}
	}
	return missing
}

func (p Phase) HasAllRequiredDocuments() bool { return len(p.MissingDocuments()) == 0 }

// AnyPhaseReady reports whether at least one phase has every required document.
func AnyPhaseReady(phases []Phase) bool {
	for _, p := range phases {
		if p.HasAllRequiredDocuments() {
			return true
		}
	}
	return false
}

type Investment struct {
	ID         string    `json:"id"`
	PhaseID    string    `json:"phaseId"`
	InvestorID string    `json:"investorId"`
	Amount     float64   `json:"amount"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}
