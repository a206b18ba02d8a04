package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/mind-engage/fundreview/internal/evaluation"
	"github.com/mind-engage/fundreview/internal/project"
	"github.com/mind-engage/fundreview/internal/scoring"
)

// State of a review session.
type State string

const (
	StateIdle          State = "idle"
	StateLoading       State = "loading"
	StateScoring       State = "scoring"
	StateReadyToSubmit State = "ready_to_submit"
	StateFinalReview   State = "final_review"
	StateSubmitting    State = "submitting"
	StateResolved      State = "resolved"
)

type Outcome string

const (
	OutcomeNone     Outcome = ""
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

type Decision struct {
	Action Action
	Reason string
}

// ErrLoginRequired means the backend keeps answering 401; the reviewer has to
// sign in again.
var ErrLoginRequired = errors.New("login required")

// GuardError is a client-side precondition failure. No backend call was made.
type GuardError struct {
	Op     string
	Reason string
}

func (e *GuardError) Error() string { return fmt.Sprintf("%s: %s", e.Op, e.Reason) }

func guard(op, format string, args ...any) error {
	return &GuardError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

func IsGuard(err error) bool {
	var ge *GuardError
	return errors.As(err, &ge)
}

// Summary is what the final-review dialog shows before a decision.
type Summary struct {
	ProjectID       string                 `json:"projectId"`
	Totals          scoring.Totals         `json:"totals"`
	Breakdown       []scoring.Share        `json:"breakdown"`
	Thresholds      scoring.Thresholds     `json:"thresholds"`
	Classification  scoring.Classification `json:"classification"`
	RejectionReason string                 `json:"rejectionReason"`
}

// Snapshot is a read-only copy of a session for rendering.
type Snapshot struct {
	ProjectID      string                       `json:"projectId"`
	Project        project.Project              `json:"project"`
	Panel          project.Panel                `json:"panel"`
	State          State                        `json:"state"`
	Outcome        Outcome                      `json:"outcome,omitempty"`
	Thresholds     scoring.Thresholds           `json:"thresholds"`
	Components     []evaluation.Component       `json:"components"`
	Items          map[string][]evaluation.Item `json:"items"`
	Totals         scoring.Totals               `json:"totals"`
	Classification scoring.Classification       `json:"classification"`
	AllScored      bool                         `json:"allScored"`
	Summary        *Summary                     `json:"summary,omitempty"`
	Message        string                       `json:"message,omitempty"`
}

// Backend is the subset of the remote API the workflow drives.
type Backend interface {
	evaluation.Saver

	HasToken() bool
	Project(ctx context.Context, projectID string) (project.Project, error)
	GradeEvaluations(ctx context.Context, projectID string) ([]evaluation.Component, error)
	LatestGradedEvaluations(ctx context.Context, projectID string) ([]evaluation.Component, error)
	FounderEvaluations(ctx context.Context, projectID string) ([]evaluation.Component, error)
	EvaluationItems(ctx context.Context, evaluationID string) ([]evaluation.Item, error)

	ApproveProject(ctx context.Context, projectID string) (string, error)
	RejectProject(ctx context.Context, projectID, reason string) (string, error)
	ApproveUnderReview(ctx context.Context, projectID string) (string, error)
	BanUnderReview(ctx context.Context, projectID, reason string) (string, error)

	Phases(ctx context.Context, projectID string) ([]project.Phase, error)
	Investments(ctx context.Context, phaseID string) ([]project.Investment, error)
	PendingPayment(ctx context.Context, projectID string) (float64, error)
	Payout(ctx context.Context, phaseID string) (string, error)
	Refund(ctx context.Context, phaseID string) (string, error)
}

type ThresholdSource interface {
	Thresholds(ctx context.Context) (scoring.Thresholds, error)
}
