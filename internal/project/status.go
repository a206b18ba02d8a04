package project

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the lifecycle state of a project as reported by the backend.
type Status string

const (
	StatusUnknown              Status = ""
	StatusDraft                Status = "DRAFT"
	StatusPendingApproval      Status = "PENDING_APPROVAL"
	StatusUnderReview          Status = "UNDER_REVIEW"
	StatusApproved             Status = "APPROVED"
	StatusRejected             Status = "REJECTED"
	StatusResubmit             Status = "RESUBMIT"
	StatusProcessing           Status = "PROCESSING"
	StatusFundraisingCompleted Status = "FUNDRAISING_COMPLETED"
	StatusCompleted            Status = "COMPLETED"
	StatusSuspended            Status = "SUSPENDED"
	StatusBan                  Status = "BAN"
)

var knownStatuses = map[Status]struct{}{
	StatusDraft: {}, StatusPendingApproval: {}, StatusUnderReview: {}, StatusApproved: {},
	StatusRejected: {}, StatusResubmit: {}, StatusProcessing: {}, StatusFundraisingCompleted: {},
	StatusCompleted: {}, StatusSuspended: {}, StatusBan: {},
}

// ParseStatus accepts any casing and surrounding whitespace.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := knownStatuses[st]; !ok {
		return StatusUnknown, fmt.Errorf("unknown project status %q", s)
	}
	return st, nil
}

// UnmarshalJSON normalizes backend statuses through ParseStatus. A status this
// package does not know is kept as sent and renders read-only.
func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, err := ParseStatus(raw)
	if err != nil {
		*s = Status(strings.TrimSpace(raw))
		return nil
	}
	*s = st
	return nil
}

// IsPostReview reports whether the evaluation for a project in this status has
// already been graded, i.e. whether the "latest graded" endpoint applies.
func (s Status) IsPostReview() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusResubmit, StatusProcessing,
		StatusFundraisingCompleted, StatusCompleted, StatusSuspended, StatusBan:
		return true
	default:
		return false
	}
}

// Panel selects which review panel the dashboard renders.
type Panel string

const (
	PanelPending     Panel = "pending"
	PanelUnderReview Panel = "under_review"
	PanelApproved    Panel = "approved"
	PanelRejected    Panel = "rejected"
	PanelReadOnly    Panel = "read_only"
)

func PanelFor(s Status) Panel {
	switch s {
	case StatusPendingApproval:
		return PanelPending
	case StatusUnderReview:
		return PanelUnderReview
	case StatusApproved, StatusProcessing, StatusFundraisingCompleted, StatusCompleted:
		return PanelApproved
	case StatusRejected, StatusResubmit, StatusBan:
		return PanelRejected
	default:
		return PanelReadOnly
	}
}
