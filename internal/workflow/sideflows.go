package workflow

import (
	"context"
	"strings"

	"github.com/mind-engage/fundreview/internal/audit"
	"github.com/mind-engage/fundreview/internal/project"
)

// ApproveUnderReview moves an under-review project on once at least one phase
// has every required document uploaded.
func (r *Registry) ApproveUnderReview(ctx context.Context, projectID string) (string, error) {
	p, err := r.api.Project(ctx, projectID)
	if err != nil {
		return "", err
	}
	if p.Status != project.StatusUnderReview {
		return "", guard("approve under review", "project is %s, not %s", p.Status, project.StatusUnderReview)
	}
	phases, err := r.api.Phases(ctx, projectID)
	if err != nil {
		return "", err
	}
	if !project.AnyPhaseReady(phases) {
		return "", guard("approve under review", "no phase has all required documents")
	}
	msg, err := r.api.ApproveUnderReview(ctx, projectID)
	if err != nil {
		return "", err
	}
	if s, ok := r.lookup(projectID); ok {
		s.resolve(OutcomeApproved, msg)
	}
	recordEvent(ctx, r.events, audit.ProjectApprovedUnderReview, projectID, nil)
	return msg, nil
}

// Ban rejects an under-review project for good. confirm must be set.
func (r *Registry) Ban(ctx context.Context, projectID string, confirm bool, reason string) (string, error) {
	if !confirm {
		return "", guard("ban", "confirmation required")
	}
	p, err := r.api.Project(ctx, projectID)
	if err != nil {
		return "", err
	}
	if p.Status != project.StatusUnderReview {
		return "", guard("ban", "project is %s, not %s", p.Status, project.StatusUnderReview)
	}
	reason = strings.TrimSpace(reason)
	msg, err := r.api.BanUnderReview(ctx, projectID, reason)
	if err != nil {
		return "", err
	}
	if s, ok := r.lookup(projectID); ok {
		s.resolve(OutcomeRejected, msg)
	}
	recordEvent(ctx, r.events, audit.ProjectBanned, projectID, map[string]any{"reason": reason})
	return msg, nil
}

func (r *Registry) findPhase(ctx context.Context, op, projectID, phaseID string) (project.Phase, error) {
	phases, err := r.api.Phases(ctx, projectID)
	if err != nil {
		return project.Phase{}, err
	}
	for _, ph := range phases {
		if ph.ID == phaseID {
			return ph, nil
		}
	}
	return project.Phase{}, guard(op, "phase %s not found in project %s", phaseID, projectID)
}

// Payout releases the funds of a completed phase. The phase needs all of its
// required documents and the project must have no pending payment.
func (r *Registry) Payout(ctx context.Context, projectID, phaseID string) (string, error) {
	ph, err := r.findPhase(ctx, "payout", projectID, phaseID)
	if err != nil {
		return "", err
	}
	if ph.Status != project.PhaseCompleted {
		return "", guard("payout", "phase is %s, not %s", ph.Status, project.PhaseCompleted)
	}
	if missing := ph.MissingDocuments(); len(missing) > 0 {
		return "", guard("payout", "missing documents: %s", strings.Join(missing, ", "))
	}
	pending, err := r.api.PendingPayment(ctx, projectID)
	if err != nil {
		return "", err
	}
	if pending > 0 {
		return "", guard("payout", "project has %.2f in pending payments", pending)
	}
	msg, err := r.api.Payout(ctx, phaseID)
	if err != nil {
		return "", err
	}
	recordEvent(ctx, r.events, audit.PayoutTriggered, projectID, map[string]any{"phaseId": phaseID})
	return msg, nil
}

// Refund returns a phase's investments. confirm must be set.
func (r *Registry) Refund(ctx context.Context, projectID, phaseID string, confirm bool) (string, error) {
	if !confirm {
		return "", guard("refund", "confirmation required")
	}
	ph, err := r.findPhase(ctx, "refund", projectID, phaseID)
	if err != nil {
		return "", err
	}
	switch ph.Status {
	case project.PhaseDisbursed, project.PhaseRefunded:
		return "", guard("refund", "phase is already %s", ph.Status)
	}
	msg, err := r.api.Refund(ctx, phaseID)
	if err != nil {
		return "", err
	}
	recordEvent(ctx, r.events, audit.RefundTriggered, projectID, map[string]any{"phaseId": phaseID})
	return msg, nil
}

func (r *Registry) Investments(ctx context.Context, phaseID string) ([]project.Investment, error) {
	return r.api.Investments(ctx, phaseID)
}
