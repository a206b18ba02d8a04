package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mind-engage/fundreview/internal/audit"
	"github.com/mind-engage/fundreview/internal/backend"
	"github.com/mind-engage/fundreview/internal/evaluation"
	"github.com/mind-engage/fundreview/internal/project"
	"github.com/mind-engage/fundreview/internal/scoring"
)

// maxLoadRetries bounds the automatic retries of the initial evaluation fetch.
const maxLoadRetries = 2

// Session drives the review of one project:
//
//	idle -> loading -> scoring <-> ready_to_submit -> final_review -> submitting -> resolved
//
// A failed submission goes back to final_review.
type Session struct {
	projectID  string
	api        Backend
	thresholds ThresholdSource
	events     audit.Log
	backoff    time.Duration

	store  *evaluation.Store
	writer *evaluation.Writer

	mu      sync.Mutex
	state   State
	outcome Outcome
	proj    project.Project
	thr     scoring.Thresholds
	summary *Summary
	message string
}

func newSession(projectID string, api Backend, thr ThresholdSource, events audit.Log, backoff time.Duration) *Session {
	st := evaluation.NewStore()
	return &Session{
		projectID:  projectID,
		api:        api,
		thresholds: thr,
		events:     events,
		backoff:    backoff,
		store:      st,
		writer:     evaluation.NewWriter(st, api),
		state:      StateIdle,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// begin moves the session into a transient state when it is currently in
// one of from, returning the state to restore on failure.
func (s *Session) begin(op string, to State, from ...State) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range from {
		if s.state == f {
			prev := s.state
			s.state = to
			return prev, nil
		}
	}
	return "", guard(op, "not allowed while %s", s.state)
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// scoringState picks scoring or ready_to_submit from the current data.
func (s *Session) scoringState() State {
	if evaluation.AreAllEvaluationsScored(s.store.Snapshot()) {
		return StateReadyToSubmit
	}
	return StateScoring
}

// Load fetches the project, thresholds and evaluation components. It may be
// called again to refresh a session that is not mid-submission.
func (s *Session) Load(ctx context.Context) error {
	prev, err := s.begin("load", StateLoading,
		StateIdle, StateScoring, StateReadyToSubmit, StateFinalReview, StateResolved)
	if err != nil {
		return err
	}

	// thresholds fall back to defaults on error; the review is not blocked
	thr, _ := s.thresholds.Thresholds(ctx)

	proj, comps, err := s.fetchWithRetry(ctx)
	if err != nil {
		s.setState(prev)
		return err
	}
	_ = s.store.Update(func(st evaluation.State) (evaluation.State, error) {
		return evaluation.SetComponents(st, comps), nil
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.proj = proj
	s.thr = thr
	s.summary = nil
	switch project.PanelFor(proj.Status) {
	case project.PanelApproved:
		s.state, s.outcome = StateResolved, OutcomeApproved
	case project.PanelRejected:
		s.state, s.outcome = StateResolved, OutcomeRejected
	default:
		s.state, s.outcome = s.scoringState(), OutcomeNone
	}
	return nil
}

func (s *Session) fetchWithRetry(ctx context.Context) (project.Project, []evaluation.Component, error) {
	attempts := 1
	if s.api.HasToken() {
		attempts += maxLoadRetries
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return project.Project{}, nil, ctx.Err()
			case <-time.After(s.backoff):
			}
		}
		proj, comps, err := s.fetch(ctx)
		if err == nil {
			return proj, comps, nil
		}
		lastErr = err
		log.Printf("load evaluation for project %s (attempt %d/%d): %v", s.projectID, i+1, attempts, err)
	}
	if errors.Is(lastErr, backend.ErrUnauthorized) {
		return project.Project{}, nil, ErrLoginRequired
	}
	return project.Project{}, nil, lastErr
}

func (s *Session) fetch(ctx context.Context) (project.Project, []evaluation.Component, error) {
	proj, err := s.api.Project(ctx, s.projectID)
	if err != nil {
		return project.Project{}, nil, err
	}
	comps, err := s.fetchComponents(ctx, proj.Status)
	return proj, comps, err
}

func (s *Session) fetchComponents(ctx context.Context, status project.Status) ([]evaluation.Component, error) {
	var (
		comps []evaluation.Component
		err   error
	)
	if status.IsPostReview() {
		comps, err = s.api.LatestGradedEvaluations(ctx, s.projectID)
	} else {
		comps, err = s.api.GradeEvaluations(ctx, s.projectID)
	}
	if err != nil {
		return nil, err
	}
	for i := range comps {
		if comps[i].ComponentName == "" {
			comps[i].ComponentName = scoring.ComponentName(comps[i].TypeName)
		}
	}
	return comps, nil
}

// FounderView returns the founder-facing evaluation without touching the session.
func (s *Session) FounderView(ctx context.Context) ([]evaluation.Component, error) {
	comps, err := s.api.FounderEvaluations(ctx, s.projectID)
	if err != nil {
		return nil, err
	}
	for i := range comps {
		if comps[i].ComponentName == "" {
			comps[i].ComponentName = scoring.ComponentName(comps[i].TypeName)
		}
	}
	return comps, nil
}

// LoadItems fetches the rubric items of one component.
func (s *Session) LoadItems(ctx context.Context, componentID string) ([]evaluation.Item, error) {
	switch s.State() {
	case StateIdle, StateLoading:
		return nil, guard("load items", "evaluation not loaded")
	}
	if _, ok := s.store.Snapshot().Component(componentID); !ok {
		return nil, guard("load items", "unknown evaluation component %s", componentID)
	}
	items, err := s.api.EvaluationItems(ctx, componentID)
	if err != nil {
		return nil, err
	}
	_ = s.store.Update(func(st evaluation.State) (evaluation.State, error) {
		return evaluation.SetItems(st, componentID, items), nil
	})
	s.refreshScoring()
	return items, nil
}

// refreshScoring re-evaluates the scoring guard while the session is scoring.
func (s *Session) refreshScoring() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateScoring || s.state == StateReadyToSubmit {
		s.state = s.scoringState()
	}
}

func (s *Session) editable(op string) error {
	switch st := s.State(); st {
	case StateScoring, StateReadyToSubmit:
		return nil
	default:
		return guard(op, "evaluation is not editable while %s", st)
	}
}

// ScoreItem assigns a point to a rubric item. The change is visible at once
// and rolled back if the backend refuses it.
func (s *Session) ScoreItem(ctx context.Context, itemID string, point float64) error {
	if err := s.editable("score item"); err != nil {
		return err
	}
	it, _, ok := s.store.Snapshot().FindItem(itemID)
	if !ok {
		return guard("score item", "unknown evaluation item %s", itemID)
	}
	if err := scoring.ValidatePoint(point, it.MaxPoint); err != nil {
		return guard("score item", "%v", err)
	}

	err := s.writer.ScoreItem(ctx, itemID, point)
	typ := audit.ScoreUpdated
	if err != nil {
		typ = audit.ScoreReverted
	}
	s.record(ctx, typ, map[string]any{"itemId": itemID, "point": point})
	s.refreshScoring()
	return err
}

func (s *Session) CommentComponent(ctx context.Context, componentID, comment string) error {
	if err := s.editable("comment"); err != nil {
		return err
	}
	if err := s.writer.CommentComponent(ctx, componentID, comment); err != nil {
		if errors.Is(err, evaluation.ErrComponentNotFound) {
			return guard("comment", "unknown evaluation component %s", componentID)
		}
		return err
	}
	s.record(ctx, audit.CommentUpdated, map[string]any{"componentId": componentID})
	return nil
}

// OpenFinalReview refetches the latest scores and prepares the summary shown
// before a decision.
func (s *Session) OpenFinalReview(ctx context.Context) (Summary, error) {
	if s.State() == StateScoring {
		return Summary{}, guard("final review", "all evaluation components and items must be scored")
	}
	prev, err := s.begin("final review", StateLoading, StateReadyToSubmit)
	if err != nil {
		return Summary{}, err
	}

	s.mu.Lock()
	status := s.proj.Status
	s.mu.Unlock()
	comps, err := s.fetchComponents(ctx, status)
	if err != nil {
		s.setState(prev)
		return Summary{}, err
	}
	_ = s.store.Update(func(st evaluation.State) (evaluation.State, error) {
		return evaluation.SetComponents(st, comps), nil
	})
	snap := s.store.Snapshot()
	if !evaluation.AreAllEvaluationsScored(snap) {
		s.setState(StateScoring)
		return Summary{}, guard("final review", "the latest scores are incomplete")
	}

	thr, _ := s.thresholds.Thresholds(ctx)
	totals := scoring.Aggregate(snap.Components)
	cls := scoring.Classify(totals.Percentage, thr)
	sum := Summary{
		ProjectID:      s.projectID,
		Totals:         totals,
		Breakdown:      scoring.Breakdown(snap.Components),
		Thresholds:     thr,
		Classification: cls,
	}
	if cls.Recommendation == scoring.RecommendReject {
		sum.RejectionReason = cls.Message
	}

	s.mu.Lock()
	s.thr = thr
	s.summary = &sum
	s.state = StateFinalReview
	s.mu.Unlock()

	s.record(ctx, audit.FinalReviewOpened, map[string]any{
		"percentage": scoring.Round2(totals.Percentage),
		"category":   cls.Category,
	})
	return sum, nil
}

func (s *Session) CancelFinalReview() error {
	if _, err := s.begin("cancel final review", StateReadyToSubmit, StateFinalReview); err != nil {
		return err
	}
	s.mu.Lock()
	s.summary = nil
	s.mu.Unlock()
	return nil
}

// Submit sends the reviewer's decision. A reject needs a non-empty reason,
// checked before anything is sent. On failure the session stays in final review.
func (s *Session) Submit(ctx context.Context, d Decision) (string, error) {
	reason := strings.TrimSpace(d.Reason)
	switch d.Action {
	case ActionApprove:
	case ActionReject:
		if reason == "" {
			return "", guard("reject", "a rejection reason is required")
		}
	default:
		return "", guard("submit", "unknown decision %q", d.Action)
	}
	if _, err := s.begin("submit", StateSubmitting, StateFinalReview); err != nil {
		return "", err
	}

	var (
		msg     string
		err     error
		outcome Outcome
		typ     audit.Type
	)
	if d.Action == ActionApprove {
		msg, err = s.api.ApproveProject(ctx, s.projectID)
		outcome, typ = OutcomeApproved, audit.ProjectApproved
	} else {
		msg, err = s.api.RejectProject(ctx, s.projectID, reason)
		outcome, typ = OutcomeRejected, audit.ProjectRejected
	}
	if err != nil {
		s.setState(StateFinalReview)
		return "", fmt.Errorf("submit %s: %w", d.Action, err)
	}

	s.mu.Lock()
	s.state, s.outcome, s.message = StateResolved, outcome, msg
	var pct float64
	if s.summary != nil {
		pct = scoring.Round2(s.summary.Totals.Percentage)
	}
	s.mu.Unlock()

	s.record(ctx, typ, map[string]any{"percentage": pct, "reason": reason})
	return msg, nil
}

// resolve marks the session finished after a side-flow decision.
func (s *Session) resolve(o Outcome, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state, s.outcome, s.message, s.summary = StateResolved, o, msg, nil
}

func (s *Session) Snapshot() Snapshot {
	st := s.store.Snapshot()
	s.mu.Lock()
	defer s.mu.Unlock()
	totals := scoring.Aggregate(st.Components)
	snap := Snapshot{
		ProjectID:      s.projectID,
		Project:        s.proj,
		Panel:          project.PanelFor(s.proj.Status),
		State:          s.state,
		Outcome:        s.outcome,
		Thresholds:     s.thr,
		Components:     st.Components,
		Items:          st.Items,
		Totals:         totals,
		Classification: scoring.Classify(totals.Percentage, s.thr),
		AllScored:      evaluation.AreAllEvaluationsScored(st),
		Message:        s.message,
	}
	if s.summary != nil {
		sum := *s.summary
		snap.Summary = &sum
	}
	return snap
}

func (s *Session) record(ctx context.Context, typ audit.Type, data any) {
	recordEvent(ctx, s.events, typ, s.projectID, data)
}

func recordEvent(ctx context.Context, events audit.Log, typ audit.Type, projectID string, data any) {
	if events == nil {
		return
	}
	e := audit.Event{
		Type:      typ,
		ProjectID: projectID,
		Actor:     audit.ActorFromContext(ctx),
	}
	if data != nil {
		e.Data = audit.Data(data)
	}
	if err := events.Append(context.WithoutCancel(ctx), e); err != nil {
		log.Printf("audit %s for project %s: %v", typ, projectID, err)
	}
}
