package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	ScoreUpdated               Type = "ScoreUpdated"
	ScoreReverted              Type = "ScoreReverted"
	CommentUpdated             Type = "CommentUpdated"
	FinalReviewOpened          Type = "FinalReviewOpened"
	ProjectApproved            Type = "ProjectApproved"
	ProjectRejected            Type = "ProjectRejected"
	ProjectApprovedUnderReview Type = "ProjectApprovedUnderReview"
	ProjectBanned              Type = "ProjectBanned"
	PayoutTriggered            Type = "PayoutTriggered"
	RefundTriggered            Type = "RefundTriggered"
	SettingUpdated             Type = "SettingUpdated"
)

type Event struct {
	Seq       int64           `json:"seq"`
	ID        string          `json:"id"`
	Type      Type            `json:"type"`
	ProjectID string          `json:"projectId,omitempty"`
	Actor     string          `json:"actor,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt int64           `json:"createdAt"`
}

// Log records what reviewers did. Implementations must be safe for concurrent use.
type Log interface {
	Append(ctx context.Context, e Event) error
	ListByProject(ctx context.Context, projectID string, limit int) ([]Event, error)
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	data := string(e.Data)
	if data == "" {
		data = "{}"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (id, typ, project_id, actor, data, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, string(e.Type), e.ProjectID, e.Actor, data, time.Now().Unix())
	return err
}

// ListByProject returns the newest events first.
func (r *EventRepo) ListByProject(ctx context.Context, projectID string, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, id, typ, project_id, actor, data, created_at
		   FROM event_log WHERE project_id=$1
		  ORDER BY seq DESC LIMIT $2`, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var (
			e    Event
			typ  string
			data string
		)
		if err := rows.Scan(&e.Seq, &e.ID, &typ, &e.ProjectID, &e.Actor, &data, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = Type(typ)
		e.Data = json.RawMessage(data)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Data marshals v for Event.Data, ignoring marshal failures.
func Data(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
