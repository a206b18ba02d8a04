package audit_test

import (
	"context"
	"testing"

	"github.com/mind-engage/fundreview/internal/audit"
	"github.com/mind-engage/fundreview/internal/db"
)

func TestEventRepoAppendAndList(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dbh.Close()

	repo := audit.NewEventRepo(dbh)
	events := []audit.Event{
		{Type: audit.ScoreUpdated, ProjectID: "p1", Actor: "alice", Data: audit.Data(map[string]any{"itemId": "i1", "point": 3})},
		{Type: audit.ProjectApproved, ProjectID: "p1", Actor: "alice"},
		{Type: audit.ProjectBanned, ProjectID: "p2", Actor: "bob"},
	}
	for _, e := range events {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.ListByProject(ctx, "p1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events for p1, got %d", len(got))
	}
	if got[0].Type != audit.ProjectApproved || got[1].Type != audit.ScoreUpdated {
		t.Fatalf("expected newest first, got %s then %s", got[0].Type, got[1].Type)
	}
	if got[0].ID == "" || string(got[0].Data) != "{}" {
		t.Fatalf("defaults not applied: %+v", got[0])
	}
}
