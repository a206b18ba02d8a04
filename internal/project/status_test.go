package project

import (
	"encoding/json"
	"testing"
)

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" under_review ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st != StatusUnderReview {
		t.Fatalf("got %q", st)
	}
	if _, err := ParseStatus("ARCHIVED"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestStatusDecodesLoosely(t *testing.T) {
	var p Project
	if err := json.Unmarshal([]byte(`{"id":"p1","status":" under_review "}`), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Status != StatusUnderReview || PanelFor(p.Status) != PanelUnderReview {
		t.Fatalf("status = %q", p.Status)
	}
	if err := json.Unmarshal([]byte(`{"status":"Approved"}`), &p); err != nil || !p.Status.IsPostReview() {
		t.Fatalf("mixed case status = %q, %v", p.Status, err)
	}
	if err := json.Unmarshal([]byte(`{"status":"ARCHIVED"}`), &p); err != nil {
		t.Fatalf("unknown status must still decode: %v", err)
	}
	if PanelFor(p.Status) != PanelReadOnly {
		t.Fatalf("unknown status panel = %s", PanelFor(p.Status))
	}
	if err := json.Unmarshal([]byte(`{"status":null}`), &p); err != nil || p.Status != StatusUnknown {
		t.Fatalf("null status = %q, %v", p.Status, err)
	}
}

func TestPanelFor(t *testing.T) {
	cases := map[Status]Panel{
		StatusPendingApproval: PanelPending,
		StatusUnderReview:     PanelUnderReview,
		StatusApproved:        PanelApproved,
		StatusRejected:        PanelRejected,
		StatusBan:             PanelRejected,
		StatusDraft:           PanelReadOnly,
	}
	for st, want := range cases {
		if got := PanelFor(st); got != want {
			t.Errorf("PanelFor(%s) = %s, want %s", st, got, want)
		}
	}
}

func TestIsPostReview(t *testing.T) {
	if StatusPendingApproval.IsPostReview() || StatusUnderReview.IsPostReview() {
		t.Fatalf("pre-review statuses must use the grade endpoint")
	}
	if !StatusApproved.IsPostReview() || !StatusResubmit.IsPostReview() {
		t.Fatalf("graded statuses must use the latest endpoint")
	}
}

func TestPhaseMissingDocuments(t *testing.T) {
	p := Phase{
		RequiredDocuments: []string{"INVOICE", "REPORT"},
		Documents: []Document{
			{Type: "INVOICE", URL: "https://files.example/inv.pdf"},
			{Type: "REPORT"}, // uploaded record without a file
		},
	}
	missing := p.MissingDocuments()
	if len(missing) != 1 || missing[0] != "REPORT" {
		t.Fatalf("missing = %v", missing)
	}
	if AnyPhaseReady([]Phase{p}) {
		t.Fatalf("phase with missing docs must not be ready")
	}
	p.Documents[1].URL = "https://files.example/rep.pdf"
	if !AnyPhaseReady([]Phase{{RequiredDocuments: []string{"X"}}, p}) {
		t.Fatalf("expected a ready phase")
	}
}
