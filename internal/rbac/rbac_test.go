package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckerDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)
	cases := []struct {
		role, perm string
		want       bool
	}{
		{RoleAdmin, "phase:payout", true},
		{RoleAdmin, "settings:edit", true},
		{RoleManager, "evaluation:score", true},
		{RoleManager, "project:decide", true},
		{RoleManager, "project:ban", false},
		{RoleManager, "phase:refund", false},
		{RoleManager, "users:create", false},
		{"guest", "evaluation:view", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%s, %s) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestWildcardSuffix(t *testing.T) {
	c := NewChecker(map[string][]string{"ops": {"phase:*"}})
	if !c.Has("ops", "phase:payout") || c.Has("ops", "project:ban") {
		t.Fatal("prefix wildcard mismatch")
	}
	if !c.Any("ops", "project:ban", "phase:view") {
		t.Fatal("Any should match one permission")
	}
}

func TestRequireMiddleware(t *testing.T) {
	h := Require("project:ban")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for role, want := range map[string]int{
		RoleAdmin:   http.StatusNoContent,
		RoleManager: http.StatusForbidden,
		"":          http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPost, "/projects/p1/ban", nil)
		if role != "" {
			req = req.WithContext(WithRole(context.Background(), role))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("role %q: status %d, want %d", role, rec.Code, want)
		}
	}
}
