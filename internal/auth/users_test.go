package auth_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/fundreview/internal/auth"
	"github.com/mind-engage/fundreview/internal/db"
	"github.com/mind-engage/fundreview/internal/rbac"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return dbh
}

func newRepo(t *testing.T) *auth.UserRepo {
	auth.BcryptCost = bcrypt.MinCost
	return auth.NewUserRepo(openTestDB(t), rbac.ValidRole)
}

func TestCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	u, err := repo.Create(ctx, " alice ", "s3cret-pass", "Manager")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Username != "alice" || u.Role != rbac.RoleManager || u.ID == "" {
		t.Fatalf("unexpected user %+v", u)
	}
	if _, err := repo.Create(ctx, "alice", "other-pass", "admin"); !errors.Is(err, auth.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if _, err := repo.Create(ctx, "bob", "pw", "student"); !errors.Is(err, auth.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	got, err := repo.Authenticate(ctx, "alice", "s3cret-pass")
	if err != nil || got.ID != u.ID {
		t.Fatalf("authenticate: %+v %v", got, err)
	}
	if _, err := repo.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := repo.Authenticate(ctx, "nobody", "x"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	hash, _ := bcrypt.GenerateFromPassword([]byte("admin-pw"), bcrypt.MinCost)

	for i := 0; i < 2; i++ {
		if err := repo.SeedAdmin(ctx, "root", string(hash)); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	users, err := repo.List(ctx, rbac.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].Username != "root" {
		t.Fatalf("expected one seeded admin, got %+v", users)
	}
	if _, err := repo.Authenticate(ctx, "root", "admin-pw"); err != nil {
		t.Fatalf("seeded admin cannot log in: %v", err)
	}
}

func TestUpdateRoleGuardsLastAdmin(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	admin, _ := repo.Create(ctx, "root", "pw", rbac.RoleAdmin)
	mgr, _ := repo.Create(ctx, "mgr", "pw", rbac.RoleManager)

	if err := repo.UpdateRole(ctx, admin.ID, rbac.RoleManager); !errors.Is(err, auth.ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}
	if err := repo.UpdateRole(ctx, "mgr", rbac.RoleAdmin); err != nil {
		t.Fatalf("promote by username: %v", err)
	}
	if err := repo.UpdateRole(ctx, admin.ID, rbac.RoleManager); err != nil {
		t.Fatalf("demote with another admin present: %v", err)
	}
	if role, _ := repo.Role(ctx, mgr.ID); role != rbac.RoleAdmin {
		t.Fatalf("role = %q", role)
	}
	if err := repo.UpdateRole(ctx, "ghost", rbac.RoleAdmin); !errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	u, _ := repo.Create(ctx, "alice", "old-pw", rbac.RoleManager)

	if err := repo.ChangePassword(ctx, u.ID, "nope", "new-pw"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := repo.ChangePassword(ctx, u.ID, "old-pw", "new-pw"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, err := repo.Authenticate(ctx, "alice", "new-pw"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
