package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrLastAdmin          = errors.New("cannot demote the last admin")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
)

// BcryptCost is used for every new password hash.
var BcryptCost = 12

type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt int64  `json:"createdAt"`
}

// UserRepo stores console accounts (admins and managers).
type UserRepo struct {
	db        *sql.DB
	validRole func(string) bool
}

func NewUserRepo(db *sql.DB, validRole func(string) bool) *UserRepo {
	return &UserRepo{db: db, validRole: validRole}
}

func (r *UserRepo) Create(ctx context.Context, username, password, role string) (User, error) {
	username = strings.TrimSpace(username)
	role = strings.ToLower(strings.TrimSpace(role))
	if !r.validRole(role) {
		return User{}, ErrInvalidRole
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return User{}, err
	}
	u := User{ID: uuid.NewString(), Username: username, Role: role, CreatedAt: time.Now().Unix()}
	if err := r.insert(ctx, u, string(hash)); err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *UserRepo) insert(ctx context.Context, u User, hash string) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE username=$1`, u.Username).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrUsernameTaken
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, role, password_hash, created_at) VALUES ($1,$2,$3,$4,$5)`,
		u.ID, u.Username, u.Role, hash, u.CreatedAt)
	return err
}

// SeedAdmin creates the configured admin account on first start. An existing
// account with that username is left alone.
func (r *UserRepo) SeedAdmin(ctx context.Context, username, passHash string) error {
	if username == "" || passHash == "" {
		return nil
	}
	u := User{ID: uuid.NewString(), Username: username, Role: "admin", CreatedAt: time.Now().Unix()}
	if err := r.insert(ctx, u, passHash); err != nil && !errors.Is(err, ErrUsernameTaken) {
		return err
	}
	return nil
}

// List returns all users, or only those with role when it is non-empty.
func (r *UserRepo) List(ctx context.Context, role string) ([]User, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if role == "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id, username, role, created_at FROM users ORDER BY username`)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id, username, role, created_at FROM users WHERE role=$1 ORDER BY username`, role)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepo) Authenticate(ctx context.Context, username, password string) (User, error) {
	var (
		u    User
		hash string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, role, created_at, password_hash FROM users WHERE username=$1`,
		strings.TrimSpace(username)).Scan(&u.ID, &u.Username, &u.Role, &u.CreatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Role looks a user up by id or username.
func (r *UserRepo) Role(ctx context.Context, idOrUsername string) (string, error) {
	var role string
	err := r.db.QueryRowContext(ctx,
		`SELECT role FROM users WHERE id=$1 OR username=$1`, idOrUsername).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrUserNotFound
	}
	return role, err
}

// UpdateRole changes a user's role. The last admin cannot be demoted.
func (r *UserRepo) UpdateRole(ctx context.Context, target, role string) (err error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if !r.validRole(role) {
		return ErrInvalidRole
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var id, cur string
	err = tx.QueryRowContext(ctx,
		`SELECT id, role FROM users WHERE id=$1 OR username=$1`, target).Scan(&id, &cur)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if cur == "admin" && role != "admin" {
		var admins int
		if err = tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM users WHERE role='admin'`).Scan(&admins); err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}
	_, err = tx.ExecContext(ctx, `UPDATE users SET role=$1 WHERE id=$2`, role, id)
	return err
}

func (r *UserRepo) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	var stored string
	err := r.db.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE id=$1`, userID).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(stored), []byte(oldPassword)) != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), BcryptCost)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, string(hash), userID)
	return err
}
