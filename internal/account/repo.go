// Package account handles sign-up, sign-in and the tokens that let prefs
// and reading history follow a person across devices.
package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	TokenVersion int
	CreatedAt    time.Time
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) CreateUser(ctx context.Context, u User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash)
		VALUES (?, ?, ?, ?)
	`, u.ID, u.Username, u.Email, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

const userColumns = `id, username, email, password_hash, token_version, created_at`

func (r *Repo) getOne(ctx context.Context, what, where string, arg any) (*User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)

	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.TokenVersion, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get by %s: %w", what, err)
	}
	return &u, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "email", "LOWER(email) = ?", strings.TrimSpace(strings.ToLower(email)))
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, "username", "username = ?", strings.TrimSpace(username))
}

func (r *Repo) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, "id", "id = ?", id)
}

// GetTokenVersion returns ErrUserNotFound for an unknown id so a token for a
// deleted account never validates.
func (r *Repo) GetTokenVersion(ctx context.Context, id string) (int, error) {
	var version int
	err := r.DB.QueryRowContext(ctx, `
		SELECT token_version
		FROM users
		WHERE id = ?
	`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get token version: %w", err)
	}
	return version, nil
}

// BumpTokenVersion invalidates every token issued so far.
func (r *Repo) BumpTokenVersion(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET token_version = token_version + 1
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("bump token version: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bump token version rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("bump token version: %w", ErrUserNotFound)
	}
	return nil
}
