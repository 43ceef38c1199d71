package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Strob0t/CodeForge/internal/domain/user"
)

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, is_admin, locked, must_change_password, failed_attempts, locked_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, uuid`,
		u.Email, u.Name, u.PasswordHash, u.IsAdmin, u.Locked, u.MustChangePassword, u.FailedAttempts, nullTime(u.LockedUntil), u.CreatedAt, u.UpdatedAt,
	)
	if err := row.Scan(&u.ID, &u.UUID); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*user.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, uuid, email, name, password_hash, is_admin, locked, must_change_password, failed_attempts, locked_until, created_at, updated_at
		FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundWrap(err, "get user %s", id)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, uuid, email, name, password_hash, is_admin, locked, must_change_password, failed_attempts, locked_until, created_at, updated_at
		FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFoundWrap(err, "get user by email %s", email)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, uuid, email, name, password_hash, is_admin, locked, must_change_password, failed_attempts, locked_until, created_at, updated_at
		FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUser(ctx context.Context, u *user.User) error {
	u.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET name = $2, is_admin = $3, locked = $4, must_change_password = $5,
		       failed_attempts = $6, locked_until = $7, updated_at = $8, password_hash = $9
		WHERE id = $1`,
		u.ID, u.Name, u.IsAdmin, u.Locked, u.MustChangePassword, u.FailedAttempts, nullTime(u.LockedUntil), u.UpdatedAt, u.PasswordHash,
	)
	return execExpectOne(tag, err, "update user %s", u.ID)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete user %s", id)
}

// RecordLoginFailure persists a failed login attempt's updated counters,
// locking the account once MaxFailedAttempts is reached (spec.md §4.3
// account lockout).
func (s *Store) RecordLoginFailure(ctx context.Context, id string, failedAttempts int, lockedUntil time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET failed_attempts = $2, locked_until = $3 WHERE id = $1`,
		id, failedAttempts, nullTime(lockedUntil))
	return execExpectOne(tag, err, "record login failure %s", id)
}

// RecordLoginSuccess resets the failed-attempt counter on successful auth.
func (s *Store) RecordLoginSuccess(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET failed_attempts = 0, locked_until = NULL WHERE id = $1`, id)
	return execExpectOne(tag, err, "record login success %s", id)
}

func scanUser(row scannable) (user.User, error) {
	var u user.User
	var lockedUntil *time.Time
	err := row.Scan(&u.ID, &u.UUID, &u.Email, &u.Name, &u.PasswordHash, &u.IsAdmin, &u.Locked,
		&u.MustChangePassword, &u.FailedAttempts, &lockedUntil, &u.CreatedAt, &u.UpdatedAt)
	if lockedUntil != nil {
		u.LockedUntil = *lockedUntil
	}
	return u, err
}
