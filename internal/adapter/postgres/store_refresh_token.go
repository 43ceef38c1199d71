package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Strob0t/CodeForge/internal/domain/user"
)

func (s *Store) CreateRefreshToken(ctx context.Context, rt *user.RefreshToken) error {
	rt.CreatedAt = time.Now().UTC()
	row := s.pool.QueryRow(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		rt.UserID, rt.TokenHash, rt.ExpiresAt, rt.CreatedAt,
	)
	if err := row.Scan(&rt.ID); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

func (s *Store) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*user.RefreshToken, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, token_hash, expires_at, created_at
		FROM refresh_tokens WHERE token_hash = $1`, tokenHash)

	var rt user.RefreshToken
	err := row.Scan(&rt.ID, &rt.UserID, &rt.TokenHash, &rt.ExpiresAt, &rt.CreatedAt)
	if err != nil {
		return nil, notFoundWrap(err, "get refresh token")
	}
	return &rt, nil
}

func (s *Store) DeleteRefreshToken(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (s *Store) DeleteRefreshTokensByUser(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete refresh tokens by user: %w", err)
	}
	return nil
}

// RotateRefreshToken atomically deletes the presented refresh token and
// inserts its replacement, so a race between two rotations of the same
// token cannot both succeed (spec.md §4.3 refresh rotation).
func (s *Store) RotateRefreshToken(ctx context.Context, oldID string, newRT *user.RefreshToken) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("rotate refresh token: begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, oldID)
	if err != nil {
		return fmt.Errorf("rotate refresh token: delete old: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rotate refresh token %s: already rotated or revoked", oldID)
	}

	newRT.CreatedAt = time.Now().UTC()
	row := tx.QueryRow(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		newRT.UserID, newRT.TokenHash, newRT.ExpiresAt, newRT.CreatedAt)
	if err := row.Scan(&newRT.ID); err != nil {
		return fmt.Errorf("rotate refresh token: insert new: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("rotate refresh token: commit tx: %w", err)
	}
	return nil
}
