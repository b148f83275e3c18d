package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/sudo-init-do/userhub/internal/db"
)

// PostgresResetRepository implements ResetRepository using PostgreSQL.
type PostgresResetRepository struct {
	db db.DBTX
}

func NewPostgresResetRepository(conn db.DBTX) *PostgresResetRepository {
	return &PostgresResetRepository{db: conn}
}

func (r *PostgresResetRepository) Create(ctx context.Context, token *ResetToken) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO reset_tokens (id, user_id, token_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, token.ID, token.UserID, token.TokenHash, token.CreatedAt, token.ExpiresAt)
	if err != nil {
		return oops.With("operation", "insert reset token", "user_id", token.UserID).Wrap(err)
	}
	return nil
}

func (r *PostgresResetRepository) FindActive(ctx context.Context, tokenHash string, now time.Time) (*ResetToken, error) {
	t := &ResetToken{}
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, token_hash, created_at, expires_at
		FROM reset_tokens
		WHERE token_hash = $1 AND expires_at > $2
	`, tokenHash, now).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResetNotFound
		}
		return nil, oops.With("operation", "select reset token").Wrap(err)
	}
	return t, nil
}

func (r *PostgresResetRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reset_tokens WHERE id = $1`, id)
	if err != nil {
		return oops.With("operation", "delete reset token", "id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrResetNotFound
	}
	return nil
}

func (r *PostgresResetRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM reset_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return oops.With("operation", "delete reset tokens by user", "user_id", userID).Wrap(err)
	}
	return nil
}

func (r *PostgresResetRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM reset_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, oops.With("operation", "delete expired reset tokens").Wrap(err)
	}
	return tag.RowsAffected(), nil
}

var _ ResetRepository = (*PostgresResetRepository)(nil)
