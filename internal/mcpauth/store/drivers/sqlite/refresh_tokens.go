package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/acacialabs/acacia/internal/mcpauth/domain"
)

type refreshTokensRepo struct {
	db *sql.DB
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, user_id, client_id, token_hash, scope, expires_at, revoked, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.ClientID, t.TokenHash, t.Scope, t.ExpiresAt.UTC(), t.Revoked, time.Now().UTC(),
	)
	return err
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, client_id, token_hash, scope, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE token_hash = ?`,
		hash,
	)

	var t domain.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.ClientID, &t.TokenHash, &t.Scope, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked = 1 WHERE token_hash = ?`,
		hash,
	)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM refresh_tokens WHERE expires_at < ?`,
		time.Now().UTC(),
	)
	return err
}
