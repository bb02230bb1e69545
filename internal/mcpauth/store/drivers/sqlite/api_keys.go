package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/acacialabs/acacia/internal/mcpauth/domain"
)

type apiKeysRepo struct {
	db *sql.DB
}

const apiKeyColumns = `id, user_id, name, key_hash, prefix, is_active, created_at, last_used_at, expires_at`

func (r *apiKeysRepo) CreateAPIKey(ctx context.Context, k domain.APIKey) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_keys (`+apiKeyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		k.ID, k.UserID, k.Name, k.KeyHash, k.Prefix, k.IsActive, k.CreatedAt.UTC(),
		mapOptionalTime(k.LastUsedAt), mapOptionalTime(k.ExpiresAt),
	)
	return err
}

func (r *apiKeysRepo) GetAPIKeyByHash(ctx context.Context, hash string) (domain.APIKey, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+apiKeyColumns+` FROM api_keys WHERE key_hash = ?`,
		hash,
	)
	return scanAPIKey(row)
}

func (r *apiKeysRepo) ListAPIKeysByUser(ctx context.Context, userID string) ([]domain.APIKey, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+apiKeyColumns+` FROM api_keys
		WHERE user_id = ?
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []domain.APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *apiKeysRepo) CountAPIKeysByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM api_keys WHERE user_id = ?`,
		userID,
	).Scan(&n)
	return n, err
}

func (r *apiKeysRepo) SetAPIKeyActive(ctx context.Context, id, userID string, active bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE api_keys SET is_active = ? WHERE id = ? AND user_id = ?`,
		active, id, userID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *apiKeysRepo) TouchAPIKeyLastUsed(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE api_keys SET last_used_at = ? WHERE id = ?`,
		at.UTC(), id,
	)
	return err
}

func (r *apiKeysRepo) DeleteAPIKey(ctx context.Context, id, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM api_keys WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAPIKey(row rowScanner) (domain.APIKey, error) {
	var (
		k        domain.APIKey
		lastUsed sql.NullTime
		expires  sql.NullTime
	)
	err := row.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.Prefix, &k.IsActive, &k.CreatedAt, &lastUsed, &expires)
	if err != nil {
		return domain.APIKey{}, mapNotFound(err)
	}
	k.LastUsedAt = mapNullTimePtr(lastUsed)
	k.ExpiresAt = mapNullTimePtr(expires)
	return k, nil
}
