package pgdb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"

	"sales-request-api/internal/entity"
	"sales-request-api/internal/repo/repo_errors"
	"sales-request-api/pkg/postgres"
)

type KVCacheRepo struct {
	*postgres.Postgres
}

func NewKVCacheRepo(pgdb *postgres.Postgres) *KVCacheRepo {
	return &KVCacheRepo{pgdb}
}

func (r *KVCacheRepo) GetEntry(ctx context.Context, key string) (*entity.KVEntry, error) {
	getSql, args, _ := r.SqlBuilder.
		Select("key, payload, updated_at").
		From("kv_cache").
		Where("key = ?", key).
		ToSql()

	var entry entity.KVEntry
	row := r.Database.QueryRowContext(ctx, getSql, args...)
	err := row.Scan(&entry.Key, &entry.Payload, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return &entry, nil
}

func (r *KVCacheRepo) PutEntry(ctx context.Context, key string, payload []byte) error {
	putSql, args, _ := r.SqlBuilder.
		Insert("kv_cache").
		Columns("key", "payload", "updated_at").
		Values(key, payload, squirrel.Expr("now()")).
		Suffix("ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()").
		ToSql()

	_, err := r.Database.ExecContext(ctx, putSql, args...)

	return err
}
