package pgdb

import (
	"context"
	"time"

	"sales-request-api/internal/entity"
	"sales-request-api/pkg/postgres"
)

type SubmissionLogRepo struct {
	*postgres.Postgres
}

func NewSubmissionLogRepo(pgdb *postgres.Postgres) *SubmissionLogRepo {
	return &SubmissionLogRepo{pgdb}
}

func (r *SubmissionLogRepo) AppendSubmission(ctx context.Context, entry *entity.SubmissionLogEntry) error {
	appendSql, args, _ := r.SqlBuilder.
		Insert("submission_log").
		Columns("request_id", "outcome", "deal_id", "error_kind", "message").
		Values(entry.RequestId, entry.Outcome, entry.DealId, entry.ErrorKind, entry.Message).
		ToSql()

	_, err := r.Database.ExecContext(ctx, appendSql, args...)

	return err
}

func (r *SubmissionLogRepo) GetSubmissionsByRequestId(ctx context.Context, requestId string, pg *entity.PaginationInput) ([]entity.SubmissionLogEntry, error) {
	getSql, args, _ := r.SqlBuilder.
		Select("id, request_id, outcome, deal_id, error_kind, message, created_at").
		From("submission_log").
		Where("request_id = ?", requestId).
		OrderBy("created_at DESC").
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit)).
		ToSql()

	rows, err := r.Database.QueryContext(ctx, getSql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]entity.SubmissionLogEntry, 0)
	for rows.Next() {
		var entry entity.SubmissionLogEntry
		var createdAt time.Time
		if err := rows.Scan(&entry.Id, &entry.RequestId, &entry.Outcome, &entry.DealId,
			&entry.ErrorKind, &entry.Message, &createdAt); err != nil {
			return entries, err
		}
		entry.CreatedAt = createdAt.Format(time.RFC3339)
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return entries, err
	}

	return entries, nil
}
