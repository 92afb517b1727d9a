package database

import (
	"context"
	"time"
)

const upsertIngestStatus = `-- name: UpsertIngestStatus :exec
INSERT INTO ingest_status (
resume_id, run_id, source_key, status, stage, message, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (resume_id)
DO UPDATE SET
    run_id = EXCLUDED.run_id,
    source_key = EXCLUDED.source_key,
    status = EXCLUDED.status,
    stage = EXCLUDED.stage,
    message = EXCLUDED.message,
    updated_at = EXCLUDED.updated_at
`

type UpsertIngestStatusParams struct {
	ResumeID  string
	RunID     string
	SourceKey string
	Status    string
	Stage     string
	Message   string
	UpdatedAt time.Time
}

func (q *Queries) UpsertIngestStatus(ctx context.Context, arg UpsertIngestStatusParams) error {
	_, err := q.db.ExecContext(ctx, upsertIngestStatus,
		arg.ResumeID,
		arg.RunID,
		arg.SourceKey,
		arg.Status,
		arg.Stage,
		arg.Message,
		arg.UpdatedAt,
	)
	return err
}
