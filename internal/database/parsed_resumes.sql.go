package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

const upsertParsedResume = `-- name: UpsertParsedResume :exec
INSERT INTO parsed_resumes (
resume_id, team_id, job_id, source_key, derived_key, has_applied,
candidate_name, candidate_email, current_title, profile,
processed_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (resume_id)
DO UPDATE SET
    team_id = EXCLUDED.team_id,
    job_id = EXCLUDED.job_id,
    source_key = EXCLUDED.source_key,
    derived_key = EXCLUDED.derived_key,
    has_applied = EXCLUDED.has_applied,
    candidate_name = EXCLUDED.candidate_name,
    candidate_email = EXCLUDED.candidate_email,
    current_title = EXCLUDED.current_title,
    profile = EXCLUDED.profile,
    processed_at = EXCLUDED.processed_at,
    created_at = EXCLUDED.created_at,
    updated_at = EXCLUDED.updated_at
`

type UpsertParsedResumeParams struct {
	ResumeID       string
	TeamID         string
	JobID          string
	SourceKey      string
	DerivedKey     string
	HasApplied     bool
	CandidateName  string
	CandidateEmail sql.NullString
	CurrentTitle   string
	Profile        json.RawMessage
	ProcessedAt    time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (q *Queries) UpsertParsedResume(ctx context.Context, arg UpsertParsedResumeParams) error {
	_, err := q.db.ExecContext(ctx, upsertParsedResume,
		arg.ResumeID,
		arg.TeamID,
		arg.JobID,
		arg.SourceKey,
		arg.DerivedKey,
		arg.HasApplied,
		arg.CandidateName,
		arg.CandidateEmail,
		arg.CurrentTitle,
		arg.Profile,
		arg.ProcessedAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}
