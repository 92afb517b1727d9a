package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/database"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/ingest"
)

// OpenPostgres opens dbURL and creates the worker's tables.
func OpenPostgres(ctx context.Context, dbURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("error opening db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error reaching db: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error migrating db: %w", err)
	}
	return db, nil
}

// PostgresStore upserts resume records into parsed_resumes.
type PostgresStore struct {
	q *database.Queries
}

func NewPostgresStore(db database.DBTX) *PostgresStore {
	return &PostgresStore{q: database.New(db)}
}

func (s *PostgresStore) Put(ctx context.Context, rec ingest.ResumeRecord) error {
	profileJSON, err := json.Marshal(rec.Profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	var email sql.NullString
	if rec.CandidateEmail != nil {
		email = sql.NullString{String: *rec.CandidateEmail, Valid: true}
	}
	err = s.q.UpsertParsedResume(ctx, database.UpsertParsedResumeParams{
		ResumeID:       rec.ResumeID,
		TeamID:         rec.TeamID,
		JobID:          rec.JobID,
		SourceKey:      rec.SourceKey,
		DerivedKey:     rec.DerivedKey,
		HasApplied:     rec.HasApplied,
		CandidateName:  rec.CandidateName,
		CandidateEmail: email,
		CurrentTitle:   rec.CurrentTitle,
		Profile:        profileJSON,
		ProcessedAt:    rec.ProcessedAt,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert resume %s: %w", rec.ResumeID, err)
	}
	return nil
}

// PostgresStatus records the latest status of every resume in ingest_status.
// Events for keys that never resolved to a resume are skipped.
type PostgresStatus struct {
	q *database.Queries
}

func NewPostgresStatus(db database.DBTX) *PostgresStatus {
	return &PostgresStatus{q: database.New(db)}
}

func (s *PostgresStatus) Publish(ctx context.Context, ev ingest.StatusEvent) error {
	if ev.ResumeID == "" {
		return nil
	}
	return s.q.UpsertIngestStatus(ctx, database.UpsertIngestStatusParams{
		ResumeID:  ev.ResumeID,
		RunID:     ev.RunID,
		SourceKey: ev.Key,
		Status:    string(ev.Status),
		Stage:     string(ev.Stage),
		Message:   ev.Message,
		UpdatedAt: ev.Timestamp,
	})
}
