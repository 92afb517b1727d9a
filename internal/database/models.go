package database

import (
	"database/sql"
	"encoding/json"
	"time"
)

type ParsedResume struct {
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

type IngestStatus struct {
	ResumeID  string
	RunID     string
	SourceKey string
	Status    string
	Stage     string
	Message   string
	UpdatedAt time.Time
}
