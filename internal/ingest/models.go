package ingest

import (
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/document"
)

// Notification points at one uploaded object. Key is as delivered by the
// event source, still percent-encoded.
type Notification struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// NotificationsFromS3Event flattens the records of an S3 event.
func NotificationsFromS3Event(e events.S3Event) []Notification {
	out := make([]Notification, 0, len(e.Records))
	for _, r := range e.Records {
		out = append(out, Notification{Bucket: r.S3.Bucket.Name, Key: r.S3.Object.Key})
	}
	return out
}

type PathInfo struct {
	// ObjectKey is the decoded key used against the blob store.
	ObjectKey string `json:"object_key"`
	TeamID    string `json:"team_id"`
	JobID     string `json:"job_id"`
	FileName  string `json:"file_name"`
	ResumeID  string `json:"resume_id"`
}

// ResumeRecord is the stored form of one parsed resume, keyed by ResumeID.
type ResumeRecord struct {
	ResumeID       string       `json:"resume_id"`
	TeamID         string       `json:"team_id"`
	JobID          string       `json:"job_id"`
	SourceKey      string       `json:"source_key"`
	DerivedKey     string       `json:"derived_key"`
	HasApplied     bool         `json:"has_applied"`
	CandidateName  string       `json:"candidate_name"`
	CandidateEmail *string      `json:"candidate_email"`
	CurrentTitle   string       `json:"current_title"`
	Profile        document.Map `json:"profile"`
	ProcessedAt    time.Time    `json:"processed_at"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// StatusEvent is published for every document that enters or leaves the
// pipeline.
type StatusEvent struct {
	RunID     string    `json:"run_id"`
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
	ResumeID  string    `json:"resume_id,omitempty"`
	TeamID    string    `json:"team_id,omitempty"`
	JobID     string    `json:"job_id,omitempty"`
	Status    Status    `json:"status"`
	Stage     Stage     `json:"stage,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Result is the outcome of one notification.
type Result struct {
	Notification
	Record *ResumeRecord
	Err    error
}

// Report collects the results of a batch in input order.
type Report struct {
	Results []Result
}

func (r Report) Processed() int { return len(r.Results) }

func (r Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

func (r Report) Failed() int { return r.Processed() - r.Succeeded() }

// Response is the batch handler's reply to its invoker.
type Response struct {
	StatusCode int          `json:"statusCode"`
	Body       ResponseBody `json:"body"`
}

type ResponseBody struct {
	Message        string `json:"message"`
	ProcessedFiles int    `json:"processed_files"`
}

// Response always reports success; per-document failures live in Results.
func (r Report) Response() Response {
	return Response{
		StatusCode: 200,
		Body: ResponseBody{
			Message:        "Resume parsing completed",
			ProcessedFiles: r.Processed(),
		},
	}
}
