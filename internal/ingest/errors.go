package ingest

import (
	"errors"
	"fmt"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/profile"
)

var (
	ErrPathFormat         = errors.New("object key is not raw_prefix/team/job/file")
	ErrContentRead        = errors.New("failed to read resume content")
	ErrUnsupportedContent = errors.New("unsupported content type")
	ErrInterpretation     = errors.New("model output is not a single JSON value")
	ErrProfileShape       = profile.ErrShape
	ErrPersist            = errors.New("failed to persist parsed resume")
)

type Stage string

const (
	StageResolve   Stage = "resolve"
	StageFetch     Stage = "fetch"
	StageExtract   Stage = "extract"
	StageInterpret Stage = "interpret"
	StageShape     Stage = "shape"
	StagePersist   Stage = "persist"
)

// StageError ties a failure to the document and stage it happened in.
type StageError struct {
	Stage  Stage
	Bucket string
	Key    string
	Path   *PathInfo
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s s3://%s/%s: %v", e.Stage, e.Bucket, e.Key, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageOf returns the stage err failed in, or "" when err carries none.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
