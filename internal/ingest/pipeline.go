package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/document"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/llm"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/metrics"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/profile"
)

const mirrorContentType = "application/json; charset=utf-8"

// BlobStore reads raw uploads and writes parsed mirrors.
type BlobStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

// RecordStore upserts resume records by ResumeID.
type RecordStore interface {
	Put(ctx context.Context, rec ResumeRecord) error
}

// Notifier publishes document status changes.
type Notifier interface {
	Publish(ctx context.Context, ev StatusEvent) error
}

// Dependencies are the clients a Pipeline talks to. Notifier, Renderer and
// Logger are optional.
type Dependencies struct {
	Blobs     BlobStore
	Records   RecordStore
	Generator llm.Generator
	Renderer  PDFRenderer
	Notifier  Notifier
	Logger    *slog.Logger
}

type Options struct {
	// ParsedBucket receives mirrors; empty means the bucket of the upload.
	ParsedBucket string
	RawPrefix    string
	ParsedPrefix string

	PDFMode     PDFMode
	MaxPages    int
	DPI         float64
	ImageFormat llm.ImageFormat

	MaxOutputTokens int32
	ImageBatchSize  int
	ImageBatchDelay time.Duration

	Sanitizer profile.Sanitizer
}

type Pipeline struct {
	blobs        BlobStore
	records      RecordStore
	notifier     Notifier
	logger       *slog.Logger
	paths        PathResolver
	extractor    *Extractor
	interpreter  *Interpreter
	sanitizer    profile.Sanitizer
	validator    profile.Validator
	parsedBucket string
	now          func() time.Time
}

func NewPipeline(deps Dependencies, opts Options) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mode := opts.PDFMode
	if mode == "" {
		mode = PDFModeImage
	}
	return &Pipeline{
		blobs:    deps.Blobs,
		records:  deps.Records,
		notifier: deps.Notifier,
		logger:   logger,
		paths:    NewPathResolver(opts.RawPrefix, opts.ParsedPrefix),
		extractor: &Extractor{
			Renderer:    deps.Renderer,
			Mode:        mode,
			MaxPages:    opts.MaxPages,
			DPI:         opts.DPI,
			ImageFormat: opts.ImageFormat,
		},
		interpreter: &Interpreter{
			Generator:       deps.Generator,
			MaxOutputTokens: opts.MaxOutputTokens,
			ImageBatchSize:  opts.ImageBatchSize,
			ImageBatchDelay: opts.ImageBatchDelay,
			Logger:          logger,
		},
		sanitizer: opts.Sanitizer,
		validator: profile.Validator{
			Logger:     logger,
			OnFallback: func(error) { metrics.IncrRepairFallbacks() },
		},
		parsedBucket: opts.ParsedBucket,
		now:          time.Now,
	}
}

// Handle ingests every notification in order. A failing document never stops
// the batch; its error is kept in the Report.
func (p *Pipeline) Handle(ctx context.Context, notifications []Notification) Report {
	metrics.IncrNotifications(len(notifications))
	report := Report{Results: make([]Result, 0, len(notifications))}
	for _, n := range notifications {
		rec, err := p.Ingest(ctx, n)
		report.Results = append(report.Results, Result{Notification: n, Record: rec, Err: err})
	}
	p.logger.Info("resume batch processed",
		slog.Int("processed", report.Processed()),
		slog.Int("succeeded", report.Succeeded()),
		slog.Int("failed", report.Failed()),
	)
	return report
}

// Ingest runs one notification through the pipeline. On failure the error is
// a *StageError and nothing has been written for the document.
func (p *Pipeline) Ingest(ctx context.Context, n Notification) (*ResumeRecord, error) {
	run := &ingestRun{
		p:      p,
		n:      n,
		id:     uuid.NewString(),
		logger: p.logger,
	}
	run.logger = run.logger.With(
		slog.String("run_id", run.id),
		slog.String("bucket", n.Bucket),
		slog.String("key", n.Key),
	)

	var rec *ResumeRecord
	err := metrics.TrackOperation(ctx, "ingest", func(ctx context.Context) error {
		var err error
		rec, err = run.safeExecute(ctx)
		return err
	})
	if err != nil {
		metrics.IncrFailed()
		countStageError(err)
		run.logger.Error("resume ingestion failed", slog.String("stage", string(StageOf(err))), slog.Any("error", err))
		run.notify(ctx, StatusFailed, StageOf(err), err.Error())
		return nil, err
	}

	metrics.IncrIngested()
	run.logger.Info("resume ingested",
		slog.String("derived_key", rec.DerivedKey),
		slog.String("candidate_name", rec.CandidateName),
		slog.Int("educations", sectionLen(rec.Profile, profile.FieldEducations)),
		slog.Int("trainings_and_certifications", sectionLen(rec.Profile, profile.FieldTrainings)),
		slog.Int("professional_experiences", sectionLen(rec.Profile, profile.FieldExperiences)),
		slog.Int("awards", sectionLen(rec.Profile, profile.FieldAwards)),
	)
	run.notify(ctx, StatusCompleted, "", "resume parsed")
	return rec, nil
}

// ingestRun carries the per-document state through the stages.
type ingestRun struct {
	p      *Pipeline
	n      Notification
	id     string
	info   *PathInfo
	stage  Stage
	logger *slog.Logger
}

func (r *ingestRun) fail(stage Stage, err error) error {
	return &StageError{Stage: stage, Bucket: r.n.Bucket, Key: r.n.Key, Path: r.info, Err: err}
}

// safeExecute turns a panic in any stage into a failure of that document.
func (r *ingestRun) safeExecute(ctx context.Context) (rec *ResumeRecord, err error) {
	defer func() {
		if v := recover(); v != nil {
			rec = nil
			err = r.fail(r.stage, fmt.Errorf("%w: panic: %v", stageSentinel(r.stage), v))
		}
	}()
	return r.execute(ctx)
}

func (r *ingestRun) execute(ctx context.Context) (*ResumeRecord, error) {
	p := r.p

	r.stage = StageResolve
	info, err := p.paths.Resolve(r.n.Key)
	if err != nil {
		return nil, r.fail(StageResolve, err)
	}
	r.info = &info
	r.logger = r.logger.With(
		slog.String("team_id", info.TeamID),
		slog.String("job_id", info.JobID),
		slog.String("resume_id", info.ResumeID),
	)
	r.notify(ctx, StatusProcessing, "", "resume parsing started")

	r.stage = StageFetch
	data, err := p.blobs.Get(ctx, r.n.Bucket, info.ObjectKey)
	if err != nil {
		return nil, r.fail(StageFetch, fmt.Errorf("%w: %w", ErrContentRead, err))
	}
	r.logger.Info("resume object read", slog.Int("bytes", len(data)))

	r.stage = StageExtract
	content, err := p.extractor.Extract(ctx, data)
	if err != nil {
		return nil, r.fail(StageExtract, fmt.Errorf("%w: %w", ErrContentRead, err))
	}
	if len(content.Pages) > 0 {
		metrics.IncrPagesRendered(len(content.Pages))
		if content.TotalPages > len(content.Pages) {
			r.logger.Info("pdf truncated to page cap",
				slog.Int("total_pages", content.TotalPages),
				slog.Int("rendered_pages", len(content.Pages)),
			)
		}
	}

	r.stage = StageInterpret
	interp, err := p.interpreter.Interpret(ctx, content)
	if err != nil {
		if interp.Raw != "" {
			r.logger.Debug("unparsable model output", slog.String("output", interp.Raw))
		}
		if !errors.Is(err, ErrInterpretation) {
			err = fmt.Errorf("%w: %w", ErrInterpretation, err)
		}
		return nil, r.fail(StageInterpret, err)
	}

	r.stage = StageShape
	prof, err := p.shape(interp.Value, r.logger)
	if err != nil {
		return nil, r.fail(StageShape, err)
	}

	r.stage = StagePersist
	derivedKey := p.paths.MirrorKey(info.ObjectKey)
	bucket := p.parsedBucket
	if bucket == "" {
		bucket = r.n.Bucket
	}
	body, err := encodeMirror(interp.Value)
	if err != nil {
		return nil, r.fail(StagePersist, fmt.Errorf("%w: %w", ErrPersist, err))
	}
	if err := p.blobs.Put(ctx, bucket, derivedKey, body, mirrorContentType); err != nil {
		return nil, r.fail(StagePersist, fmt.Errorf("%w: mirror s3://%s/%s: %w", ErrPersist, bucket, derivedKey, err))
	}

	summary := profile.Summarize(prof)
	now := p.now().UTC()
	rec := ResumeRecord{
		ResumeID:       info.ResumeID,
		TeamID:         info.TeamID,
		JobID:          info.JobID,
		SourceKey:      info.ObjectKey,
		DerivedKey:     derivedKey,
		HasApplied:     true,
		CandidateName:  summary.CandidateName,
		CandidateEmail: summary.CandidateEmail,
		CurrentTitle:   summary.CurrentTitle,
		Profile:        prof,
		ProcessedAt:    now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := p.records.Put(ctx, rec); err != nil {
		return nil, r.fail(StagePersist, fmt.Errorf("%w: %w", ErrPersist, err))
	}
	return &rec, nil
}

// shape takes the profile out of the model output, fills in the top-level
// sections, then sanitizes and validates it.
func (p *Pipeline) shape(v document.Value, logger *slog.Logger) (document.Map, error) {
	root, ok := v.(document.Map)
	if !ok {
		return nil, fmt.Errorf("%w: model output is %s", ErrProfileShape, v.Kind())
	}
	prof := document.Map{}
	if raw, present := root["profile"]; present {
		m, ok := raw.(document.Map)
		if !ok {
			return nil, fmt.Errorf("%w: profile is %s", ErrProfileShape, raw.Kind())
		}
		prof = document.Clone(m).(document.Map)
	}

	if _, ok := prof[profile.FieldBasics]; !ok {
		prof[profile.FieldBasics] = document.Map{}
	}
	for _, f := range profile.ListSections {
		if _, ok := prof[f]; !ok {
			prof[f] = document.List{}
		}
	}

	cleaned, ok := p.sanitizer.Clean(prof)
	if !ok {
		return nil, fmt.Errorf("%w: profile is empty after cleaning", ErrProfileShape)
	}
	validator := p.validator
	validator.Logger = logger
	validated, err := validator.Validate(cleaned)
	if err != nil {
		return nil, err
	}
	out := validated.(document.Map)
	for _, problem := range profile.Diagnose(out) {
		logger.Warn("profile does not match schema", slog.String("problem", problem))
	}
	return out, nil
}

func (r *ingestRun) notify(ctx context.Context, status Status, stage Stage, msg string) {
	if r.p.notifier == nil {
		return
	}
	ev := StatusEvent{
		RunID:     r.id,
		Bucket:    r.n.Bucket,
		Key:       r.n.Key,
		Status:    status,
		Stage:     stage,
		Message:   msg,
		Timestamp: r.p.now().UTC(),
	}
	if r.info != nil {
		ev.ResumeID, ev.TeamID, ev.JobID = r.info.ResumeID, r.info.TeamID, r.info.JobID
	}
	if err := r.p.notifier.Publish(context.WithoutCancel(ctx), ev); err != nil {
		r.logger.Warn("failed to publish status update", slog.Any("error", err))
	}
}

func encodeMirror(v document.Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func stageSentinel(stage Stage) error {
	switch stage {
	case StageResolve:
		return ErrPathFormat
	case StageFetch, StageExtract:
		return ErrContentRead
	case StageInterpret:
		return ErrInterpretation
	case StageShape:
		return ErrProfileShape
	}
	return ErrPersist
}

func countStageError(err error) {
	switch {
	case errors.Is(err, ErrPathFormat):
		metrics.IncrPathErrors()
	case errors.Is(err, ErrContentRead):
		metrics.IncrContentErrors()
	case errors.Is(err, ErrInterpretation):
		metrics.IncrInterpretErrors()
	case errors.Is(err, ErrProfileShape):
		metrics.IncrShapeErrors()
	case errors.Is(err, ErrPersist):
		metrics.IncrPersistErrors()
	}
}

func sectionLen(m document.Map, field string) int {
	l, _ := m.GetList(field)
	return len(l)
}
