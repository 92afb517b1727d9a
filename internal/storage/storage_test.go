package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/document"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/ingest"
)

type fakeS3 struct {
	objects map[string]string
	put     *s3.PutObjectInput
	putBody []byte
	err     error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = in
	f.putBody, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"raw/raw_resume/T/J/a.json": `{"a":1}`}}
	store := &S3Store{client: fake}

	got, err := store.Get(context.Background(), "raw", "raw_resume/T/J/a.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	_, err = store.Get(context.Background(), "raw", "missing")
	assert.ErrorContains(t, err, "NoSuchKey")

	require.NoError(t, store.Put(context.Background(), "parsed", "parsed_resume/T/J/a.json", []byte(`{}`), "application/json; charset=utf-8"))
	assert.Equal(t, "parsed", aws.ToString(fake.put.Bucket))
	assert.Equal(t, "parsed_resume/T/J/a.json", aws.ToString(fake.put.Key))
	assert.Equal(t, "application/json; charset=utf-8", aws.ToString(fake.put.ContentType))
	assert.Equal(t, int64(2), aws.ToInt64(fake.put.ContentLength))
	assert.Equal(t, []byte(`{}`), fake.putBody)
}

type fakeDynamo struct {
	in  *dynamodb.PutItemInput
	err error
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.in = in
	return &dynamodb.PutItemOutput{}, f.err
}

func sampleRecord(t *testing.T, email *string) ingest.ResumeRecord {
	t.Helper()
	prof, err := document.Decode([]byte(`{
		"basics": {"first_name": "Alice", "skills": ["Go"], "age": 31},
		"educations": [{"start_year": 2012, "issuing_organization": "NTU", "gpa": 3.85}],
		"professional_experiences": [],
		"trainings_and_certifications": [],
		"awards": []
	}`))
	require.NoError(t, err)
	now := time.Date(2025, 6, 12, 15, 4, 5, 0, time.UTC)
	return ingest.ResumeRecord{
		ResumeID:       "alice",
		TeamID:         "TEAM1",
		JobID:          "JOB1",
		SourceKey:      "raw_resume/TEAM1/JOB1/alice.json",
		DerivedKey:     "parsed_resume/TEAM1/JOB1/alice.json",
		HasApplied:     true,
		CandidateName:  "Alice",
		CandidateEmail: email,
		Profile:        prof.(document.Map),
		ProcessedAt:    now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestDynamoStorePut(t *testing.T) {
	fake := &fakeDynamo{}
	store := &DynamoStore{client: fake, table: "resumes"}

	require.NoError(t, store.Put(context.Background(), sampleRecord(t, nil)))
	require.NotNil(t, fake.in)
	assert.Equal(t, "resumes", aws.ToString(fake.in.TableName))

	item := fake.in.Item
	assert.Equal(t, &types.AttributeValueMemberS{Value: "alice"}, item["resume_id"])
	assert.Equal(t, &types.AttributeValueMemberBOOL{Value: true}, item["has_applied"])
	for _, k := range []string{"source_key", "s3_key"} {
		assert.Equal(t, &types.AttributeValueMemberS{Value: "raw_resume/TEAM1/JOB1/alice.json"}, item[k], k)
	}
	for _, k := range []string{"derived_key", "parsed_s3_key"} {
		assert.Equal(t, &types.AttributeValueMemberS{Value: "parsed_resume/TEAM1/JOB1/alice.json"}, item[k], k)
	}
	assert.Equal(t, &types.AttributeValueMemberNULL{Value: true}, item["candidate_email"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "2025-06-12T15:04:05Z"}, item["processed_at"])

	var decoded struct {
		Profile map[string]any `dynamodbav:"profile"`
	}
	require.NoError(t, attributevalue.UnmarshalMap(item, &decoded))
	basics := decoded.Profile["basics"].(map[string]any)
	assert.Equal(t, "Alice", basics["first_name"])
	assert.EqualValues(t, 31, basics["age"])
	edu := decoded.Profile["educations"].([]any)[0].(map[string]any)
	assert.EqualValues(t, 3.85, edu["gpa"])
	assert.Equal(t, []any{}, decoded.Profile["awards"])
}

func TestDynamoStorePutError(t *testing.T) {
	store := &DynamoStore{client: &fakeDynamo{err: errors.New("ResourceNotFoundException")}, table: "resumes"}
	err := store.Put(context.Background(), sampleRecord(t, nil))
	assert.ErrorContains(t, err, "ResourceNotFoundException")
}

type execCall struct {
	query string
	args  []any
}

// fakeDB records ExecContext calls; the other DBTX methods are unused.
type fakeDB struct {
	execs []execCall
	err   error
}

func (f *fakeDB) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	f.execs = append(f.execs, execCall{query: query, args: args})
	return nil, f.err
}

func (f *fakeDB) PrepareContext(context.Context, string) (*sql.Stmt, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

func TestPostgresStorePut(t *testing.T) {
	db := &fakeDB{}
	email := "alice@example.com"
	require.NoError(t, NewPostgresStore(db).Put(context.Background(), sampleRecord(t, &email)))

	require.Len(t, db.execs, 1)
	call := db.execs[0]
	assert.Contains(t, call.query, "INSERT INTO parsed_resumes")
	assert.Contains(t, call.query, "ON CONFLICT (resume_id)")
	require.Len(t, call.args, 13)
	assert.Equal(t, "alice", call.args[0])
	assert.Equal(t, sql.NullString{String: email, Valid: true}, call.args[7])

	profile, ok := call.args[9].(json.RawMessage)
	require.True(t, ok)
	assert.True(t, json.Valid(profile))
	assert.True(t, bytes.Contains(profile, []byte(`"gpa":3.85`)))
}

func TestPostgresStatusPublish(t *testing.T) {
	db := &fakeDB{}
	status := NewPostgresStatus(db)

	require.NoError(t, status.Publish(context.Background(), ingest.StatusEvent{Key: "bad-key", Status: ingest.StatusFailed}))
	assert.Empty(t, db.execs)

	ts := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	require.NoError(t, status.Publish(context.Background(), ingest.StatusEvent{
		RunID: "run-1", Key: "raw_resume/T/J/a.json", ResumeID: "a",
		Status: ingest.StatusFailed, Stage: ingest.StageInterpret, Message: "bad output", Timestamp: ts,
	}))
	require.Len(t, db.execs, 1)
	assert.Equal(t, []any{"a", "run-1", "raw_resume/T/J/a.json", "failed", "interpret", "bad output", ts}, db.execs[0].args)
}
