package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/document"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/ingest"
)

const DefaultDynamoTable = "haire-parsed-resume"

type dynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoStore writes one item per resume, keyed by resume_id. A second write
// for the same resume replaces the item.
type DynamoStore struct {
	client dynamoAPI
	table  string
}

func NewDynamoStore(cfg aws.Config, table string) *DynamoStore {
	if table == "" {
		table = DefaultDynamoTable
	}
	return &DynamoStore{client: dynamodb.NewFromConfig(cfg), table: table}
}

type resumeItem struct {
	ResumeID       string  `dynamodbav:"resume_id"`
	TeamID         string  `dynamodbav:"team_id"`
	JobID          string  `dynamodbav:"job_id"`
	SourceKey      string  `dynamodbav:"source_key"`
	DerivedKey     string  `dynamodbav:"derived_key"`
	HasApplied     bool    `dynamodbav:"has_applied"`
	CandidateName  string  `dynamodbav:"candidate_name"`
	CandidateEmail *string `dynamodbav:"candidate_email"`
	CurrentTitle   string  `dynamodbav:"current_title"`
	Profile        any     `dynamodbav:"profile"`
	ProcessedAt    string  `dynamodbav:"processed_at"`
	CreatedAt      string  `dynamodbav:"created_at"`
	UpdatedAt      string  `dynamodbav:"updated_at"`

	// s3_key and parsed_s3_key repeat the blob keys under the names older
	// readers of the table query.
	S3Key       string `dynamodbav:"s3_key"`
	ParsedS3Key string `dynamodbav:"parsed_s3_key"`
}

func (s *DynamoStore) Put(ctx context.Context, rec ingest.ResumeRecord) error {
	item, err := attributevalue.MarshalMap(resumeItem{
		ResumeID:       rec.ResumeID,
		TeamID:         rec.TeamID,
		JobID:          rec.JobID,
		SourceKey:      rec.SourceKey,
		DerivedKey:     rec.DerivedKey,
		HasApplied:     rec.HasApplied,
		CandidateName:  rec.CandidateName,
		CandidateEmail: rec.CandidateEmail,
		CurrentTitle:   rec.CurrentTitle,
		Profile:        document.Native(rec.Profile),
		ProcessedAt:    isoTime(rec.ProcessedAt),
		CreatedAt:      isoTime(rec.CreatedAt),
		UpdatedAt:      isoTime(rec.UpdatedAt),
		S3Key:          rec.SourceKey,
		ParsedS3Key:    rec.DerivedKey,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal resume item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put resume %s: %w", rec.ResumeID, err)
	}
	return nil
}

func isoTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
