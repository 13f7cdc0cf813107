package activity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

type dynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoRecorder stores entries in a DynamoDB table keyed by session_id
// (partition) and id (sort).
type DynamoRecorder struct {
	client dynamoAPI
	table  string
}

// NewDynamoRecorder creates a recorder from an AWS config
func NewDynamoRecorder(cfg aws.Config, table string) *DynamoRecorder {
	return &DynamoRecorder{client: dynamodb.NewFromConfig(cfg), table: table}
}

func (r *DynamoRecorder) Record(ctx context.Context, entry Entry) error {
	item, err := attributevalue.MarshalMap(dynamoItem{
		ID:          entry.ID.String(),
		SessionID:   entry.SessionID.String(),
		Kind:        entry.Kind,
		Step:        entry.Step,
		CurrentStep: entry.CurrentStep,
		Progress:    entry.Progress,
		Detail:      string(entry.Detail),
		CreatedAt:   entry.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal activity: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// dynamoItem flattens uuids and JSON into plain strings
type dynamoItem struct {
	ID          string `dynamodbav:"id"`
	SessionID   string `dynamodbav:"session_id"`
	Kind        string `dynamodbav:"kind"`
	Step        string `dynamodbav:"step,omitempty"`
	CurrentStep string `dynamodbav:"current_step"`
	Progress    int    `dynamodbav:"progress"`
	Detail      string `dynamodbav:"detail,omitempty"`
	CreatedAt   string `dynamodbav:"created_at"`
}
