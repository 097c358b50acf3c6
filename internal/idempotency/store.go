// Package idempotency protects the public checkout endpoint from duplicate
// submissions: each Idempotency-Key header maps to a record that lets replays
// return the original response instead of creating a second order.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/cambermillbooks/order-service/internal/aws"
)

// Checkout record states.
const (
	StateBegun     = "BEGUN"
	StateCompleted = "COMPLETED"
	StateFailed    = "FAILED"
)

// Record is the persisted shape of one checkout attempt.
type Record struct {
	Key            string    `dynamodbav:"checkout_key"` // PK
	State          string    `dynamodbav:"state"`
	OrderID        string    `dynamodbav:"order_id,omitempty"`
	ResponseBody   string    `dynamodbav:"response_body,omitempty"`
	ResponseStatus int       `dynamodbav:"response_status,omitempty"`
	Note           string    `dynamodbav:"note,omitempty"`
	CreatedAt      time.Time `dynamodbav:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at"`
	ExpiresAt      int64     `dynamodbav:"expires_at"` // TTL epoch seconds
}

// Store persists checkout records in DynamoDB.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

// NewStore returns a store bound to a table; records expire after ttlWindow.
func NewStore(client aws.DynamoDBAPI, tableName string, ttlWindow time.Duration) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

// Begin claims a checkout key. Returns (true, nil) when the claim was created,
// (false, nil) when the key is already taken — the caller should Get to decide
// whether to replay or report in-progress.
func (s *Store) Begin(ctx context.Context, key string) (bool, error) {
	now := s.nowFunc()
	rec := Record{
		Key:       key,
		State:     StateBegun,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttlWindow).Unix(),
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return false, fmt.Errorf("marshal checkout record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(checkout_key)"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return false, nil
		}
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("put checkout record: %w", err)
	}
	return true, nil
}

// Get retrieves a record by key; (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, key string) (*Record, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"checkout_key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get checkout record: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal checkout record: %w", err)
	}
	return &rec, nil
}

// Complete stores the created order's ID and the response to replay on
// duplicate submissions.
func (s *Store) Complete(ctx context.Context, key, orderID, responseBody string, responseStatus int) error {
	now := s.nowFunc()
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"checkout_key": &types.AttributeValueMemberS{Value: key},
		},
		UpdateExpression: awsString("SET #st = :completed, order_id = :oid, response_body = :rb, response_status = :rs, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{
			"#st": "state",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":completed": &types.AttributeValueMemberS{Value: StateCompleted},
			":oid":       &types.AttributeValueMemberS{Value: orderID},
			":rb":        &types.AttributeValueMemberS{Value: responseBody},
			":rs":        &types.AttributeValueMemberN{Value: strconv.Itoa(responseStatus)},
			":ua":        &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	})
	if err != nil {
		return fmt.Errorf("complete checkout record: %w", err)
	}
	return nil
}

// Fail releases a claim after an unsuccessful attempt so the client can retry.
func (s *Store) Fail(ctx context.Context, key, note string) error {
	now := s.nowFunc()
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"checkout_key": &types.AttributeValueMemberS{Value: key},
		},
		UpdateExpression: awsString("SET #st = :failed, note = :n, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{
			"#st": "state",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":failed": &types.AttributeValueMemberS{Value: StateFailed},
			":n":      &types.AttributeValueMemberS{Value: note},
			":ua":     &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	})
	if err != nil {
		return fmt.Errorf("fail checkout record: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
