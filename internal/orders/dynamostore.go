package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/cambermillbooks/order-service/internal/aws"
)

// DynamoStore persists orders in a DynamoDB table keyed by order_id.
// Create is guarded by attribute_not_exists; Update is a versioned
// compare-and-set so concurrent transitions on one order are serialized.
type DynamoStore struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// casRetries bounds how often Update re-reads after losing a version race.
const casRetries = 3

// NewDynamoStore creates a store bound to a table.
func NewDynamoStore(client aws.DynamoDBAPI, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

func (s *DynamoStore) Create(ctx context.Context, o Order) error {
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

func (s *DynamoStore) Get(ctx context.Context, id string) (Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	if len(out.Item) == 0 {
		return Order{}, ErrOrderNotFound
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return Order{}, fmt.Errorf("unmarshal order: %w", err)
	}
	return o, nil
}

func (s *DynamoStore) GetByEmail(ctx context.Context, email string) ([]Order, error) {
	return s.scan(ctx, awsString("customer.email = :email"), map[string]types.AttributeValue{
		":email": &types.AttributeValueMemberS{Value: email},
	})
}

func (s *DynamoStore) List(ctx context.Context) ([]Order, error) {
	return s.scan(ctx, nil, nil)
}

// scan pages through the table. Fine at bookshop scale; an email GSI would be
// the next step if listings ever grow hot.
func (s *DynamoStore) scan(ctx context.Context, filter *string, values map[string]types.AttributeValue) ([]Order, error) {
	var out []Order
	var startKey map[string]types.AttributeValue
	for {
		resp, err := s.client.Scan(ctx, &dyn.ScanInput{
			TableName:                 &s.tableName,
			FilterExpression:          filter,
			ExpressionAttributeValues: values,
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan orders: %w", err)
		}
		for _, item := range resp.Items {
			var o Order
			if err := attributevalue.UnmarshalMap(item, &o); err != nil {
				return nil, fmt.Errorf("unmarshal order: %w", err)
			}
			out = append(out, o)
		}
		if len(resp.LastEvaluatedKey) == 0 {
			break
		}
		startKey = resp.LastEvaluatedKey
	}
	sortByCreated(out)
	return out, nil
}

func (s *DynamoStore) Update(ctx context.Context, id string, mutate func(*Order) error) (Order, error) {
	var lastErr error
	for attempt := 0; attempt < casRetries; attempt++ {
		current, err := s.Get(ctx, id)
		if err != nil {
			return Order{}, err
		}
		expected := current.Version

		working := current.Clone()
		if err := mutate(&working); err != nil {
			return Order{}, err
		}
		working.UpdatedAt = s.nowFunc()
		working.Version = expected + 1

		item, err := attributevalue.MarshalMap(working)
		if err != nil {
			return Order{}, fmt.Errorf("marshal order: %w", err)
		}
		_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
			TableName:           &s.tableName,
			Item:                item,
			ConditionExpression: awsString("version = :expected"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":expected": &types.AttributeValueMemberN{Value: strconv.FormatInt(expected, 10)},
			},
		})
		if err == nil {
			return working, nil
		}
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			// lost the race to a concurrent transition; re-read and retry
			lastErr = err
			continue
		}
		return Order{}, fmt.Errorf("put order: %w", err)
	}
	return Order{}, fmt.Errorf("update order %s: version conflict persisted after %d attempts: %w", id, casRetries, lastErr)
}

func awsString(s string) *string { return &s }
