package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo supports the PutItem/GetItem/Scan subset the store uses,
// including the two condition expressions it issues.
type mockDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue // order_id -> item
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pkAttr, ok := params.Item["order_id"]
	if !ok {
		return nil, errors.New("no order_id in put item")
	}
	pk := pkAttr.(*types.AttributeValueMemberS).Value

	if params.ConditionExpression != nil {
		switch *params.ConditionExpression {
		case "attribute_not_exists(order_id)":
			if _, exists := m.items[pk]; exists {
				return nil, &types.ConditionalCheckFailedException{}
			}
		case "version = :expected":
			existing, exists := m.items[pk]
			if !exists {
				return nil, &types.ConditionalCheckFailedException{}
			}
			want := params.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberN).Value
			got := existing["version"].(*types.AttributeValueMemberN).Value
			if want != got {
				return nil, &types.ConditionalCheckFailedException{}
			}
		default:
			return nil, errors.New("unsupported condition: " + *params.ConditionExpression)
		}
	}
	m.items[pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk := params.Key["order_id"].(*types.AttributeValueMemberS).Value
	item, ok := m.items[pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	return nil, errors.New("not used by this store")
}

func (m *mockDynamo) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := &dyn.ScanOutput{}
	for _, item := range m.items {
		if params.FilterExpression != nil && *params.FilterExpression == "customer.email = :email" {
			want := params.ExpressionAttributeValues[":email"].(*types.AttributeValueMemberS).Value
			cust, ok := item["customer"].(*types.AttributeValueMemberM)
			if !ok {
				continue
			}
			email, ok := cust.Value["email"].(*types.AttributeValueMemberS)
			if !ok || email.Value != want {
				continue
			}
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func TestDynamoStore_CreateGetAndDuplicate(t *testing.T) {
	mock := newMockDynamo()
	store := NewDynamoStore(mock, "orders")
	ctx := context.Background()

	if err := store.Create(ctx, seedOrder("CMB-10", "ada@example.com")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, seedOrder("CMB-10", "ada@example.com")); !errors.Is(err, ErrDuplicateOrder) {
		t.Fatalf("expected ErrDuplicateOrder, got %v", err)
	}

	got, err := store.Get(ctx, "CMB-10")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "CMB-10" || got.Customer.Email != "ada@example.com" {
		t.Fatalf("unexpected order: %+v", got)
	}

	if _, err := store.Get(ctx, "nope"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestDynamoStore_UpdateBumpsVersion(t *testing.T) {
	mock := newMockDynamo()
	store := NewDynamoStore(mock, "orders")
	ctx := context.Background()
	if err := store.Create(ctx, seedOrder("CMB-11", "a@b.c")); err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := store.Update(ctx, "CMB-11", func(o *Order) error {
		return o.TransitionTo(StatusConfirmed)
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != StatusConfirmed || updated.Version != 1 {
		t.Fatalf("unexpected update result: status=%s version=%d", updated.Status, updated.Version)
	}

	got, _ := store.Get(ctx, "CMB-11")
	if got.Status != StatusConfirmed {
		t.Fatalf("persisted status = %s, want CONFIRMED", got.Status)
	}
}

func TestDynamoStore_UpdateMutatorError(t *testing.T) {
	mock := newMockDynamo()
	store := NewDynamoStore(mock, "orders")
	ctx := context.Background()
	if err := store.Create(ctx, seedOrder("CMB-12", "a@b.c")); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := store.Update(ctx, "CMB-12", func(o *Order) error {
		return o.TransitionTo(StatusShipped) // illegal from PENDING
	})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	got, _ := store.Get(ctx, "CMB-12")
	if got.Status != StatusPending || got.Version != 0 {
		t.Fatalf("aborted update wrote anyway: %+v", got)
	}
}

func TestDynamoStore_GetByEmail(t *testing.T) {
	mock := newMockDynamo()
	store := NewDynamoStore(mock, "orders")
	ctx := context.Background()
	for _, o := range []Order{
		seedOrder("CMB-20", "ada@example.com"),
		seedOrder("CMB-21", "other@example.com"),
	} {
		if err := store.Create(ctx, o); err != nil {
			t.Fatalf("create %s: %v", o.ID, err)
		}
	}

	got, err := store.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if len(got) != 1 || got[0].ID != "CMB-20" {
		t.Fatalf("unexpected result: %+v", got)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("list returned %d, want 2", len(all))
	}
}
