package orders

import "context"

// Store is the port for order persistence. All reads return snapshots
// (copies); callers must not expect mutations of a returned Order to be
// visible in the store. Update must be atomic per order: concurrent
// transitions on the same ID are serialized, different IDs are independent.
type Store interface {
	// Create persists a new order; ErrDuplicateOrder if the ID exists.
	Create(ctx context.Context, o Order) error
	// Get returns a snapshot; ErrOrderNotFound if absent.
	Get(ctx context.Context, id string) (Order, error)
	// GetByEmail returns snapshots of every order placed with the given email.
	GetByEmail(ctx context.Context, email string) ([]Order, error)
	// List returns snapshots of all orders.
	List(ctx context.Context) ([]Order, error)
	// Update applies mutate to the current record and persists the result,
	// refreshing UpdatedAt. An error from mutate aborts the write and is
	// returned unchanged. Returns the updated snapshot.
	Update(ctx context.Context, id string, mutate func(*Order) error) (Order, error)
}
