package orders

import (
	"context"
	"testing"
)

// fakeCache is an in-process SnapshotCache recording its traffic.
type fakeCache struct {
	entries map[string]Order
	gets    int
	hits    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]Order{}}
}

func (c *fakeCache) Get(ctx context.Context, id string) (Order, bool) {
	c.gets++
	o, ok := c.entries[id]
	if ok {
		c.hits++
	}
	return o, ok
}

func (c *fakeCache) Set(ctx context.Context, o Order) { c.entries[o.ID] = o }
func (c *fakeCache) Del(ctx context.Context, id string) { delete(c.entries, id) }

func TestCachedStore_ReadThrough(t *testing.T) {
	inner := NewMemoryStore()
	cache := newFakeCache()
	s := NewCachedStore(inner, cache)
	ctx := context.Background()

	if err := s.Create(ctx, seedOrder("CMB-1", "a@b.c")); err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := s.Get(ctx, "CMB-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cache.hits != 0 {
		t.Fatal("first get should miss the cache")
	}

	second, err := s.Get(ctx, "CMB-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cache.hits != 1 {
		t.Fatalf("second get should hit the cache, hits=%d", cache.hits)
	}
	if first.ID != second.ID || first.Status != second.Status {
		t.Fatalf("cache returned a different snapshot: %+v vs %+v", first, second)
	}
}

func TestCachedStore_UpdateRefreshesEntry(t *testing.T) {
	inner := NewMemoryStore()
	cache := newFakeCache()
	s := NewCachedStore(inner, cache)
	ctx := context.Background()

	if err := s.Create(ctx, seedOrder("CMB-1", "a@b.c")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Get(ctx, "CMB-1"); err != nil { // prime the cache
		t.Fatalf("get: %v", err)
	}

	if _, err := s.Update(ctx, "CMB-1", func(o *Order) error {
		return o.TransitionTo(StatusConfirmed)
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.Get(ctx, "CMB-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusConfirmed {
		t.Fatalf("cached snapshot is stale: %s", got.Status)
	}
}

func TestCachedStore_FailedUpdateLeavesNoStaleEntry(t *testing.T) {
	inner := NewMemoryStore()
	cache := newFakeCache()
	s := NewCachedStore(inner, cache)
	ctx := context.Background()

	if err := s.Create(ctx, seedOrder("CMB-1", "a@b.c")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Get(ctx, "CMB-1"); err != nil {
		t.Fatalf("get: %v", err)
	}

	if _, err := s.Update(ctx, "CMB-1", func(o *Order) error {
		return o.TransitionTo(StatusDelivered) // illegal from PENDING
	}); err == nil {
		t.Fatal("expected rejected update")
	}
	if _, ok := cache.entries["CMB-1"]; ok {
		t.Fatal("rejected update must leave the entry invalidated, not stale")
	}

	got, err := s.Get(ctx, "CMB-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusPending {
		t.Fatalf("status = %s, want PENDING", got.Status)
	}
}
