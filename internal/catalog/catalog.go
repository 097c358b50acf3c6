// Package catalog defines the port to the book catalog. The real catalog is
// owned by the storefront; this core only needs price, title and availability
// at checkout time.
package catalog

import "sync"

// Book is the catalog entry referenced by an order line item.
type Book struct {
	ID         string
	Title      string
	Author     string
	PriceCents int64
	InStock    bool
}

// Catalog resolves a cart's book references.
type Catalog interface {
	FindByID(id string) (Book, bool)
}

// Memory is a map-backed catalog used in local runs and tests.
type Memory struct {
	mu    sync.RWMutex
	books map[string]Book
}

// NewMemory returns a catalog seeded with the given books.
func NewMemory(books ...Book) *Memory {
	m := &Memory{books: make(map[string]Book, len(books))}
	for _, b := range books {
		m.books[b.ID] = b
	}
	return m
}

func (m *Memory) FindByID(id string) (Book, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	return b, ok
}

// Put adds or replaces an entry. Later edits never touch existing orders,
// which hold their own snapshot of the entry.
func (m *Memory) Put(b Book) {
	m.mu.Lock()
	m.books[b.ID] = b
	m.mu.Unlock()
}
