package catalog

import "testing"

func TestMemory_FindByID(t *testing.T) {
	m := NewMemory(
		Book{ID: "b1", Title: "Book One", PriceCents: 1000, InStock: true},
	)

	b, ok := m.FindByID("b1")
	if !ok {
		t.Fatal("expected book to be found")
	}
	if b.Title != "Book One" || b.PriceCents != 1000 {
		t.Fatalf("unexpected book: %+v", b)
	}

	if _, ok := m.FindByID("missing"); ok {
		t.Fatal("expected miss for unknown id")
	}
}

func TestMemory_PutReplaces(t *testing.T) {
	m := NewMemory(Book{ID: "b1", Title: "Book One", PriceCents: 1000, InStock: true})
	m.Put(Book{ID: "b1", Title: "Book One (2nd ed.)", PriceCents: 1200, InStock: true})

	b, ok := m.FindByID("b1")
	if !ok || b.PriceCents != 1200 {
		t.Fatalf("unexpected book after put: %+v ok=%v", b, ok)
	}
}
