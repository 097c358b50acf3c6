package orders

import (
	"fmt"
	"strings"

	"github.com/cambermillbooks/order-service/internal/catalog"
)

// CartLine is a raw checkout line before catalog resolution.
type CartLine struct {
	BookID   string
	Quantity int
}

// ValidateInput checks a cart and customer record for completeness and stock
// availability. It accumulates every violation rather than short-circuiting so
// the caller can surface the complete list. Pure apart from catalog lookups.
func ValidateInput(lines []CartLine, customer Customer, cat catalog.Catalog) []string {
	var violations []string

	if len(lines) == 0 {
		violations = append(violations, "Order must contain at least one item")
	}
	for i, ln := range lines {
		if ln.Quantity <= 0 {
			violations = append(violations, fmt.Sprintf("Item %d: quantity must be positive", i+1))
		}
		book, ok := cat.FindByID(ln.BookID)
		if !ok {
			violations = append(violations, fmt.Sprintf("Item %d: unknown book %q", i+1, ln.BookID))
			continue
		}
		if !book.InStock {
			violations = append(violations, fmt.Sprintf("Item %d: %q is out of stock", i+1, book.Title))
		}
	}

	required := []struct {
		value, name string
	}{
		{customer.FirstName, "first name"},
		{customer.LastName, "last name"},
		{customer.Email, "email"},
		{customer.Address.Line1, "address line 1"},
		{customer.Address.City, "city"},
		{customer.Address.PostalCode, "postal code"},
		{customer.Address.Country, "country"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			violations = append(violations, fmt.Sprintf("Customer %s is required", f.name))
		}
	}

	return violations
}

// ResolveItems turns cart lines into priced line-item snapshots. Call only
// after ValidateInput passed; unknown books are skipped defensively.
func ResolveItems(lines []CartLine, cat catalog.Catalog) []Item {
	items := make([]Item, 0, len(lines))
	for _, ln := range lines {
		book, ok := cat.FindByID(ln.BookID)
		if !ok {
			continue
		}
		items = append(items, Item{
			BookID:         book.ID,
			Title:          book.Title,
			Author:         book.Author,
			Quantity:       ln.Quantity,
			UnitPriceCents: book.PriceCents,
		})
	}
	return items
}
