package orders

// FreeShippingCents is the flat shipping charge. Zero is deliberate business
// policy (free worldwide shipping), not a placeholder.
const FreeShippingCents int64 = 0

// Totals holds the derived money fields of an order.
type Totals struct {
	SubtotalCents int64
	ShippingCents int64
	TotalCents    int64
}

// ComputeTotals derives subtotal, shipping and total from the line items.
// Pure; all arithmetic is in integer cents so there is no rounding ambiguity.
func ComputeTotals(items []Item) Totals {
	var subtotal int64
	for _, it := range items {
		subtotal += it.LineTotalCents()
	}
	return Totals{
		SubtotalCents: subtotal,
		ShippingCents: FreeShippingCents,
		TotalCents:    subtotal + FreeShippingCents,
	}
}
