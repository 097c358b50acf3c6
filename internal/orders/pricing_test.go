package orders

import "testing"

func TestComputeTotals(t *testing.T) {
	items := []Item{
		{BookID: "b1", Quantity: 2, UnitPriceCents: 1000},
		{BookID: "b2", Quantity: 1, UnitPriceCents: 550},
	}
	got := ComputeTotals(items)
	if got.SubtotalCents != 2550 {
		t.Fatalf("subtotal = %d, want 2550", got.SubtotalCents)
	}
	if got.ShippingCents != 0 {
		t.Fatalf("shipping = %d, want 0 (free worldwide shipping)", got.ShippingCents)
	}
	if got.TotalCents != got.SubtotalCents+got.ShippingCents {
		t.Fatalf("total invariant broken: %d != %d + %d", got.TotalCents, got.SubtotalCents, got.ShippingCents)
	}
}

func TestComputeTotals_Empty(t *testing.T) {
	got := ComputeTotals(nil)
	if got.SubtotalCents != 0 || got.TotalCents != 0 {
		t.Fatalf("empty cart totals = %+v, want zeros", got)
	}
}

func TestFormatCents(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{1250, "12.50"},
		{2000, "20.00"},
		{-199, "-1.99"},
	}
	for _, c := range cases {
		if got := FormatCents(c.cents); got != c.want {
			t.Fatalf("FormatCents(%d) = %q, want %q", c.cents, got, c.want)
		}
	}
}
