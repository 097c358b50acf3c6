package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// reject carts that reference the same book twice; the storefront merges
	// quantities client-side, so a duplicate line means a malformed request
	v.RegisterStructValidation(checkoutStructValidation, CheckoutRequest{})

	return v
}

func checkoutStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CheckoutRequest)

	seen := make(map[string]bool, len(req.Items))
	for _, it := range req.Items {
		if seen[it.BookID] {
			sl.ReportError(req.Items, "items", "Items", "unique_book_ids", it.BookID)
			return
		}
		seen[it.BookID] = true
	}
}
