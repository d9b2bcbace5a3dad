package services

import (
	"fmt"
	"math"

	"cotizador/models"
)

// PriceLines computes per-line totals and the running subtotal for a set
// of line items, in the order supplied. Pure computation, no I/O.
//
// Each line total is qty*unitPrice - discount (discount defaults to the
// zero value). Negative or non-finite inputs are rejected, as is a
// discount larger than the line amount it applies to.
func PriceLines(items []models.QuoteItemInput) (float64, []float64, error) {
	totals := make([]float64, 0, len(items))
	subtotal := 0.0
	for i, it := range items {
		if err := validateLine(i, it); err != nil {
			return 0, nil, err
		}
		lineTotal := it.Qty*it.UnitPrice - it.Discount
		totals = append(totals, lineTotal)
		subtotal += lineTotal
	}
	return subtotal, totals, nil
}

// GrandTotal combines a subtotal with externally supplied taxes. Taxes
// are per-quote input, not auto-computed here.
func GrandTotal(subtotal, taxes float64) float64 {
	return subtotal + taxes
}

func validateLine(i int, it models.QuoteItemInput) error {
	check := func(field string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ValidationError{
				Field: fmt.Sprintf("products[%d].%s", i, field),
				Msg:   "must be a finite number",
			}
		}
		if v < 0 {
			return &ValidationError{
				Field: fmt.Sprintf("products[%d].%s", i, field),
				Msg:   "must be greater than or equal to 0",
			}
		}
		return nil
	}
	if err := check("qty", it.Qty); err != nil {
		return err
	}
	if err := check("unitPrice", it.UnitPrice); err != nil {
		return err
	}
	if err := check("discount", it.Discount); err != nil {
		return err
	}
	if it.Discount > it.Qty*it.UnitPrice {
		return &ValidationError{
			Field: fmt.Sprintf("products[%d].discount", i),
			Msg:   "cannot exceed qty * unitPrice",
		}
	}
	return nil
}
