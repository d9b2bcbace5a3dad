package services

import (
	"testing"

	"cotizador/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceLinesComputesLineTotals(t *testing.T) {
	items := []models.QuoteItemInput{
		{Qty: 2, UnitPrice: 100, Discount: 0},
		{Qty: 3, UnitPrice: 50, Discount: 25},
		{Qty: 1, UnitPrice: 10},
	}

	subtotal, totals, err := PriceLines(items)
	require.NoError(t, err)

	assert.Equal(t, []float64{200, 125, 10}, totals)
	assert.Equal(t, 335.0, subtotal)
}

func TestPriceLinesEmptyInput(t *testing.T) {
	subtotal, totals, err := PriceLines(nil)
	require.NoError(t, err)
	assert.Empty(t, totals)
	assert.Equal(t, 0.0, subtotal)
}

func TestPriceLinesSubtotalIsOrderInvariant(t *testing.T) {
	items := []models.QuoteItemInput{
		{Qty: 2, UnitPrice: 100},
		{Qty: 5, UnitPrice: 33, Discount: 15},
		{Qty: 7, UnitPrice: 12.5},
	}
	reversed := []models.QuoteItemInput{items[2], items[1], items[0]}

	subtotal, _, err := PriceLines(items)
	require.NoError(t, err)
	reversedSubtotal, _, err := PriceLines(reversed)
	require.NoError(t, err)

	assert.InDelta(t, subtotal, reversedSubtotal, 1e-9)
}

func TestPriceLinesRejectsNegativeInputs(t *testing.T) {
	cases := []struct {
		name  string
		item  models.QuoteItemInput
		field string
	}{
		{"negative qty", models.QuoteItemInput{Qty: -1, UnitPrice: 10}, "products[0].qty"},
		{"negative unit price", models.QuoteItemInput{Qty: 1, UnitPrice: -10}, "products[0].unitPrice"},
		{"negative discount", models.QuoteItemInput{Qty: 1, UnitPrice: 10, Discount: -1}, "products[0].discount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := PriceLines([]models.QuoteItemInput{tc.item})
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestPriceLinesRejectsDiscountAboveLineAmount(t *testing.T) {
	_, _, err := PriceLines([]models.QuoteItemInput{{Qty: 1, UnitPrice: 10, Discount: 11}})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "products[0].discount", vErr.Field)
}

func TestGrandTotal(t *testing.T) {
	assert.Equal(t, 232.0, GrandTotal(200, 32))
	assert.Equal(t, 200.0, GrandTotal(200, 0))
}
