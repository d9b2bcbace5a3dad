package services

import (
	"testing"
	"time"

	"cotizador/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuote() *models.Quote {
	productID := 7
	return &models.Quote{
		ID:        1,
		Folio:     "FABC123",
		Status:    "sent",
		Subtotal:  200,
		Taxes:     999, // deliberately inconsistent with subtotal
		Total:     100,
		Terms:     "Precios en MXN",
		CreatedAt: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		SellerCompany: &models.Company{
			Name: "CONDUIT LIFE",
		},
		Seller: &models.User{Name: "Ana Pérez"},
		Client: &models.Client{Name: "Hospital General"},
		Items: []models.QuoteItem{
			{
				ProductID:   &productID,
				Product:     &models.Product{ID: 7, SKU: "MON-01"},
				Description: "Monitor de signos vitales",
				Qty:         2,
				UnitPrice:   100,
				Discount:    50,
				Total:       150,
			},
		},
	}
}

func TestRenderEmailHTMLIsDeterministic(t *testing.T) {
	r := NewRenderer(LoadBrandingTable(), 0.16)
	quote := sampleQuote()

	first, err := r.RenderQuoteEmailHTML(quote, "Saludos")
	require.NoError(t, err)
	second, err := r.RenderQuoteEmailHTML(quote, "Saludos")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderEmailHTMLRecomputesTaxOnPersistedTotal(t *testing.T) {
	r := NewRenderer(LoadBrandingTable(), 0.16)
	html, err := r.RenderQuoteEmailHTML(sampleQuote(), "")
	require.NoError(t, err)

	// Displayed subtotal is the persisted total; the tax line and grand
	// total come from the display rate, not from the stored taxes value.
	assert.Contains(t, html, "IVA (16%)")
	assert.Contains(t, html, "$100.00")
	assert.Contains(t, html, "$16.00")
	assert.Contains(t, html, "$116.00")
	assert.NotContains(t, html, "$999.00")
}

func TestRenderEmailHTMLItemSubtotalIgnoresDiscount(t *testing.T) {
	r := NewRenderer(LoadBrandingTable(), 0.16)
	html, err := r.RenderQuoteEmailHTML(sampleQuote(), "")
	require.NoError(t, err)

	// qty 2 * unit 100, the 50 discount does not show in the column
	assert.Contains(t, html, "$200.00")
	assert.NotContains(t, html, "$150.00")
}

func TestRenderEmailHTMLUsesBrandingTable(t *testing.T) {
	r := NewRenderer(LoadBrandingTable(), 0.16)
	html, err := r.RenderQuoteEmailHTML(sampleQuote(), "")
	require.NoError(t, err)

	assert.Contains(t, html, "CLF123456ABC")
	assert.Contains(t, html, "Calle Principal #123")
	assert.Contains(t, html, "FABC123")
	assert.Contains(t, html, "15/03/2026")
	assert.Contains(t, html, "MON-01")
}

func TestRenderEmailHTMLUnknownCompanyFallsBack(t *testing.T) {
	r := NewRenderer(LoadBrandingTable(), 0.16)
	quote := sampleQuote()
	quote.SellerCompany = &models.Company{Name: "Otra Empresa SA"}

	html, err := r.RenderQuoteEmailHTML(quote, "")
	require.NoError(t, err)
	assert.Contains(t, html, "Otra Empresa SA")
}

func TestRenderEmailHTMLNoCompanyUsesGenericLetterhead(t *testing.T) {
	r := NewRenderer(LoadBrandingTable(), 0.16)
	quote := sampleQuote()
	quote.SellerCompany = nil

	html, err := r.RenderQuoteEmailHTML(quote, "")
	require.NoError(t, err)
	assert.Contains(t, html, "Empresa Vendedora")
}

func TestRenderEmailHTMLEmptyTerms(t *testing.T) {
	r := NewRenderer(LoadBrandingTable(), 0.16)
	quote := sampleQuote()
	quote.Terms = ""

	html, err := r.RenderQuoteEmailHTML(quote, "")
	require.NoError(t, err)
	assert.Contains(t, html, "Ninguna")
}

func TestRenderEmailHTMLItemWithoutProductShowsPlaceholderCode(t *testing.T) {
	r := NewRenderer(LoadBrandingTable(), 0.16)
	quote := sampleQuote()
	quote.Items[0].Product = nil
	quote.Items[0].ProductID = nil

	html, err := r.RenderQuoteEmailHTML(quote, "")
	require.NoError(t, err)
	assert.Contains(t, html, "S/C")
}

func TestRenderPlainHTMLShowsPersistedTotalsVerbatim(t *testing.T) {
	r := NewRenderer(LoadBrandingTable(), 0.16)
	html, err := r.RenderQuotePDFHTML(sampleQuote())
	require.NoError(t, err)

	assert.Contains(t, html, "Subtotal: $200.00")
	assert.Contains(t, html, "Impuestos: $999.00")
	assert.Contains(t, html, "Total: $100.00")
	assert.Contains(t, html, "Hospital General")
	// line total column shows the discounted persisted amount
	assert.Contains(t, html, "$150.00")
}

func TestBrandingResolveIsCaseInsensitive(t *testing.T) {
	table := LoadBrandingTable()
	b := table.Resolve("conduit life")
	assert.Equal(t, "CLF123456ABC", b.RFC)
}
