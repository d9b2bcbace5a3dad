package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"strings"

	"cotizador/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Branding is the letterhead metadata rendered on emailed quotes.
type Branding struct {
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	RFC      string `json:"rfc"`
}

// BrandingTable maps an upper-cased seller company name to its branding.
type BrandingTable map[string]Branding

// defaultBrandingTable covers the seller companies known at launch. A
// JSON file pointed to by BRANDING_FILE replaces it entirely.
var defaultBrandingTable = BrandingTable{
	"CONDUIT LIFE": {
		Name:     "CONDUIT LIFE",
		FullName: "CONDUIT LIFE",
		Address:  "Calle Principal #123, Col. Centro, Ciudad, Estado, C.P. 12345",
		RFC:      "CLF123456ABC",
	},
	"BIOSYSTEMS HLS": {
		Name:     "BIOSYSTEMS HLS",
		FullName: "BIOSYSTEMS HLS",
		Address:  "Av. Tecnológico #456, Col. Industrial, Ciudad, Estado, C.P. 54321",
		RFC:      "BHS789012DEF",
	},
	"INGENIERÍA CLÍNICA Y DISEÑO": {
		Name:     "INGENIERÍA CLÍNICA Y DISEÑO",
		FullName: "INGENIERÍA CLÍNICA Y DISEÑO S.A. DE C.V.",
		Address:  "Boulevard Innovación #789, Col. Empresarial, Ciudad, Estado, C.P. 67890",
		RFC:      "ICD345678GHI",
	},
	"ESCALA BIOMÉDICA": {
		Name:     "ESCALA BIOMÉDICA",
		FullName: "ESCALA BIOMÉDICA",
		Address:  "Calle Salud #321, Col. Médica, Ciudad, Estado, C.P. 09876",
		RFC:      "EBM901234JKL",
	},
}

// LoadBrandingTable returns the branding table from BRANDING_FILE when
// set, otherwise the built-in defaults.
func LoadBrandingTable() BrandingTable {
	path := os.Getenv("BRANDING_FILE")
	if path == "" {
		return defaultBrandingTable
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return defaultBrandingTable
	}
	var table BrandingTable
	if err := json.Unmarshal(data, &table); err != nil {
		return defaultBrandingTable
	}
	normalized := make(BrandingTable, len(table))
	for name, b := range table {
		normalized[strings.ToUpper(name)] = b
	}
	return normalized
}

// Resolve looks up branding by normalized (upper-cased) company name,
// falling back to a generic letterhead with the raw name.
func (t BrandingTable) Resolve(companyName string) Branding {
	if b, ok := t[strings.ToUpper(companyName)]; ok {
		return b
	}
	name := companyName
	if name == "" {
		name = "Empresa Vendedora"
	}
	return Branding{Name: name, FullName: name}
}

// Renderer turns a priced quote into a self-contained HTML document.
// Pure function of its inputs aside from the injected branding table:
// rendering the same quote twice yields identical bytes.
type Renderer struct {
	branding BrandingTable
	taxRate  float64
	printer  *message.Printer
	emailTpl *template.Template
	plainTpl *template.Template
}

// NewRenderer builds a renderer with the given branding table and the
// display tax rate applied by the branded email document.
func NewRenderer(branding BrandingTable, taxRate float64) *Renderer {
	r := &Renderer{
		branding: branding,
		taxRate:  taxRate,
		printer:  message.NewPrinter(language.MustParse("es-MX")),
	}
	funcs := template.FuncMap{"money": r.money}
	r.emailTpl = template.Must(template.New("quote_email").Funcs(funcs).Parse(quoteEmailTemplate))
	r.plainTpl = template.Must(template.New("quote_plain").Funcs(funcs).Parse(quotePlainTemplate))
	return r
}

// TaxRate returns the display tax rate used by the branded document.
func (r *Renderer) TaxRate() float64 {
	return r.taxRate
}

func (r *Renderer) money(v float64) string {
	return "$" + r.printer.Sprintf("%.2f", v)
}

type emailItemView struct {
	Code        string
	Description string
	Qty         float64
	UnitPrice   float64
	Subtotal    float64
}

type emailView struct {
	Company    Branding
	Folio      string
	Date       string
	Seller     string
	ClientName string
	Message    string
	Terms      string
	Items      []emailItemView
	Subtotal   float64
	Tax        float64
	Total      float64
	TaxPercent string
}

// RenderQuoteEmailHTML renders the branded letterhead document attached
// to outgoing quote emails.
//
// The totals box treats the persisted quote total as the displayed
// subtotal and recomputes a tax line as subtotal*taxRate on top of it;
// the per-item subtotal column is qty*unitPrice and ignores discounts.
// Both quirks are carried over from the established document layout and
// intentionally diverge from the stored aggregate.
func (r *Renderer) RenderQuoteEmailHTML(quote *models.Quote, customMessage string) (string, error) {
	companyName := ""
	if quote.SellerCompany != nil {
		companyName = quote.SellerCompany.Name
	}

	view := emailView{
		Company:    r.branding.Resolve(companyName),
		Folio:      quote.Folio,
		Date:       quote.CreatedAt.Format("02/01/2006"),
		Message:    customMessage,
		Terms:      quote.Terms,
		Subtotal:   quote.Total,
		Tax:        quote.Total * r.taxRate,
		Total:      quote.Total * (1 + r.taxRate),
		TaxPercent: fmt.Sprintf("%g", r.taxRate*100),
	}
	if view.Terms == "" {
		view.Terms = "Ninguna"
	}
	if quote.Seller != nil {
		view.Seller = quote.Seller.Name
	}
	if quote.Client != nil {
		view.ClientName = quote.Client.Name
	}

	for _, it := range quote.Items {
		code := "S/C"
		if it.Product != nil && it.Product.SKU != "" {
			code = it.Product.SKU
		} else if it.ProductID != nil {
			code = fmt.Sprintf("%d", *it.ProductID)
		}
		view.Items = append(view.Items, emailItemView{
			Code:        code,
			Description: it.Description,
			Qty:         it.Qty,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Qty * it.UnitPrice,
		})
	}

	var buf bytes.Buffer
	if err := r.emailTpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderQuotePDFHTML renders the plain variant used for direct PDF
// download: no branding lookup, no tax recomputation, persisted totals
// shown verbatim.
func (r *Renderer) RenderQuotePDFHTML(quote *models.Quote) (string, error) {
	clientName := ""
	if quote.Client != nil {
		clientName = quote.Client.Name
	}
	data := struct {
		Folio      string
		ClientName string
		Date       string
		Items      []models.QuoteItem
		Subtotal   float64
		Taxes      float64
		Total      float64
	}{
		Folio:      quote.Folio,
		ClientName: clientName,
		Date:       quote.CreatedAt.Format("02/01/2006"),
		Items:      quote.Items,
		Subtotal:   quote.Subtotal,
		Taxes:      quote.Taxes,
		Total:      quote.Total,
	}
	var buf bytes.Buffer
	if err := r.plainTpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const quoteEmailTemplate = `<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <title>Cotización {{.Folio}}</title>
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body { font-family: Arial, sans-serif; background: #f3f4f6; padding: 20px; }
    .container { max-width: 800px; margin: 0 auto; background: white; padding: 40px; border-radius: 10px; box-shadow: 0 4px 6px rgba(0,0,0,0.1); }
    .header { background: linear-gradient(135deg, #1e40af 0%, #3b82f6 100%); color: white; padding: 30px; border-radius: 10px; margin-bottom: 30px; text-align: center; }
    .header h1 { font-size: 28px; margin-bottom: 10px; }
    .company-info { background: #f9fafb; padding: 20px; border-radius: 8px; margin-bottom: 25px; border-left: 4px solid #1e40af; }
    .company-info h2 { color: #1e40af; margin-bottom: 10px; }
    .quote-info { display: flex; justify-content: space-between; background: #f9fafb; padding: 20px; border-radius: 8px; margin-bottom: 30px; }
    .quote-info strong { color: #1e40af; display: block; margin-bottom: 5px; }
    .message-box { background: #eff6ff; border-left: 4px solid #3b82f6; padding: 20px; margin-bottom: 30px; border-radius: 8px; }
    table { width: 100%; border-collapse: collapse; margin: 30px 0; }
    th { background: linear-gradient(135deg, #1e40af 0%, #3b82f6 100%); color: white; padding: 14px; font-weight: bold; }
    th.right, td.right { text-align: right; }
    td { padding: 12px; border-bottom: 1px solid #e5e7eb; }
    .total-section { margin-top: 30px; display: flex; justify-content: flex-end; }
    .total-box { background: #f9fafb; padding: 20px; border-radius: 8px; min-width: 300px; border: 2px solid #e5e7eb; }
    .total-row { display: flex; justify-content: space-between; padding: 8px 0; }
    .total-row.final { border-top: 2px solid #1e40af; margin-top: 10px; padding-top: 12px; font-size: 18px; font-weight: bold; color: #1e40af; }
    footer { margin-top: 30px; background: #f9fafb; padding: 20px; border-radius: 8px; border-top: 3px solid #1e40af; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>{{.Company.FullName}}</h1>
      <p>Cotización Profesional</p>
    </div>
    <div class="company-info">
      <h2>{{.Company.Name}}</h2>
      <div>{{.Company.Address}}</div>
      <div>RFC: {{.Company.RFC}}</div>
    </div>
    <div class="quote-info">
      <div><strong>Folio:</strong> {{.Folio}}</div>
      <div><strong>Fecha:</strong> {{.Date}}</div>
      <div><strong>Vendedor:</strong> {{.Seller}}</div>
      <div><strong>Cliente:</strong> {{.ClientName}}</div>
    </div>
    {{if .Message}}<div class="message-box"><p>{{.Message}}</p></div>{{end}}
    <table>
      <thead>
        <tr>
          <th>Código</th>
          <th>Descripción</th>
          <th class="right">Cantidad</th>
          <th class="right">Precio Unit.</th>
          <th class="right">Subtotal</th>
        </tr>
      </thead>
      <tbody>
        {{range .Items}}<tr>
          <td>{{.Code}}</td>
          <td>{{.Description}}</td>
          <td class="right">{{.Qty}}</td>
          <td class="right">{{money .UnitPrice}}</td>
          <td class="right">{{money .Subtotal}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    <div class="total-section">
      <div class="total-box">
        <div class="total-row"><span>Subtotal:</span><span>{{money .Subtotal}}</span></div>
        <div class="total-row"><span>IVA ({{.TaxPercent}}%):</span><span>{{money .Tax}}</span></div>
        <div class="total-row final"><span>TOTAL:</span><span>{{money .Total}}</span></div>
      </div>
    </div>
    <footer>
      <strong>Observaciones:</strong>
      <div>{{.Terms}}</div>
    </footer>
  </div>
</body>
</html>`

const quotePlainTemplate = `<html>
<body>
  <h1>Cotización {{.Folio}}</h1>
  <p>Cliente: {{.ClientName}}</p>
  <p>Fecha: {{.Date}}</p>
  <table border="1" cellpadding="6">
    <thead>
      <tr><th>Descripción</th><th>Cantidad</th><th>Precio Unit.</th><th>Total</th></tr>
    </thead>
    <tbody>
      {{range .Items}}<tr><td>{{.Description}}</td><td>{{.Qty}}</td><td>{{money .UnitPrice}}</td><td>{{money .Total}}</td></tr>
      {{end}}
    </tbody>
  </table>
  <h3>Subtotal: {{money .Subtotal}}</h3>
  <h3>Impuestos: {{money .Taxes}}</h3>
  <h3>Total: {{money .Total}}</h3>
</body>
</html>`
