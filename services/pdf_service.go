package services

import (
	"bytes"
	"errors"
	"strings"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/net/html"
)

// Converter turns well-formed HTML into a paginated PDF byte buffer.
type Converter interface {
	Convert(htmlStr string, opts ...ConvertOption) ([]byte, error)
}

type convertOptions struct {
	folioQR string
}

// ConvertOption adjusts PDF conversion.
type ConvertOption func(*convertOptions)

// WithFolioQR stamps a QR code carrying the quote folio on the last
// page, so a printed document can be traced back to its record.
func WithFolioQR(folio string) ConvertOption {
	return func(o *convertOptions) {
		o.folioQR = folio
	}
}

// FpdfConverter renders HTML to PDF by extracting headings, paragraphs
// and table rows from the parsed document and laying them out on A4
// pages with gofpdf.
type FpdfConverter struct{}

func NewFpdfConverter() *FpdfConverter {
	return &FpdfConverter{}
}

const (
	blockHeading = iota
	blockText
	blockRow
)

type pdfBlock struct {
	kind   int
	text   string
	cells  []string
	header bool
}

// Convert implements Converter.
func (c *FpdfConverter) Convert(htmlStr string, opts ...ConvertOption) ([]byte, error) {
	var options convertOptions
	for _, opt := range opts {
		opt(&options)
	}

	if strings.TrimSpace(htmlStr) == "" {
		return nil, errors.New("empty document")
	}

	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return nil, err
	}
	blocks := extractBlocks(doc)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	for _, b := range blocks {
		switch b.kind {
		case blockHeading:
			pdf.SetFont("Arial", "B", 14)
			pdf.MultiCell(contentW, 8, tr(b.text), "", "L", false)
			pdf.Ln(2)
		case blockText:
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(contentW, 5, tr(b.text), "", "L", false)
			pdf.Ln(1)
		case blockRow:
			if len(b.cells) == 0 {
				continue
			}
			style := ""
			if b.header {
				style = "B"
			}
			pdf.SetFont("Arial", style, 9)
			colW := contentW / float64(len(b.cells))
			for _, cell := range b.cells {
				pdf.CellFormat(colW, 7, tr(cell), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if options.folioQR != "" {
		if err := stampFolioQR(pdf, options.folioQR); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func stampFolioQR(pdf *gofpdf.Fpdf, folio string) error {
	png, err := qrcode.Encode(folio, qrcode.Medium, 128)
	if err != nil {
		return err
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("folio-qr", opts, bytes.NewReader(png))
	pageW, pageH := pdf.GetPageSize()
	pdf.ImageOptions("folio-qr", pageW-38, pageH-38, 24, 24, false, opts, 0, "")
	return pdf.Error()
}

// extractBlocks walks the DOM and flattens it into renderable blocks:
// table rows keep their cell structure, headings stay on their own line,
// everything else collapses into paragraphs at block-element boundaries.
func extractBlocks(doc *html.Node) []pdfBlock {
	var blocks []pdfBlock
	var para strings.Builder

	flush := func() {
		if s := collapseSpace(para.String()); s != "" {
			blocks = append(blocks, pdfBlock{kind: blockText, text: s})
		}
		para.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "head", "style", "script", "title":
				return
			case "h1", "h2", "h3", "h4":
				flush()
				if s := collapseSpace(textContent(n)); s != "" {
					blocks = append(blocks, pdfBlock{kind: blockHeading, text: s})
				}
				return
			case "table":
				flush()
				blocks = append(blocks, extractRows(n)...)
				return
			case "p", "div", "footer", "li", "br":
				flush()
			}
		}
		if n.Type == html.TextNode {
			para.WriteString(n.Data)
			para.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "footer", "li":
				flush()
			}
		}
	}
	walk(doc)
	flush()
	return blocks
}

func extractRows(table *html.Node) []pdfBlock {
	var rows []pdfBlock
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			row := pdfBlock{kind: blockRow}
			for cell := n.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type != html.ElementNode {
					continue
				}
				switch cell.Data {
				case "th":
					row.header = true
					row.cells = append(row.cells, collapseSpace(textContent(cell)))
				case "td":
					row.cells = append(row.cells, collapseSpace(textContent(cell)))
				}
			}
			if len(row.cells) > 0 {
				rows = append(rows, row)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(table)
	return rows
}

func textContent(n *html.Node) string {
	var text strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
			text.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return text.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
