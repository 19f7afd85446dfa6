package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	margin     = 20.0
	lineHeight = 5.0
)

// document wraps fpdf with the handful of blocks the reports use. Text is
// translated to the core fonts' code page so Dutch accents render.
type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newDocument(orientation string) *document {
	pdf := fpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AliasNbPages("")
	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, d.tr(fmt.Sprintf("Pagina %d/{nb}", pdf.PageNo())), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	return d
}

func (d *document) title(text string) {
	d.pdf.SetFont("Helvetica", "B", 20)
	d.pdf.MultiCell(0, 9, d.tr(text), "", "L", false)
	d.pdf.Ln(3)
}

func (d *document) heading(text string) {
	d.pdf.Ln(4)
	d.pdf.SetFont("Helvetica", "B", 14)
	d.pdf.SetTextColor(0, 82, 155)
	d.pdf.MultiCell(0, 7, d.tr(text), "", "L", false)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.Ln(1)
}

func (d *document) paragraph(text string) {
	if text == "" {
		return
	}
	d.pdf.SetFont("Helvetica", "", 11)
	d.pdf.MultiCell(0, lineHeight, d.tr(text), "", "L", false)
	d.pdf.Ln(2)
}

// item prints a bold label followed by its text
func (d *document) item(label, text string) {
	d.pdf.SetFont("Helvetica", "B", 11)
	d.pdf.MultiCell(0, lineHeight, d.tr(label), "", "L", false)
	d.paragraph(text)
}

func (d *document) bullets(items []string) {
	d.pdf.SetFont("Helvetica", "", 11)
	for _, it := range items {
		d.pdf.MultiCell(0, lineHeight, d.tr("- "+it), "", "L", false)
	}
	d.pdf.Ln(2)
}

func (d *document) numbered(items []string) {
	d.pdf.SetFont("Helvetica", "", 11)
	for i, it := range items {
		d.pdf.MultiCell(0, lineHeight, d.tr(fmt.Sprintf("%d. %s", i+1, it)), "", "L", false)
	}
	d.pdf.Ln(2)
}

func (d *document) muted(text string) {
	d.pdf.SetFont("Helvetica", "I", 9)
	d.pdf.SetTextColor(100, 100, 100)
	d.pdf.MultiCell(0, 4, d.tr(text), "", "L", false)
	d.pdf.SetTextColor(0, 0, 0)
}

func (d *document) render() ([]byte, int, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), d.pdf.PageCount(), nil
}
