package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/matzehuels/scormlens/pkg/buildinfo"
	"github.com/matzehuels/scormlens/pkg/course"
	"github.com/matzehuels/scormlens/pkg/validate"
)

const (
	pageWidth = 190.0 // A4 minus 10mm margins
	rowHeight = 7.0
)

// PDFExporter renders datasets and analysis reports as PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
// Columns share the page width equally.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := newDocument(title)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if title != "" {
		heading(pdf, tr, strings.ToUpper(title))
	}
	widths := make([]float64, len(data.Headers))
	for i := range widths {
		widths[i] = pageWidth / float64(len(data.Headers))
	}
	table(pdf, tr, data, widths, nil)
	return output(pdf)
}

// Report renders the full analysis of m: metadata summary, validation
// findings and content map.
func (e *PDFExporter) Report(m *course.Model) ([]byte, error) {
	title := m.Metadata.Title
	if title == "" {
		title = m.Source
	}
	pdf := newDocument(title)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	heading(pdf, tr, title)
	for _, kv := range Summary(m) {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(40, 6, tr(kv[0]), "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(pageWidth-40, 6, tr(fit(pdf, kv[1], pageWidth-40)), "", 1, "", false, 0, "")
	}

	section(pdf, tr, "Validation")
	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(pageWidth, 5, tr(m.Summary().Verdict()), "", "", false)
	pdf.Ln(2)
	if len(m.Findings) > 0 {
		table(pdf, tr, Findings(m), []float64{20, 62, 28, 80}, severityColor)
	}

	section(pdf, tr, "Content map")
	table(pdf, tr, ContentMap(m), []float64{28, 50, 12, 30, 20, 50}, nil)

	return output(pdf)
}

func newDocument(title string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(title, true)
	pdf.SetCreator(buildinfo.UserAgent(), true)
	pdf.AddPage()
	return pdf
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func heading(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, tr(text), "", 1, "C", false, 0, "")
	pdf.Ln(4)
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, tr(text), "B", 1, "", false, 0, "")
	pdf.Ln(2)
}

// table draws ds with fixed column widths. Cell text is truncated to fit.
// rowColor, when set, picks the text color of each row.
func table(pdf *gofpdf.Fpdf, tr func(string) string, ds Dataset, widths []float64, rowColor func(map[string]string) (int, int, int)) {
	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range ds.Headers {
			pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	pdf.SetFont("Arial", "", 8)
	for _, row := range ds.Rows {
		if pdf.GetY()+rowHeight > pageHeight-bottom {
			pdf.AddPage()
			header()
			pdf.SetFont("Arial", "", 8)
		}
		if rowColor != nil {
			pdf.SetTextColor(rowColor(row))
		}
		for i, h := range ds.Headers {
			pdf.CellFormat(widths[i], rowHeight, tr(fit(pdf, row[h], widths[i]-2)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
	}
}

// fit shortens s with "..." until it is at most w wide in the current font.
func fit(pdf *gofpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > w {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func severityColor(row map[string]string) (int, int, int) {
	switch validate.Severity(row[ColSeverity]) {
	case validate.SeverityError:
		return 200, 40, 40
	case validate.SeverityWarning:
		return 200, 120, 0
	}
	return 30, 90, 200
}

// Summary returns the labelled overview fields shown at the top of a
// report, in display order. Optional fields are omitted when empty.
func Summary(m *course.Model) [][2]string {
	md := m.Metadata
	pairs := [][2]string{
		{"Source", m.Source},
		{"SCORM version", md.Version.Label()},
		{"Title", md.Title},
		{"Identifier", md.Identifier},
		{"Manifest", m.ManifestPath},
		{"Resources", fmt.Sprintf("%d SCO, %d asset", m.Counts.SCOs, m.Counts.Assets)},
		{"Items", strconv.Itoa(m.Counts.Items)},
		{"Files", strconv.Itoa(m.Counts.Files)},
	}
	if md.Description != "" {
		pairs = append(pairs, [2]string{"Description", md.Description})
	}
	if len(md.Keywords) > 0 {
		pairs = append(pairs, [2]string{"Keywords", strings.Join(md.Keywords, ", ")})
	}
	if md.SchemaVersion != "" {
		pairs = append(pairs, [2]string{"Schema version", md.SchemaVersion})
	}
	if md.MasteryScore != nil {
		pairs = append(pairs, [2]string{"Mastery score", strconv.FormatFloat(*md.MasteryScore, 'g', -1, 64)})
	}
	if m.Launch != nil && m.Launch.Href != "" {
		pairs = append(pairs, [2]string{"Launch file", m.Launch.Href})
	}
	if sq := md.Sequencing; sq != nil {
		pairs = append(pairs, [2]string{"Sequencing", fmt.Sprintf("choice=%t flow=%t forwardOnly=%t", sq.Choice, sq.Flow, sq.ForwardOnly)})
	}
	pairs = append(pairs, [2]string{"SHA-256", m.Digest})
	return pairs
}
