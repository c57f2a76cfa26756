package reports

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfLineHeight = 5.5
	pdfFont       = "Helvetica"
)

// GoFPDFRenderer draws the report natively, with no external binary.
type GoFPDFRenderer struct{}

func NewGoFPDFRenderer() *GoFPDFRenderer {
	return &GoFPDFRenderer{}
}

func (GoFPDFRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(doc.Meta.ReportTitle), false)
	pdf.SetAuthor(tr(doc.Meta.Name), false)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(pdfFont, "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageWidth - left - right

	pdf.SetFont(pdfFont, "B", 16)
	pdf.CellFormat(width, 8, tr(doc.Meta.Name), "", 1, "L", false, 0, "")
	pdf.SetFont(pdfFont, "", 9)
	if doc.Meta.Address != "" {
		pdf.MultiCell(width, pdfLineHeight, tr(doc.Meta.Address), "", "L", false)
	}
	subtitle := doc.Meta.ReportTitle + ", generated " + doc.GeneratedAt.Format("2006-01-02 15:04 MST")
	if doc.Meta.PreparedBy != "" {
		subtitle += ", prepared by " + doc.Meta.PreparedBy
	}
	pdf.MultiCell(width, pdfLineHeight, tr(subtitle), "B", "L", false)
	if len(doc.Warnings) > 0 {
		pdf.SetTextColor(169, 68, 66)
		pdf.MultiCell(width, pdfLineHeight, tr("Unavailable sections: "+strings.Join(doc.Warnings, ", ")), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}

	for _, section := range doc.Sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		drawSection(pdf, tr, section, width)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSection(pdf *gofpdf.Fpdf, tr func(string) string, s Section, width float64) {
	pdf.Ln(3)
	pdf.SetFont(pdfFont, "B", 12)
	pdf.SetTextColor(44, 62, 80)
	pdf.CellFormat(width, 7, tr(s.Title), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	if s.Note != "" {
		pdf.SetFont(pdfFont, "I", 8)
		pdf.CellFormat(width, pdfLineHeight, tr(s.Note), "", 1, "L", false, 0, "")
	}
	if s.Empty() || len(s.Columns) == 0 {
		pdf.SetFont(pdfFont, "I", 9)
		pdf.CellFormat(width, pdfLineHeight, "No data.", "", 1, "L", false, 0, "")
		return
	}

	colWidth := width / float64(len(s.Columns))
	header := func() {
		pdf.SetFont(pdfFont, "B", 8)
		pdf.SetFillColor(236, 240, 241)
		for _, col := range s.Columns {
			pdf.CellFormat(colWidth, pdfLineHeight+1, fit(pdf, tr(col), colWidth), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(pdfFont, "", 8)
	}
	header()
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range s.Rows {
		if pdf.GetY()+pdfLineHeight > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		for i := range s.Columns {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			pdf.CellFormat(colWidth, pdfLineHeight, fit(pdf, tr(value), colWidth), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// fit shortens text so it stays inside a cell of the given width. The text is
// already translated to the single-byte core font encoding, so it is cut by byte.
func fit(pdf *gofpdf.Fpdf, text string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(text) <= limit {
		return text
	}
	n := len(text)
	for n > 0 && pdf.GetStringWidth(text[:n]+"...") > limit {
		n--
	}
	return text[:n] + "..."
}
