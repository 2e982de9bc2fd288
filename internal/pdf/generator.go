package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/hunt-contracts/internal/model"
	"github.com/nurpe/hunt-contracts/internal/pricing"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders the stored contract content. The text is printed as
// stored so the PDF matches what the parties signed.
func (g *Generator) Generate(doc model.ContractDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetTitle(fmt.Sprintf("Hunt contract %s", doc.Contract.ID), true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Hunt Contract", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 9)
	meta := []string{
		fmt.Sprintf("Contract: %s", doc.Contract.ID),
		fmt.Sprintf("Hunt: %s", safeValue(doc.Hunt.HuntCode)),
		fmt.Sprintf("Status: %s", statusLabel(doc.Contract.Status)),
	}
	pdf.CellFormat(0, 5, tr(strings.Join(meta, "   ")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	inBill := false
	for _, line := range strings.Split(strings.TrimRight(doc.Contract.Content, "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "BILL":
			inBill = true
			pdf.Ln(2)
			pdf.SetFont(g.fontName, "B", 12)
			pdf.CellFormat(0, 8, "Bill", "B", 1, "L", false, 0, "")
		case inBill && strings.HasPrefix(trimmed, "Total:"):
			pdf.SetFont(g.fontName, "B", 11)
			pdf.CellFormat(0, 7, tr(trimmed), "T", 1, "R", false, 0, "")
		case inBill && trimmed != "":
			drawBillLine(pdf, g.fontName, tr, trimmed)
		default:
			pdf.SetFont(g.fontName, "", 11)
			pdf.MultiCell(0, 5.5, tr(line), "", "L", false)
		}
	}

	pdf.Ln(6)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Signatures", "", 1, "L", false, 0, "")
	signatureBlock(pdf, g.fontName, tr, "Client", doc.Hunt.ClientName, doc.Contract.ClientSignedAt)
	signatureBlock(pdf, g.fontName, tr, "Outfitter", "", doc.Contract.AdminSignedAt)

	if doc.Contract.ExecutedAt != nil {
		pdf.Ln(2)
		pdf.SetFont(g.fontName, "I", 9)
		pdf.CellFormat(0, 5, fmt.Sprintf("Fully executed %s. Contract total %s.",
			formatDateTime(doc.Contract.ExecutedAt),
			pricing.FormatCents(doc.Contract.TotalCents),
		), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawBillLine splits "Label: $amount" into a label cell and a right-aligned
// amount cell.
func drawBillLine(pdf *gofpdf.Fpdf, fontName string, tr func(string) string, line string) {
	pdf.SetFont(fontName, "", 11)
	idx := strings.LastIndex(line, ": ")
	if idx < 0 {
		pdf.MultiCell(0, 6, tr(line), "", "L", false)
		return
	}
	width, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	amountWidth := 40.0
	pdf.CellFormat(width-left-right-amountWidth, 6, tr(line[:idx]), "", 0, "L", false, 0, "")
	pdf.CellFormat(amountWidth, 6, tr(line[idx+2:]), "", 1, "R", false, 0, "")
}

func signatureBlock(pdf *gofpdf.Fpdf, fontName string, tr func(string) string, label, name string, signedAt *time.Time) {
	pdf.SetFont(fontName, "", 11)
	signed := "not signed"
	if signedAt != nil {
		signed = "signed " + formatDateTime(signedAt)
	}
	text := fmt.Sprintf("%s: ______________________", label)
	if strings.TrimSpace(name) != "" {
		text += fmt.Sprintf(" /%s/", name)
	}
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s (%s)", text, signed)), "", 1, "L", false, 0, "")
}

func statusLabel(status model.ContractStatus) string {
	return strings.ReplaceAll(string(status), "_", " ")
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}

func formatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "—"
	}
	return t.UTC().Format("2006-01-02 15:04 MST")
}
