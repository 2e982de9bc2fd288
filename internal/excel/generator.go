package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/hunt-contracts/internal/model"
	"github.com/nurpe/hunt-contracts/internal/pricing"
)

const (
	summarySheet = "Summary"
	itemsSheet   = "Payment items"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

type styles struct {
	header  int
	money   int
	drifted int
}

// Generate writes the drift report as a workbook with a summary sheet and
// one row per guide-fee payment item.
func (g *Generator) Generate(report model.DriftReport) ([]byte, error) {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := file.NewSheet(itemsSheet); err != nil {
		return nil, err
	}

	st, err := newStyles(file)
	if err != nil {
		return nil, err
	}
	g.writeSummary(file, report, st)
	g.writeItems(file, report, st)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newStyles(file *excelize.File) (styles, error) {
	var st styles
	var err error
	if st.header, err = file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return st, err
	}
	if st.money, err = file.NewStyle(&excelize.Style{NumFmt: 4}); err != nil {
		return st, err
	}
	st.drifted, err = file.NewStyle(&excelize.Style{
		NumFmt: 4,
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#F8D7DA"}, Pattern: 1},
	})
	return st, err
}

func (g *Generator) writeSummary(file *excelize.File, report model.DriftReport, st styles) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}

	var drifted int
	var stored, expected int64
	for _, row := range report.Rows {
		if row.Drifted() {
			drifted++
		}
		stored += row.Stored.TotalCents
		if row.Expected != nil {
			expected += row.Expected.TotalCents
		}
	}

	set("A1", "Outfitter")
	set("B1", report.OutfitterID.String())
	set("A2", "Generated at")
	set("B2", formatDateTime(report.GeneratedAt))
	set("A3", "Payment items")
	set("B3", len(report.Rows))
	set("A4", "Drifted items")
	set("B4", drifted)
	set("A5", "Stored total, USD")
	set("B5", dollars(stored))
	set("A6", "Expected total, USD")
	set("B6", dollars(expected))

	_ = file.SetCellStyle(summarySheet, "A1", "A6", st.header)
	_ = file.SetCellStyle(summarySheet, "B5", "B6", st.money)
	_ = file.SetColWidth(summarySheet, "A", "A", 24)
	_ = file.SetColWidth(summarySheet, "B", "B", 40)
}

func (g *Generator) writeItems(file *excelize.File, report model.DriftReport, st styles) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(itemsSheet, cell, value)
	}

	headers := []string{
		"Payment item",
		"Hunt code",
		"Client",
		"Stored subtotal",
		"Stored fee",
		"Stored total",
		"Expected subtotal",
		"Expected fee",
		"Expected total",
		"Amount paid",
		"Status",
		"Note",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}
	_ = file.SetCellStyle(itemsSheet, "A1", "L1", st.header)

	for i, item := range report.Rows {
		row := i + 2
		set(fmt.Sprintf("A%d", row), item.PaymentItemID.String())
		set(fmt.Sprintf("B%d", row), item.HuntCode)
		set(fmt.Sprintf("C%d", row), item.ClientName)
		set(fmt.Sprintf("D%d", row), dollars(item.Stored.SubtotalCents))
		set(fmt.Sprintf("E%d", row), dollars(item.Stored.FeeCents))
		set(fmt.Sprintf("F%d", row), dollars(item.Stored.TotalCents))
		if item.Expected != nil {
			set(fmt.Sprintf("G%d", row), dollars(item.Expected.SubtotalCents))
			set(fmt.Sprintf("H%d", row), dollars(item.Expected.FeeCents))
			set(fmt.Sprintf("I%d", row), dollars(item.Expected.TotalCents))
		}
		set(fmt.Sprintf("J%d", row), dollars(item.AmountPaidCents))
		set(fmt.Sprintf("K%d", row), string(item.Status))
		set(fmt.Sprintf("L%d", row), item.Note)

		style := st.money
		if item.Drifted() {
			style = st.drifted
		}
		_ = file.SetCellStyle(itemsSheet, fmt.Sprintf("D%d", row), fmt.Sprintf("J%d", row), style)
	}

	_ = file.SetColWidth(itemsSheet, "A", "A", 38)
	_ = file.SetColWidth(itemsSheet, "B", "C", 22)
	_ = file.SetColWidth(itemsSheet, "D", "J", 16)
	_ = file.SetColWidth(itemsSheet, "K", "K", 16)
	_ = file.SetColWidth(itemsSheet, "L", "L", 32)
}

func dollars(cents int64) float64 {
	return pricing.FromCents(cents).InexactFloat64()
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
