package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/hunt-contracts/internal/model"
)

func TestGenerate_DriftReport(t *testing.T) {
	expected := model.PaymentBreakdown{SubtotalCents: 520000, FeeCents: 26000, TotalCents: 546000}
	report := model.DriftReport{
		OutfitterID: uuid.New(),
		GeneratedAt: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
		Rows: []model.DriftRow{
			{
				PaymentItemID:   uuid.New(),
				HuntCode:        "E-061-O1-R",
				ClientName:      "Jane Hunter",
				Stored:          model.PaymentBreakdown{SubtotalCents: 500000, FeeCents: 25000, TotalCents: 525000},
				Expected:        &expected,
				AmountPaidCents: 100000,
				Status:          model.PaymentStatusPartiallyPaid,
			},
			{
				PaymentItemID: uuid.New(),
				Stored:        model.PaymentBreakdown{SubtotalCents: 1000, FeeCents: 50, TotalCents: 1050},
				Status:        model.PaymentStatusPending,
				Note:          "no base price resolves",
			},
		},
	}

	out, err := NewGenerator().Generate(report)
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	assert.Equal(t, []string{summarySheet, itemsSheet}, file.GetSheetList())

	drifted, err := file.GetCellValue(summarySheet, "B4")
	require.NoError(t, err)
	assert.Equal(t, "1", drifted)

	client, err := file.GetCellValue(itemsSheet, "C2")
	require.NoError(t, err)
	assert.Equal(t, "Jane Hunter", client)

	note, err := file.GetCellValue(itemsSheet, "L3")
	require.NoError(t, err)
	assert.Equal(t, "no base price resolves", note)

	missing, err := file.GetCellValue(itemsSheet, "I3")
	require.NoError(t, err)
	assert.Empty(t, missing)
}
