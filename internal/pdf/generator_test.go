package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/hunt-contracts/internal/model"
)

func TestGenerate_ExecutedContract(t *testing.T) {
	signed := time.Date(2025, 8, 1, 15, 30, 0, 0, time.UTC)
	doc := model.ContractDocument{
		Contract: model.HuntContract{
			ID:             uuid.New(),
			Status:         model.ContractStatusFullyExecuted,
			Content:        "HUNT CONTRACT\n\nClient: Jane Hunter\nHunt Dates: 2025-10-01 to 2025-10-05\n\nBILL\nElk Rifle 5-Day: $5,000.00\nExtra days (2 × $100.00/day): $200.00\nTotal: $5,200.00\n",
			TotalCents:     520000,
			ClientSignedAt: &signed,
			AdminSignedAt:  &signed,
			ExecutedAt:     &signed,
		},
		Hunt: model.Hunt{HuntCode: "E-061-O1-R", ClientName: "Jane Hunter"},
	}

	out, err := NewGenerator().Generate(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 500)
}

func TestGenerate_UnsignedWithoutBill(t *testing.T) {
	doc := model.ContractDocument{
		Contract: model.HuntContract{
			ID:      uuid.New(),
			Status:  model.ContractStatusPendingClientCompletion,
			Content: "Custom template body with no bill yet",
		},
	}

	out, err := NewGenerator().Generate(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
