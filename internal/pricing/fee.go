package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/nurpe/hunt-contracts/internal/model"
)

// FeePolicy computes the platform fee charged on top of a guide-fee subtotal.
type FeePolicy struct {
	Percent     decimal.Decimal
	MinFeeCents int64
}

// Fee returns ceil(subtotal * percent / 100), never less than MinFeeCents
// for a positive subtotal.
func (p FeePolicy) Fee(subtotalCents int64) int64 {
	if subtotalCents <= 0 {
		return 0
	}
	fee := decimal.NewFromInt(subtotalCents).Mul(p.Percent).Shift(-2).Ceil().IntPart()
	if fee < p.MinFeeCents {
		fee = p.MinFeeCents
	}
	return fee
}

func (p FeePolicy) Breakdown(subtotalCents int64) model.PaymentBreakdown {
	fee := p.Fee(subtotalCents)
	return model.PaymentBreakdown{
		SubtotalCents: subtotalCents,
		FeeCents:      fee,
		TotalCents:    subtotalCents + fee,
	}
}
