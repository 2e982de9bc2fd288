package billing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/hunt-contracts/internal/model"
	"github.com/nurpe/hunt-contracts/internal/pricing"
)

type LineKind string

const (
	LineKindBase  LineKind = "base"
	LineKindAddOn LineKind = "add_on"
)

type Line struct {
	Kind      LineKind
	Label     string
	Amount    decimal.Decimal
	PricingID *uuid.UUID
}

func (l Line) String() string {
	return fmt.Sprintf("%s: %s", l.Label, pricing.FormatUSD(l.Amount))
}

type Bill struct {
	Lines  []Line
	Total  decimal.Decimal
	Pinned model.PinnedPrices
}

// HasBase reports whether a base package was resolved.
func (b Bill) HasBase() bool {
	return b.Pinned.BasePrice != nil
}

func (b Bill) TotalCents() int64 {
	return pricing.ToCents(b.Total)
}

// Input carries everything a bill depends on. When Pinned is set the
// catalog is ignored and the pinned prices are replayed.
type Input struct {
	SelectedPricingID *uuid.UUID
	Species           string
	Weapon            string
	DurationDays      int
	AddOns            model.AddOns
	Catalog           []model.PricingEntry
	Defaults          pricing.Rates
	Pinned            *model.PinnedPrices
}

// Compose builds the itemized bill. Every line amount is rounded to the
// cent before summing, so the total always equals the sum of printed lines.
func Compose(in Input) Bill {
	pinned := resolvePrices(in)

	bill := Bill{Total: decimal.Zero, Pinned: pinned}
	if pinned.BasePrice != nil {
		line := Line{
			Kind:      LineKindBase,
			Label:     pinned.BaseTitle,
			Amount:    pricing.RoundCents(*pinned.BasePrice),
			PricingID: pinned.BasePricingID,
		}
		bill.Lines = append(bill.Lines, line)
		bill.Total = bill.Total.Add(line.Amount)
	}

	rates := pricing.Rates{
		ExtraDay:  pinned.ExtraDayRate,
		NonHunter: pinned.NonHunterRate,
		Observer:  pinned.ObserverRate,
	}
	for _, addOn := range pricing.AddOnLines(in.AddOns, rates) {
		line := Line{
			Kind:   LineKindAddOn,
			Label:  addOnLabel(addOn),
			Amount: pricing.RoundCents(addOn.Amount),
		}
		bill.Lines = append(bill.Lines, line)
		bill.Total = bill.Total.Add(line.Amount)
	}
	return bill
}

func resolvePrices(in Input) model.PinnedPrices {
	if in.Pinned != nil {
		return *in.Pinned
	}
	rates := pricing.ResolveRates(in.Catalog, in.Defaults)
	pinned := model.PinnedPrices{
		ExtraDayRate:  rates.ExtraDay,
		NonHunterRate: rates.NonHunter,
		ObserverRate:  rates.Observer,
	}
	if base, ok := pricing.BasePrice(in.SelectedPricingID, in.Species, in.Weapon, in.DurationDays, in.Catalog); ok {
		id := base.ID
		price := base.UnitPrice
		pinned.BasePricingID = &id
		pinned.BaseTitle = base.Title
		pinned.BasePrice = &price
	}
	return pinned
}

func addOnLabel(line pricing.AddOnLine) string {
	rate := pricing.FormatUSD(line.Rate)
	switch line.Kind {
	case model.AddOnKindExtraDay:
		return fmt.Sprintf("Extra days (%d × %s/day)", line.Quantity, rate)
	case model.AddOnKindNonHunter:
		return fmt.Sprintf("Extra non-hunters (%d × %s/person)", line.Quantity, rate)
	case model.AddOnKindObserver:
		return fmt.Sprintf("Extra observers (%d × %s/person)", line.Quantity, rate)
	}
	return fmt.Sprintf("%s (%d × %s)", line.Kind, line.Quantity, rate)
}
