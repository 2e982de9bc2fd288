package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nurpe/hunt-contracts/internal/model"
)

// Rates holds the per-unit price of each add-on kind.
type Rates struct {
	ExtraDay  decimal.Decimal
	NonHunter decimal.Decimal
	Observer  decimal.Decimal
}

// DefaultRates are used for a kind the catalog does not price.
func DefaultRates() Rates {
	return Rates{
		ExtraDay:  decimal.NewFromInt(100),
		NonHunter: decimal.NewFromInt(75),
		Observer:  decimal.NewFromInt(50),
	}
}

func (r Rates) For(kind model.AddOnKind) decimal.Decimal {
	switch kind {
	case model.AddOnKindExtraDay:
		return r.ExtraDay
	case model.AddOnKindNonHunter:
		return r.NonHunter
	case model.AddOnKindObserver:
		return r.Observer
	}
	return decimal.Zero
}

type RateSource string

const (
	RateSourceTagged   RateSource = "tagged"
	RateSourceKeyword  RateSource = "keyword"
	RateSourceFallback RateSource = "default"
)

var addOnKinds = []model.AddOnKind{
	model.AddOnKindExtraDay,
	model.AddOnKindNonHunter,
	model.AddOnKindObserver,
}

var nonHunterKeywords = []string{"non-hunter", "non hunter", "nonhunter", "non-hunting", "companion"}

// ClassifyByTitle guesses the add-on kind of an untagged add-on entry from
// its title. Entries outside the add-on category are never classified.
func ClassifyByTitle(entry model.PricingEntry) model.AddOnKind {
	if entry.Category != model.PricingCategoryAddOn {
		return model.AddOnKindNone
	}
	title := strings.ToLower(entry.Title)
	switch {
	case containsAny(title, nonHunterKeywords):
		return model.AddOnKindNonHunter
	case strings.Contains(title, "observer"):
		return model.AddOnKindObserver
	case containsAny(title, []string{"extra day", "additional day"}):
		return model.AddOnKindExtraDay
	}
	return model.AddOnKindNone
}

// ResolveRate finds the unit rate for kind: an entry explicitly tagged with
// the kind first, then an add-on whose title matches the kind, then fallback.
func ResolveRate(kind model.AddOnKind, catalog []model.PricingEntry, fallback decimal.Decimal) (decimal.Decimal, RateSource) {
	for _, entry := range catalog {
		if entry.Category == model.PricingCategoryAddOn && entry.AddOnKind == kind {
			return entry.UnitPrice, RateSourceTagged
		}
	}
	for _, entry := range catalog {
		if entry.AddOnKind != "" && entry.AddOnKind != model.AddOnKindNone {
			continue
		}
		if ClassifyByTitle(entry) == kind {
			return entry.UnitPrice, RateSourceKeyword
		}
	}
	return fallback, RateSourceFallback
}

func ResolveRates(catalog []model.PricingEntry, defaults Rates) Rates {
	extraDay, _ := ResolveRate(model.AddOnKindExtraDay, catalog, defaults.ExtraDay)
	nonHunter, _ := ResolveRate(model.AddOnKindNonHunter, catalog, defaults.NonHunter)
	observer, _ := ResolveRate(model.AddOnKindObserver, catalog, defaults.Observer)
	return Rates{ExtraDay: extraDay, NonHunter: nonHunter, Observer: observer}
}

// AddOnLine is one non-zero add-on charge.
type AddOnLine struct {
	Kind     model.AddOnKind
	Quantity int
	Rate     decimal.Decimal
	Amount   decimal.Decimal
}

// AddOnLines prices each add-on kind with a positive quantity.
func AddOnLines(addOns model.AddOns, rates Rates) []AddOnLine {
	lines := make([]AddOnLine, 0, len(addOnKinds))
	for _, kind := range addOnKinds {
		qty := quantityFor(addOns, kind)
		if qty <= 0 {
			continue
		}
		rate := RoundCents(rates.For(kind))
		lines = append(lines, AddOnLine{
			Kind:     kind,
			Quantity: qty,
			Rate:     rate,
			Amount:   rate.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	return lines
}

// AddOnTotal is the supplemental amount for the add-on quantities.
func AddOnTotal(addOns model.AddOns, catalog []model.PricingEntry, defaults Rates) decimal.Decimal {
	total := decimal.Zero
	for _, line := range AddOnLines(addOns, ResolveRates(catalog, defaults)) {
		total = total.Add(line.Amount)
	}
	return total
}

func quantityFor(addOns model.AddOns, kind model.AddOnKind) int {
	switch kind {
	case model.AddOnKindExtraDay:
		return addOns.ExtraDays
	case model.AddOnKindNonHunter:
		return addOns.ExtraNonHunters
	case model.AddOnKindObserver:
		return addOns.ExtraObservers
	}
	return 0
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
