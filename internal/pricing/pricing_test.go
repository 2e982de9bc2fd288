package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/nurpe/hunt-contracts/internal/model"
)

func entry(title string, category model.PricingCategory, kind model.AddOnKind, species, weapons []string, days int, price string) model.PricingEntry {
	return model.PricingEntry{
		ID:           uuid.New(),
		Title:        title,
		Category:     category,
		AddOnKind:    kind,
		Species:      datatypes.NewJSONType(species),
		Weapons:      datatypes.NewJSONType(weapons),
		IncludedDays: days,
		UnitPrice:    decimal.RequireFromString(price),
	}
}

func TestMatchBasePrices_FiltersBySpeciesAndWeapon(t *testing.T) {
	elkRifle := entry("Elk Rifle 5-day", model.PricingCategoryBase, model.AddOnKindNone, []string{"Elk"}, []string{"Rifle"}, 5, "5000")
	deerBow := entry("Deer Archery", model.PricingCategoryBase, model.AddOnKindNone, []string{"Deer"}, []string{"Bow"}, 5, "3000")
	addOn := entry("Extra Day", model.PricingCategoryAddOn, model.AddOnKindExtraDay, nil, nil, 0, "100")

	matches := MatchBasePrices("elk", "RIFLE", 5, []model.PricingEntry{deerBow, addOn, elkRifle})

	require.Len(t, matches, 1)
	assert.Equal(t, elkRifle.ID, matches[0].ID)
}

func TestMatchBasePrices_EmptyListsAreWildcards(t *testing.T) {
	wildcard := entry("Any species", model.PricingCategoryBase, model.AddOnKindNone, nil, nil, 7, "4000")

	matches := MatchBasePrices("Moose", "Muzzleloader", 3, []model.PricingEntry{wildcard})

	require.Len(t, matches, 1)
	assert.Equal(t, wildcard.ID, matches[0].ID)
}

func TestMatchBasePrices_ExactDurationFirstThenCatalogOrder(t *testing.T) {
	first := entry("Elk 7-day", model.PricingCategoryBase, model.AddOnKindNone, []string{"Elk"}, nil, 7, "6500")
	second := entry("Elk 5-day", model.PricingCategoryBase, model.AddOnKindNone, []string{"Elk"}, nil, 5, "5000")
	third := entry("Elk 5-day premium", model.PricingCategoryBase, model.AddOnKindNone, nil, nil, 5, "5500")

	matches := MatchBasePrices("Elk", "Rifle", 5, []model.PricingEntry{first, second, third})

	require.Len(t, matches, 3)
	assert.Equal(t, []uuid.UUID{second.ID, third.ID, first.ID}, []uuid.UUID{matches[0].ID, matches[1].ID, matches[2].ID})
}

func TestMatchBasePrices_NoMatch(t *testing.T) {
	deer := entry("Deer", model.PricingCategoryBase, model.AddOnKindNone, []string{"Deer"}, nil, 5, "3000")

	assert.Empty(t, MatchBasePrices("Elk", "Rifle", 5, []model.PricingEntry{deer}))
	assert.Empty(t, MatchBasePrices("", "Rifle", 5, []model.PricingEntry{deer}))
}

func TestBasePrice_ExplicitSelectionWins(t *testing.T) {
	matched := entry("Elk 5-day", model.PricingCategoryBase, model.AddOnKindNone, []string{"Elk"}, nil, 5, "5000")
	chosen := entry("Deer plan", model.PricingCategoryBase, model.AddOnKindNone, []string{"Deer"}, nil, 3, "2500")
	catalog := []model.PricingEntry{matched, chosen}

	got, ok := BasePrice(&chosen.ID, "Elk", "Rifle", 5, catalog)
	require.True(t, ok)
	assert.Equal(t, chosen.ID, got.ID)

	missing := uuid.New()
	got, ok = BasePrice(&missing, "Elk", "Rifle", 5, catalog)
	require.True(t, ok)
	assert.Equal(t, matched.ID, got.ID)
}

func TestClassifyByTitle(t *testing.T) {
	cases := map[string]model.AddOnKind{
		"Extra Day":              model.AddOnKindExtraDay,
		"Additional day in camp": model.AddOnKindExtraDay,
		"Extra day - non-hunter": model.AddOnKindNonHunter,
		"Non Hunter Companion":   model.AddOnKindNonHunter,
		"Observer":               model.AddOnKindObserver,
		"Trophy caping":          model.AddOnKindNone,
	}
	for title, want := range cases {
		e := entry(title, model.PricingCategoryAddOn, model.AddOnKindNone, nil, nil, 0, "10")
		assert.Equal(t, want, ClassifyByTitle(e), title)
	}

	base := entry("Extra Day", model.PricingCategoryBase, model.AddOnKindNone, nil, nil, 0, "10")
	assert.Equal(t, model.AddOnKindNone, ClassifyByTitle(base))
}

func TestResolveRate_Priority(t *testing.T) {
	keyword := entry("Extra day", model.PricingCategoryAddOn, model.AddOnKindNone, nil, nil, 0, "120")
	tagged := entry("Camp day", model.PricingCategoryAddOn, model.AddOnKindExtraDay, nil, nil, 0, "150")
	fallback := decimal.NewFromInt(100)

	rate, source := ResolveRate(model.AddOnKindExtraDay, []model.PricingEntry{keyword, tagged}, fallback)
	assert.True(t, rate.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, RateSourceTagged, source)

	rate, source = ResolveRate(model.AddOnKindExtraDay, []model.PricingEntry{keyword}, fallback)
	assert.True(t, rate.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, RateSourceKeyword, source)

	rate, source = ResolveRate(model.AddOnKindExtraDay, nil, fallback)
	assert.True(t, rate.Equal(fallback))
	assert.Equal(t, RateSourceFallback, source)
}

func TestResolveRate_IgnoresTaggedBaseEntries(t *testing.T) {
	mistagged := entry("Elk Rifle 5-Day", model.PricingCategoryBase, model.AddOnKindExtraDay, nil, nil, 5, "5000")
	fallback := decimal.NewFromInt(100)

	rate, source := ResolveRate(model.AddOnKindExtraDay, []model.PricingEntry{mistagged}, fallback)
	assert.True(t, rate.Equal(fallback))
	assert.Equal(t, RateSourceFallback, source)

	tagged := entry("Camp day", model.PricingCategoryAddOn, model.AddOnKindExtraDay, nil, nil, 0, "150")
	rate, source = ResolveRate(model.AddOnKindExtraDay, []model.PricingEntry{mistagged, tagged}, fallback)
	assert.True(t, rate.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, RateSourceTagged, source)
}

func TestAddOnTotal_DefaultsAndZeroQuantities(t *testing.T) {
	total := AddOnTotal(model.AddOns{ExtraDays: 2, ExtraNonHunters: 1, ExtraObservers: 3}, nil, DefaultRates())
	assert.Equal(t, "425", total.String())

	assert.True(t, AddOnTotal(model.AddOns{}, nil, DefaultRates()).IsZero())
}

func TestAddOnTotal_Monotonic(t *testing.T) {
	catalog := []model.PricingEntry{
		entry("Extra day", model.PricingCategoryAddOn, model.AddOnKindExtraDay, nil, nil, 0, "99.99"),
		entry("Observer", model.PricingCategoryAddOn, model.AddOnKindObserver, nil, nil, 0, "0"),
	}
	base := model.AddOns{ExtraDays: 1, ExtraNonHunters: 1, ExtraObservers: 1}
	prev := AddOnTotal(base, catalog, DefaultRates())

	bumps := []func(*model.AddOns){
		func(a *model.AddOns) { a.ExtraDays++ },
		func(a *model.AddOns) { a.ExtraNonHunters++ },
		func(a *model.AddOns) { a.ExtraObservers++ },
	}
	for _, bump := range bumps {
		next, last := base, prev
		for i := 0; i < 5; i++ {
			bump(&next)
			got := AddOnTotal(next, catalog, DefaultRates())
			assert.True(t, got.GreaterThanOrEqual(last), "got %s after %s", got, last)
			last = got
		}
	}
}

func TestFeePolicy_FloorAndCeiling(t *testing.T) {
	policy := FeePolicy{Percent: decimal.RequireFromString("3.5"), MinFeeCents: 50}

	assert.Equal(t, int64(18200), policy.Fee(520000))
	assert.Equal(t, int64(50), policy.Fee(1))
	assert.Equal(t, int64(0), policy.Fee(0))
	assert.Equal(t, int64(36), FeePolicy{Percent: decimal.RequireFromString("3.5"), MinFeeCents: 0}.Fee(1001))

	for _, subtotal := range []int64{1, 7, 99, 1000, 1429, 123456} {
		assert.GreaterOrEqual(t, policy.Fee(subtotal), policy.MinFeeCents)
	}

	breakdown := policy.Breakdown(520000)
	assert.Equal(t, model.PaymentBreakdown{SubtotalCents: 520000, FeeCents: 18200, TotalCents: 538200}, breakdown)
}

func TestMoneyFormatting(t *testing.T) {
	assert.Equal(t, "$5,200.00", FormatUSD(decimal.NewFromInt(5200)))
	assert.Equal(t, "$0.00", FormatCents(0))
	assert.Equal(t, "$1,234,567.89", FormatCents(123456789))
	assert.Equal(t, int64(1001), ToCents(decimal.RequireFromString("10.005")))
	assert.Equal(t, int64(1000), ToCents(decimal.RequireFromString("10.004")))
}
