package pricing

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/hunt-contracts/internal/model"
)

// MatchBasePrices returns the base packages that apply to a hunt, best first.
//
// An entry applies when its species list is empty or contains species, and
// likewise for weapon (case-insensitive). Entries whose included days equal
// the hunt duration rank ahead of the rest; within a rank the catalog order
// is kept.
func MatchBasePrices(species, weapon string, durationDays int, catalog []model.PricingEntry) []model.PricingEntry {
	matches := make([]model.PricingEntry, 0, len(catalog))
	for _, entry := range catalog {
		if !entry.IsBase() {
			continue
		}
		if !listAllows(entry.Species.Data(), species) || !listAllows(entry.Weapons.Data(), weapon) {
			continue
		}
		matches = append(matches, entry)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return durationRank(matches[i], durationDays) < durationRank(matches[j], durationDays)
	})
	return matches
}

// BasePrice resolves the single base package billed for a hunt. An explicit
// selection wins when it names a base entry of the catalog; otherwise the
// best match is used.
func BasePrice(selectedID *uuid.UUID, species, weapon string, durationDays int, catalog []model.PricingEntry) (*model.PricingEntry, bool) {
	if selectedID != nil {
		if entry, ok := FindEntry(*selectedID, catalog); ok && entry.IsBase() {
			return entry, true
		}
	}
	matches := MatchBasePrices(species, weapon, durationDays, catalog)
	if len(matches) == 0 {
		return nil, false
	}
	return &matches[0], true
}

func FindEntry(id uuid.UUID, catalog []model.PricingEntry) (*model.PricingEntry, bool) {
	for i := range catalog {
		if catalog[i].ID == id {
			return &catalog[i], true
		}
	}
	return nil, false
}

func durationRank(entry model.PricingEntry, durationDays int) int {
	if entry.IncludedDays == durationDays {
		return 0
	}
	return 1
}

func listAllows(list []string, value string) bool {
	if len(list) == 0 {
		return true
	}
	value = strings.TrimSpace(value)
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), value) {
			return true
		}
	}
	return false
}
