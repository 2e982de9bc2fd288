package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/nurpe/hunt-contracts/internal/model"
)

type dateSource string

const (
	dateSourceSnapshot dateSource = "snapshot"
	dateSourceHunt     dateSource = "hunt"
	dateSourceContent  dateSource = "content"
)

// contractDatePattern matches the "Hunt Dates: <start> to <end>" line of
// rendered contracts, including older contracts written with US dates.
var contractDatePattern = regexp.MustCompile(`(?i)hunt\s+dates?\s*:\s*(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4})\s*(?:to|through|-|–)\s*(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4})`)

var contractDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// resolveHuntDates picks the hunt's date range from the completion snapshot,
// then the hunt record, then, for legacy contracts only, the rendered text.
func resolveHuntDates(contract *model.HuntContract, hunt *model.Hunt) (time.Time, time.Time, dateSource, bool) {
	if contract != nil {
		snap := contract.Completion.Data()
		if snap.StartDate != nil && snap.EndDate != nil {
			return dateOnly(*snap.StartDate), dateOnly(*snap.EndDate), dateSourceSnapshot, true
		}
	}
	if hunt != nil && hunt.StartDate != nil && hunt.EndDate != nil {
		return dateOnly(*hunt.StartDate), dateOnly(*hunt.EndDate), dateSourceHunt, true
	}
	if contract != nil {
		if start, end, ok := parseContractDates(contract.Content); ok {
			return start, end, dateSourceContent, true
		}
	}
	return time.Time{}, time.Time{}, "", false
}

func parseContractDates(content string) (time.Time, time.Time, bool) {
	match := contractDatePattern.FindStringSubmatch(content)
	if match == nil {
		return time.Time{}, time.Time{}, false
	}
	start, err := parseDate(match[1])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := parseDate(match[2])
	if err != nil || end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range contractDateLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// durationDays counts both the first and last day of the hunt.
func durationDays(start, end *time.Time) int {
	if start == nil || end == nil {
		return 0
	}
	days := int(dateOnly(*end).Sub(dateOnly(*start)).Hours()/24) + 1
	if days < 0 {
		return 0
	}
	return days
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
