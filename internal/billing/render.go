package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nurpe/hunt-contracts/internal/pricing"
)

const DateLayout = "2006-01-02"

// Fields are the hunt, client and outfitter values substituted into a
// contract template.
type Fields struct {
	ClientName    string
	OutfitterName string
	Species       string
	Weapon        string
	Unit          string
	HuntCode      string
	StartDate     *time.Time
	EndDate       *time.Time
	DurationDays  int
}

// RenderContract fills template placeholders ({{client_name}} and friends)
// and appends the BILL block. An empty template uses the plain layout.
func RenderContract(template string, fields Fields, bill Bill) string {
	var body string
	if strings.TrimSpace(template) == "" {
		body = fallbackLayout(fields)
	} else {
		body = placeholderReplacer(fields, bill).Replace(template)
	}
	return strings.TrimRight(body, "\n") + "\n\n" + BillBlock(bill)
}

// BillBlock renders the itemized bill. A bill without lines still renders a
// zero total.
func BillBlock(bill Bill) string {
	var sb strings.Builder
	sb.WriteString("BILL\n")
	for _, line := range bill.Lines {
		sb.WriteString(line.String())
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("Total: %s\n", pricing.FormatUSD(bill.Total)))
	return sb.String()
}

func fallbackLayout(f Fields) string {
	lines := []string{
		"HUNT CONTRACT",
		"",
		fmt.Sprintf("Outfitter: %s", safeValue(f.OutfitterName)),
		fmt.Sprintf("Client: %s", safeValue(f.ClientName)),
		fmt.Sprintf("Species: %s", safeValue(f.Species)),
		fmt.Sprintf("Weapon: %s", safeValue(f.Weapon)),
		fmt.Sprintf("Unit: %s", safeValue(f.Unit)),
		fmt.Sprintf("Hunt Code: %s", safeValue(f.HuntCode)),
	}
	if f.StartDate != nil && f.EndDate != nil {
		lines = append(lines, fmt.Sprintf("Hunt Dates: %s to %s", formatDate(f.StartDate), formatDate(f.EndDate)))
	} else {
		lines = append(lines, "Hunt Dates: to be scheduled")
	}
	lines = append(lines, fmt.Sprintf("Duration: %d days", f.DurationDays))
	return strings.Join(lines, "\n")
}

func placeholderReplacer(f Fields, bill Bill) *strings.Replacer {
	values := map[string]string{
		"client_name":    f.ClientName,
		"outfitter_name": f.OutfitterName,
		"species":        f.Species,
		"weapon":         f.Weapon,
		"unit":           f.Unit,
		"hunt_code":      f.HuntCode,
		"start_date":     formatDate(f.StartDate),
		"end_date":       formatDate(f.EndDate),
		"duration_days":  strconv.Itoa(f.DurationDays),
		"total":          pricing.FormatUSD(bill.Total),
	}
	pairs := make([]string, 0, len(values)*4)
	for key, value := range values {
		pairs = append(pairs, "{{"+key+"}}", value, "{{ "+key+" }}", value)
	}
	return strings.NewReplacer(pairs...)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}
