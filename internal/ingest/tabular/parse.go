package tabular

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	amountCleanPattern = regexp.MustCompile(`[^\d.\-]+`)
	digitPattern       = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	monthYearPattern   = regexp.MustCompile(`[,\s]+`)
)

// Date layouts cover the common fund-report formats, ISO and US first.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

func normalizeCell(cell string) string {
	return strings.TrimSpace(cell)
}

func normalizeHeader(cell string) string {
	return strings.ToLower(normalizeCell(cell))
}

// cleanTable normalizes cells and drops rows with no content at all.
func cleanTable(rows [][]string) [][]string {
	var cleaned [][]string
	for _, row := range rows {
		normalized := make([]string, len(row))
		hasContent := false
		for i, cell := range row {
			normalized[i] = normalizeCell(cell)
			if normalized[i] != "" {
				hasContent = true
			}
		}
		if hasContent {
			cleaned = append(cleaned, normalized)
		}
	}
	return cleaned
}

// findColumn returns the index of the first header cell containing any
// keyword, or -1.
func findColumn(header []string, keywords []string) int {
	for idx, column := range header {
		for _, kw := range keywords {
			if strings.Contains(column, kw) {
				return idx
			}
		}
	}
	return -1
}

func safeGet(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return row[index]
}

func shouldSkipRow(row []string) bool {
	var normalized []string
	for _, cell := range row {
		if v := strings.ToLower(normalizeCell(cell)); v != "" {
			normalized = append(normalized, v)
		}
	}
	if len(normalized) == 0 {
		return true
	}
	if _, ok := skipFirstCellValues[normalized[0]]; ok {
		return true
	}
	for _, v := range normalized {
		if _, ok := skipRowValues[v]; ok {
			return true
		}
	}
	return false
}

// parseDate tries each supported layout, then the loose "Jan 2006" form.
func parseDate(value string) (time.Time, bool) {
	text := strings.TrimSpace(value)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	if parts := monthYearPattern.Split(text, -1); len(parts) == 2 {
		if t, err := time.Parse("Jan 2 2006", parts[0]+" 1 "+parts[1]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseAmount strips currency symbols and thousands separators. Parentheses
// or a leading minus negate. N/A tokens fail the cell.
func parseAmount(value string) (decimal.Decimal, bool) {
	text := strings.TrimSpace(value)
	lower := strings.ToLower(text)
	if text == "" || lower == "n/a" || lower == "na" || text == "-" {
		return decimal.Decimal{}, false
	}

	negative := false
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		negative = true
		text = text[1 : len(text)-1]
	}
	if strings.HasPrefix(text, "-") {
		negative = true
		text = text[1:]
	}

	cleaned := amountCleanPattern.ReplaceAllString(text, "")
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		digits := digitPattern.FindString(cleaned)
		if digits == "" {
			return decimal.Decimal{}, false
		}
		amount, err = decimal.NewFromString(digits)
		if err != nil {
			return decimal.Decimal{}, false
		}
	}

	if negative {
		amount = amount.Neg()
	}
	return amount, true
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

func isContributionAdjustment(adjType, category string) bool {
	candidates := strings.ToLower(strings.TrimSpace(adjType + " " + category))
	for _, kw := range contributionAdjustmentKeywords {
		if strings.Contains(candidates, kw) {
			return true
		}
	}
	return false
}
