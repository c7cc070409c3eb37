// Package fundmeta pulls fund identity out of document front-matter text.
// Matching is pattern-based and deliberately exact: there is no fuzzy fund
// name matching anywhere in the system.
package fundmeta

import (
	"regexp"
	"strings"
	"time"
)

// Info is the metadata recoverable from a report's front matter. Zero values
// mean the field was not found.
type Info struct {
	FundName    string
	GPName      string
	VintageYear int
	FundType    string
}

// Patterns are tried in order per field; the first match wins.
var (
	fundNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Fund\s+Name\s*[:\-\s]+([^\n\r]+)`),
		regexp.MustCompile(`(?i)Name\s+of\s+Fund\s*[:\-\s]+([^\n\r]+)`),
		regexp.MustCompile(`(?i)Fund[:\-]\s*([^\n\r]+)`),
		regexp.MustCompile(`([^\n\r]+?\s+Fund(?:\s+[IVXL]+)?)\s*[\n\r]`),
	}
	gpNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)General\s+Partner[:\-\s]+([^\n\r]+)`),
		regexp.MustCompile(`(?i)GP\s+Name[:\-\s]+([^\n\r]+)`),
		regexp.MustCompile(`(?i)GP[:\-]\s*([^\n\r]+)`),
		regexp.MustCompile(`(?i)Managed\s+by[:\-\s]+([^\n\r]+)`),
		regexp.MustCompile(`(?i)Investment\s+Manager[:\-\s]+([^\n\r]+)`),
	}
	vintagePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Vintage\s+Year[:\-\s]+(\d{4})`),
		regexp.MustCompile(`(?i)Vintage[:\-\s]+(\d{4})`),
		regexp.MustCompile(`(?i)Inception[:\-\s]+(\d{4})`),
	}
	fundTypePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Fund\s+Type[:\-\s]+([^\n\r]+)`),
		regexp.MustCompile(`(?i)Strategy[:\-\s]+([^\n\r]+)`),
	}
)

const maxFieldLength = 200

// Extract scans text for front-matter fields. Multiple spaces are collapsed
// within lines but line breaks are preserved so patterns cannot match across
// unrelated sections.
func Extract(text string) Info {
	clean := regexp.MustCompile(` +`).ReplaceAllString(text, " ")

	info := Info{
		FundName: firstMatch(fundNamePatterns, clean),
		GPName:   firstMatch(gpNamePatterns, clean),
		FundType: firstMatch(fundTypePatterns, clean),
	}
	if raw := firstMatch(vintagePatterns, clean); raw != "" {
		if year, ok := parseVintage(raw); ok {
			info.VintageYear = year
		}
	}
	return info
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		value := cleanValue(m[1])
		if value != "" {
			return value
		}
	}
	return ""
}

func cleanValue(value string) string {
	value = strings.SplitN(value, "\n", 2)[0]
	value = strings.SplitN(value, "\r", 2)[0]
	if len(value) > maxFieldLength {
		value = value[:maxFieldLength]
	}
	return strings.Trim(value, " :-\t")
}

func parseVintage(raw string) (int, bool) {
	m := regexp.MustCompile(`\d{4}`).FindString(raw)
	if m == "" {
		return 0, false
	}
	year := 0
	for _, c := range m {
		year = year*10 + int(c-'0')
	}
	if year < 1900 || year > time.Now().Year()+1 {
		return 0, false
	}
	return year, true
}
