package app

import "strings"

// Static metric glossary. Definition intents answer from here directly, with
// no database or vector call.

type glossaryEntry struct {
	Term       string
	Aliases    []string
	Definition string
}

var glossary = []glossaryEntry{
	{
		Term:       "DPI",
		Aliases:    []string{"dpi", "distributions to paid-in", "distributed to paid-in"},
		Definition: "DPI (Distributions to Paid-In) is the realized-return multiple of a fund: cumulative distributions divided by paid-in capital. DPI = Total Distributions / Paid-In Capital. A DPI above 1.0 means investors have received back more cash than they contributed.",
	},
	{
		Term:       "RVPI",
		Aliases:    []string{"rvpi", "residual value to paid-in"},
		Definition: "RVPI (Residual Value to Paid-In) is the unrealized-return multiple: current net asset value divided by paid-in capital. RVPI = NAV / Paid-In Capital. A fully distributed fund has an RVPI of 0.",
	},
	{
		Term:       "TVPI",
		Aliases:    []string{"tvpi", "total value to paid-in"},
		Definition: "TVPI (Total Value to Paid-In) is the total-return multiple: realized distributions plus remaining value, divided by paid-in capital. TVPI = DPI + RVPI = (Distributions + NAV) / Paid-In Capital.",
	},
	{
		Term:       "MOIC",
		Aliases:    []string{"moic", "multiple on invested capital"},
		Definition: "MOIC (Multiple on Invested Capital) measures total value created over the capital invested: (Distributions + NAV) / Invested Capital. It is reported alongside TVPI; the two diverge when cost basis departs from paid-in capital.",
	},
	{
		Term:       "IRR",
		Aliases:    []string{"irr", "internal rate of return"},
		Definition: "IRR (Internal Rate of Return) is the annualized discount rate at which the net present value of a fund's cash flows (capital calls out, distributions and remaining NAV in) equals zero. It captures both the size and the timing of cash flows.",
	},
	{
		Term:       "NAV",
		Aliases:    []string{"nav", "net asset value"},
		Definition: "NAV (Net Asset Value) is the current estimated residual value of a fund's holdings. It is reported by the fund and drives the unrealized component of TVPI and RVPI.",
	},
	{
		Term:       "PIC",
		Aliases:    []string{"pic", "paid-in capital", "paid in capital"},
		Definition: "Paid-In Capital (PIC) is the cumulative capital actually called from investors, net of contribution adjustments. It is the denominator of DPI, RVPI and TVPI.",
	},
	{
		Term:       "capital call",
		Aliases:    []string{"capital call", "capital calls", "drawdown"},
		Definition: "A capital call is a fund's demand on investors to pay in a portion of their committed capital, typically to finance an investment, fees or expenses.",
	},
	{
		Term:       "recallable distribution",
		Aliases:    []string{"recallable distribution", "recallable"},
		Definition: "A recallable distribution is cash returned to investors that the fund may call again later; it temporarily reduces paid-in exposure without permanently shrinking the commitment.",
	},
	{
		Term:       "vintage year",
		Aliases:    []string{"vintage year", "vintage"},
		Definition: "A fund's vintage year is the year it made its first capital call or investment; performance is typically benchmarked against other funds of the same vintage.",
	},
}

// lookupGlossary finds the first glossary entry whose alias appears in the
// query. Longer aliases are listed before their acronyms above so "total
// value to paid-in" wins over a bare substring hit.
func lookupGlossary(query string) (glossaryEntry, bool) {
	q := " " + strings.ToLower(query) + " "
	for _, entry := range glossary {
		for _, alias := range entry.Aliases {
			if containsWord(q, alias) {
				return entry, true
			}
		}
	}
	return glossaryEntry{}, false
}

// containsWord matches alias on word boundaries so "irr" does not fire inside
// "irrelevant".
func containsWord(padded, alias string) bool {
	idx := 0
	for {
		i := strings.Index(padded[idx:], alias)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(alias)
		if !isWordChar(padded[start-1]) && !isWordChar(padded[end]) {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
