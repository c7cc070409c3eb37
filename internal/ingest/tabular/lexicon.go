package tabular

// Classification is a prioritized rule chain over header and sample-row text.
// The lexicons live here as data so tests can enumerate rule coverage.

type classRule struct {
	Type     TableType
	Keywords []string
}

// Evaluated in order; first hit wins. Adjustments come first because their
// headers often also mention calls or distributions.
var classRules = []classRule{
	{
		Type: TableAdjustments,
		Keywords: []string{
			"adjustment",
			"recallable distribution",
			"capital call adjustment",
			"contribution adjustment",
			"fee adjustment",
		},
	},
	{
		Type: TableDistributions,
		Keywords: []string{
			"distribution",
			"return of capital",
			"recallable",
			"dividend",
			"income",
		},
	},
	{
		Type: TableCapitalCalls,
		Keywords: []string{
			"capital call",
			"call number",
			"capital contribution",
			"capital commitments",
		},
	},
}

// Column keyword sets used to locate fields once a table type is known.
var (
	dateColumnKeywords     = []string{"date"}
	amountColumnKeywords   = []string{"amount", "value"}
	callTypeColumnKeywords = []string{"call number", "call no", "call#", "call type", "type"}
	distTypeColumnKeywords = []string{"distribution type", "type"}
	adjTypeColumnKeywords  = []string{"adjustment type", "type"}
	recallColumnKeywords   = []string{"recallable", "recall"}
	categoryColumnKeywords = []string{"category"}
	descColumnKeywords     = []string{"description", "details", "notes"}
)

// Shape fallback cue words, checked only when the table already looks
// transactional (a date-like column plus a money-like column).
var shapeCues = []classRule{
	{Type: TableDistributions, Keywords: []string{"recallable"}},
	{Type: TableCapitalCalls, Keywords: []string{"call"}},
}

// Adjustments whose type or category mentions one of these shift paid-in
// capital; everything else is informational.
var contributionAdjustmentKeywords = []string{"contribution", "capital call", "fee", "management"}

// Rows whose first cell repeats a header word or that contain totals are
// layout artifacts, not data.
var (
	skipFirstCellValues = map[string]struct{}{"date": {}, "type": {}}
	skipRowValues       = map[string]struct{}{"total": {}, "subtotal": {}}
)
