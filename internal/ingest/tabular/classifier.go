// Package tabular classifies raw extracted tables into typed financial
// transactions. Classification is lexicon-first over header and sample-row
// text, with a column-shape fallback (a date-like column plus a money-like
// column, majority-voted across rows). Unparseable rows are skipped with a
// warning, never failing the table; an unclassifiable table is reported as
// such and preserved upstream for manual review.
package tabular

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TableType string

const (
	TableCapitalCalls  TableType = "capital_call"
	TableDistributions TableType = "distribution"
	TableAdjustments   TableType = "adjustment"
	TableUnclassified  TableType = "unclassified"
)

// RawTable is one extracted table: ordered rows of cells, first row treated
// as the header candidate.
type RawTable struct {
	Header     []string   `json:"header"`
	Rows       [][]string `json:"rows"`
	PageNumber int        `json:"page_number"`
}

type CapitalCallRow struct {
	CallDate    time.Time
	CallType    string
	Amount      decimal.Decimal
	Description string
}

type DistributionRow struct {
	DistributionDate time.Time
	DistributionType string
	Amount           decimal.Decimal
	IsRecallable     bool
	Description      string
}

type AdjustmentRow struct {
	EffectiveDate  time.Time
	AdjustmentType string
	Category       string
	Amount         decimal.Decimal
	IsContribution bool
	Description    string
}

// Result is the classifier output. Exactly one of the row slices is populated
// for a classified table. Warnings carry row-level data-quality notes.
type Result struct {
	Type          TableType
	CapitalCalls  []CapitalCallRow
	Distributions []DistributionRow
	Adjustments   []AdjustmentRow
	Warnings      []string
}

// Classify maps a raw table to a transaction type and normalized rows.
// A table that cannot be classified, or that classifies but yields zero valid
// rows, comes back as TableUnclassified.
func Classify(table RawTable) Result {
	all := append([][]string{table.Header}, table.Rows...)
	cleaned := cleanTable(all)
	if len(cleaned) < 2 {
		return Result{Type: TableUnclassified}
	}

	header := make([]string, len(cleaned[0]))
	for i, cell := range cleaned[0] {
		header[i] = normalizeHeader(cell)
	}
	dataRows := cleaned[1:]

	tableType := classifyType(header, dataRows)
	if tableType == TableUnclassified {
		return Result{Type: TableUnclassified}
	}

	var result Result
	switch tableType {
	case TableCapitalCalls:
		result.CapitalCalls, result.Warnings = parseCapitalCalls(header, dataRows, table.PageNumber)
		if len(result.CapitalCalls) == 0 {
			return Result{Type: TableUnclassified, Warnings: result.Warnings}
		}
	case TableDistributions:
		result.Distributions, result.Warnings = parseDistributions(header, dataRows, table.PageNumber)
		if len(result.Distributions) == 0 {
			return Result{Type: TableUnclassified, Warnings: result.Warnings}
		}
	case TableAdjustments:
		result.Adjustments, result.Warnings = parseAdjustments(header, dataRows, table.PageNumber)
		if len(result.Adjustments) == 0 {
			return Result{Type: TableUnclassified, Warnings: result.Warnings}
		}
	}
	result.Type = tableType
	return result
}

// classifyType runs the lexicon chain over header plus the first three rows,
// then falls back to the column-shape heuristic.
func classifyType(header []string, rows [][]string) TableType {
	var sample strings.Builder
	sample.WriteString(strings.Join(header, " "))
	for i, row := range rows {
		if i >= 3 {
			break
		}
		sample.WriteString(" ")
		sample.WriteString(strings.ToLower(strings.Join(row, " ")))
	}
	candidate := sample.String()

	for _, rule := range classRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(candidate, kw) {
				return rule.Type
			}
		}
	}

	if !hasTransactionShape(header, rows) {
		return TableUnclassified
	}
	headerText := strings.Join(header, " ")
	for _, cue := range shapeCues {
		for _, kw := range cue.Keywords {
			if strings.Contains(headerText, kw) {
				return cue.Type
			}
		}
	}
	return TableUnclassified
}

// hasTransactionShape requires a date-like column and a money-like column,
// each confirmed by a majority of the data rows.
func hasTransactionShape(header []string, rows [][]string) bool {
	if len(rows) == 0 {
		return false
	}
	cols := len(header)
	dateVotes := make([]int, cols)
	moneyVotes := make([]int, cols)
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			if _, ok := parseDate(row[i]); ok {
				dateVotes[i]++
			} else if _, ok := parseAmount(row[i]); ok {
				moneyVotes[i]++
			}
		}
	}
	majority := len(rows)/2 + 1
	hasDate, hasMoney := false, false
	for i := 0; i < cols; i++ {
		if dateVotes[i] >= majority {
			hasDate = true
		}
		if moneyVotes[i] >= majority {
			hasMoney = true
		}
	}
	return hasDate && hasMoney
}

func parseCapitalCalls(header []string, rows [][]string, page int) ([]CapitalCallRow, []string) {
	dateIdx := findColumn(header, dateColumnKeywords)
	amountIdx := findColumn(header, amountColumnKeywords)
	typeIdx := findColumn(header, callTypeColumnKeywords)
	descIdx := findColumn(header, descColumnKeywords)
	if dateIdx < 0 || amountIdx < 0 {
		return nil, nil
	}

	var parsed []CapitalCallRow
	var warnings []string
	for n, row := range rows {
		if shouldSkipRow(row) {
			continue
		}
		callDate, dateOK := parseDate(safeGet(row, dateIdx))
		amount, amountOK := parseAmount(safeGet(row, amountIdx))
		if !dateOK || !amountOK {
			warnings = append(warnings, skipWarning("capital_call", page, n, dateOK, amountOK))
			continue
		}
		parsed = append(parsed, CapitalCallRow{
			CallDate:    callDate,
			CallType:    safeGet(row, typeIdx),
			Amount:      amount.Abs(),
			Description: safeGet(row, descIdx),
		})
	}
	return parsed, warnings
}

func parseDistributions(header []string, rows [][]string, page int) ([]DistributionRow, []string) {
	dateIdx := findColumn(header, dateColumnKeywords)
	amountIdx := findColumn(header, amountColumnKeywords)
	typeIdx := findColumn(header, distTypeColumnKeywords)
	recallIdx := findColumn(header, recallColumnKeywords)
	descIdx := findColumn(header, descColumnKeywords)
	if dateIdx < 0 || amountIdx < 0 {
		return nil, nil
	}

	var parsed []DistributionRow
	var warnings []string
	for n, row := range rows {
		if shouldSkipRow(row) {
			continue
		}
		distDate, dateOK := parseDate(safeGet(row, dateIdx))
		amount, amountOK := parseAmount(safeGet(row, amountIdx))
		if !dateOK || !amountOK {
			warnings = append(warnings, skipWarning("distribution", page, n, dateOK, amountOK))
			continue
		}
		parsed = append(parsed, DistributionRow{
			DistributionDate: distDate,
			DistributionType: safeGet(row, typeIdx),
			Amount:           amount.Abs(),
			IsRecallable:     parseBool(safeGet(row, recallIdx)),
			Description:      safeGet(row, descIdx),
		})
	}
	return parsed, warnings
}

func parseAdjustments(header []string, rows [][]string, page int) ([]AdjustmentRow, []string) {
	dateIdx := findColumn(header, dateColumnKeywords)
	amountIdx := findColumn(header, amountColumnKeywords)
	typeIdx := findColumn(header, adjTypeColumnKeywords)
	categoryIdx := findColumn(header, categoryColumnKeywords)
	descIdx := findColumn(header, descColumnKeywords)
	if dateIdx < 0 || amountIdx < 0 {
		return nil, nil
	}

	var parsed []AdjustmentRow
	var warnings []string
	for n, row := range rows {
		if shouldSkipRow(row) {
			continue
		}
		effDate, dateOK := parseDate(safeGet(row, dateIdx))
		amount, amountOK := parseAmount(safeGet(row, amountIdx))
		if !dateOK || !amountOK {
			warnings = append(warnings, skipWarning("adjustment", page, n, dateOK, amountOK))
			continue
		}
		adjType := safeGet(row, typeIdx)
		category := safeGet(row, categoryIdx)
		parsed = append(parsed, AdjustmentRow{
			EffectiveDate:  effDate,
			AdjustmentType: adjType,
			Category:       category,
			Amount:         amount, // adjustments keep their sign
			IsContribution: isContributionAdjustment(adjType, category),
			Description:    safeGet(row, descIdx),
		})
	}
	return parsed, warnings
}

func skipWarning(kind string, page, row int, dateOK, amountOK bool) string {
	field := "date"
	if dateOK && !amountOK {
		field = "amount"
	}
	return fmt.Sprintf("%s table page %d row %d: unparseable %s, row skipped", kind, page, row+1, field)
}
