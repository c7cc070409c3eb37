package tabular

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-31", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
		{"03/31/2024", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
		{"Mar 31, 2024", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
		{"March 31, 2024", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)},
		{"Mar 2024", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := parseDate(tc.in)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, in := range []string{"", "pending", "31/31/2024", "Q1 2024 2023"} {
		_, ok := parseDate(in)
		assert.False(t, ok, "expected %q to fail", in)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1000", "1000"},
		{"$1,234,567.89", "1234567.89"},
		{"(2,500)", "-2500"},
		{"-300.5", "-300.5"},
		{"USD 42", "42"},
		{"€1.000", "1.000"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := parseAmount(tc.in)
			require.True(t, ok)
			assert.True(t, got.Equal(mustDecimal(t, tc.want)), "got %s want %s", got, tc.want)
		})
	}

	for _, in := range []string{"", "n/a", "NA", "-", "pending"} {
		_, ok := parseAmount(in)
		assert.False(t, ok, "expected %q to fail", in)
	}
}

func TestParseBool(t *testing.T) {
	for _, in := range []string{"yes", "Yes", "Y", "true", "1"} {
		assert.True(t, parseBool(in), in)
	}
	for _, in := range []string{"", "no", "N", "false", "0", "maybe"} {
		assert.False(t, parseBool(in), in)
	}
}

func TestShouldSkipRow(t *testing.T) {
	assert.True(t, shouldSkipRow([]string{"", "", ""}))
	assert.True(t, shouldSkipRow([]string{"Date", "Type", "Amount"}))
	assert.True(t, shouldSkipRow([]string{"2024-01-01", "Total", "100"}))
	assert.True(t, shouldSkipRow([]string{"Subtotal", "", "100"}))
	assert.False(t, shouldSkipRow([]string{"2024-01-01", "Call 1", "100"}))
}

func TestFindColumn(t *testing.T) {
	header := []string{"date", "distribution type", "amount", "recallable"}
	assert.Equal(t, 0, findColumn(header, dateColumnKeywords))
	assert.Equal(t, 1, findColumn(header, distTypeColumnKeywords))
	assert.Equal(t, 2, findColumn(header, amountColumnKeywords))
	assert.Equal(t, 3, findColumn(header, recallColumnKeywords))
	assert.Equal(t, -1, findColumn(header, categoryColumnKeywords))
}

func TestIsContributionAdjustment(t *testing.T) {
	assert.True(t, isContributionAdjustment("Management Fee Rebate", ""))
	assert.True(t, isContributionAdjustment("", "Capital Call Adjustment"))
	assert.True(t, isContributionAdjustment("Contribution Correction", "Other"))
	assert.False(t, isContributionAdjustment("Valuation True-up", "Other"))
	assert.False(t, isContributionAdjustment("", ""))
}
