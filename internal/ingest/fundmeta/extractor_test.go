package fundmeta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLabeledFrontMatter(t *testing.T) {
	text := `Quarterly Report
Fund Name: Velocity Ventures Fund III
General Partner: Velocity Capital Management
Vintage Year: 2019
Fund Type: Venture Capital
`

	info := Extract(text)

	assert.Equal(t, "Velocity Ventures Fund III", info.FundName)
	assert.Equal(t, "Velocity Capital Management", info.GPName)
	assert.Equal(t, 2019, info.VintageYear)
	assert.Equal(t, "Venture Capital", info.FundType)
}

func TestExtractAlternateLabels(t *testing.T) {
	text := `Name of Fund: Granite Buyout Partners II
Managed by: Granite Equity LLC
Inception: 2021
Strategy: Buyout
`

	info := Extract(text)

	assert.Equal(t, "Granite Buyout Partners II", info.FundName)
	assert.Equal(t, "Granite Equity LLC", info.GPName)
	assert.Equal(t, 2021, info.VintageYear)
	assert.Equal(t, "Buyout", info.FundType)
}

func TestExtractTitleLineFundName(t *testing.T) {
	text := `Velocity Ventures Fund IV
Report for the quarter ended March 31, 2024
`

	info := Extract(text)
	assert.Equal(t, "Velocity Ventures Fund IV", info.FundName)
}

func TestExtractMissingFields(t *testing.T) {
	info := Extract("Portfolio review and market commentary only.")

	assert.Empty(t, info.FundName)
	assert.Empty(t, info.GPName)
	assert.Zero(t, info.VintageYear)
	assert.Empty(t, info.FundType)
}

func TestExtractRejectsImplausibleVintage(t *testing.T) {
	info := Extract("Fund Name: Test Fund\nVintage Year: 1789\n")
	assert.Zero(t, info.VintageYear)
}
