package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundlens/internal/ingest/tabular"
	"fundlens/internal/model"
)

// End-to-end over the pure stages: raw tables through classification into the
// metrics engine, no storage in between.
func TestClassifiedTablesProduceExpectedMetrics(t *testing.T) {
	callTable := tabular.RawTable{
		Header: []string{"Date", "Call Number", "Amount"},
		Rows: [][]string{
			{"2020-01-15", "Call 1", "$60,000,000"},
			{"2021-06-30", "Call 2", "$40,000,000"},
			{"", "Total", "$100,000,000"},
		},
	}
	distTable := tabular.RawTable{
		Header: []string{"Date", "Distribution Type", "Amount", "Recallable"},
		Rows: [][]string{
			{"2022-03-31", "Return of Capital", "40,000,000", "No"},
		},
	}

	callResult := tabular.Classify(callTable)
	require.Equal(t, tabular.TableCapitalCalls, callResult.Type)
	distResult := tabular.Classify(distTable)
	require.Equal(t, tabular.TableDistributions, distResult.Type)

	var tx Transactions
	for _, row := range callResult.CapitalCalls {
		tx.CapitalCalls = append(tx.CapitalCalls, model.CapitalCall{
			CallDate: row.CallDate,
			Amount:   row.Amount,
		})
	}
	for _, row := range distResult.Distributions {
		tx.Distributions = append(tx.Distributions, model.Distribution{
			DistributionDate: row.DistributionDate,
			Amount:           row.Amount,
		})
	}

	nav := dec("120000000")
	snap := Compute(tx, &nav, date(2024, 12, 31))

	assert.Equal(t, "100000000", snap.PIC.String())
	require.NotNil(t, snap.DPI)
	require.NotNil(t, snap.TVPI)
	assert.Equal(t, "0.4", snap.DPI.String())
	assert.Equal(t, "1.6", snap.TVPI.String())
	require.NotNil(t, snap.IRR)
}
