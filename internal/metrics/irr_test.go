package metrics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundlens/internal/model"
)

func TestIRRKnownValue(t *testing.T) {
	// 1000 out, 1100 back exactly one 365-day year later: IRR = 10%.
	tx := Transactions{
		CapitalCalls:  []model.CapitalCall{call(date(2020, 1, 1), "1000")},
		Distributions: []model.Distribution{dist(date(2020, 12, 31), "1100")},
	}

	irr := computeIRR(tx, decimal.Zero, date(2020, 12, 31))
	require.NotNil(t, irr)
	assert.InDelta(t, 0.10, *irr, 1e-4)
}

func TestIRRNegativeReturn(t *testing.T) {
	tx := Transactions{
		CapitalCalls:  []model.CapitalCall{call(date(2020, 1, 1), "1000")},
		Distributions: []model.Distribution{dist(date(2020, 12, 31), "900")},
	}

	irr := computeIRR(tx, decimal.Zero, date(2020, 12, 31))
	require.NotNil(t, irr)
	assert.InDelta(t, -0.10, *irr, 1e-4)
}

func TestIRRTerminalNAV(t *testing.T) {
	// 1000 invested, no distributions, NAV of 1210 two years later: the
	// terminal value behaves as a synthetic inflow, IRR = 10%.
	tx := Transactions{
		CapitalCalls: []model.CapitalCall{call(date(2020, 1, 1), "1000")},
	}

	irr := computeIRR(tx, dec("1210"), date(2021, 12, 31))
	require.NotNil(t, irr)
	assert.InDelta(t, 0.10, *irr, 1e-3)
}

func TestIRRDegenerateSeries(t *testing.T) {
	t.Run("no flows", func(t *testing.T) {
		assert.Nil(t, computeIRR(Transactions{}, decimal.Zero, date(2024, 1, 1)))
	})

	t.Run("single flow", func(t *testing.T) {
		tx := Transactions{CapitalCalls: []model.CapitalCall{call(date(2020, 1, 1), "1000")}}
		assert.Nil(t, computeIRR(tx, decimal.Zero, date(2024, 1, 1)))
	})

	t.Run("all outflows", func(t *testing.T) {
		tx := Transactions{CapitalCalls: []model.CapitalCall{
			call(date(2020, 1, 1), "1000"),
			call(date(2021, 1, 1), "1000"),
		}}
		assert.Nil(t, computeIRR(tx, decimal.Zero, date(2024, 1, 1)))
	})

	t.Run("all inflows", func(t *testing.T) {
		tx := Transactions{Distributions: []model.Distribution{
			dist(date(2020, 1, 1), "1000"),
			dist(date(2021, 1, 1), "1000"),
		}}
		assert.Nil(t, computeIRR(tx, decimal.Zero, date(2024, 1, 1)))
	})
}
