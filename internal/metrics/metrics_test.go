package metrics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundlens/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func call(day time.Time, amount string) model.CapitalCall {
	return model.CapitalCall{CallDate: day, Amount: dec(amount)}
}

func dist(day time.Time, amount string) model.Distribution {
	return model.Distribution{DistributionDate: day, Amount: dec(amount)}
}

func TestComputeMultiples(t *testing.T) {
	// Calls of 100M, distributions of 40M and a 120M NAV.
	nav := dec("120000000")
	tx := Transactions{
		CapitalCalls: []model.CapitalCall{
			call(date(2020, 1, 15), "60000000"),
			call(date(2021, 6, 30), "40000000"),
		},
		Distributions: []model.Distribution{
			dist(date(2022, 3, 31), "40000000"),
		},
	}

	snap := Compute(tx, &nav, date(2024, 12, 31))

	assert.Equal(t, "100000000", snap.PIC.String())
	assert.Equal(t, "40000000", snap.DistributedCapital.String())
	assert.Equal(t, "120000000", snap.NAV.String())

	require.NotNil(t, snap.DPI)
	require.NotNil(t, snap.RVPI)
	require.NotNil(t, snap.TVPI)
	require.NotNil(t, snap.MOIC)
	assert.Equal(t, "0.4", snap.DPI.String())
	assert.Equal(t, "1.2", snap.RVPI.String())
	assert.Equal(t, "1.6", snap.TVPI.String())
	assert.Equal(t, "1.6", snap.MOIC.String())

	require.NotNil(t, snap.IRR)
	assert.Greater(t, *snap.IRR, 0.0)
}

func TestComputeNoPaidInCapital(t *testing.T) {
	// Distributions and NAV without any calls: ratios over PIC stay null, and
	// RVPI is null too because NAV is nonzero.
	nav := dec("5000000")
	tx := Transactions{
		Distributions: []model.Distribution{dist(date(2023, 1, 1), "1000000")},
	}

	snap := Compute(tx, &nav, date(2024, 1, 1))

	assert.True(t, snap.PIC.IsZero())
	assert.Nil(t, snap.DPI)
	assert.Nil(t, snap.TVPI)
	assert.Nil(t, snap.MOIC)
	assert.Nil(t, snap.RVPI)
}

func TestComputeZeroNAVReportsZeroRVPI(t *testing.T) {
	// A fund with no remaining value reports RVPI 0, not null, even before
	// any capital is recorded.
	snap := Compute(Transactions{}, nil, date(2024, 1, 1))

	require.NotNil(t, snap.RVPI)
	assert.True(t, snap.RVPI.IsZero())
	assert.Nil(t, snap.DPI)
	assert.Nil(t, snap.IRR)
}

func TestComputeContributionAdjustments(t *testing.T) {
	nav := dec("50000000")
	tx := Transactions{
		CapitalCalls: []model.CapitalCall{call(date(2020, 1, 1), "100000000")},
		Adjustments: []model.Adjustment{
			{EffectiveDate: date(2020, 6, 1), Amount: dec("-5000000"), IsContribution: true},
			{EffectiveDate: date(2020, 7, 1), Amount: dec("9999999"), IsContribution: false},
		},
	}

	snap := Compute(tx, &nav, date(2024, 1, 1))

	// Only contribution adjustments shift PIC, at their signed value.
	assert.Equal(t, "95000000", snap.PIC.String())
}

func TestComputeFullyRealizedFund(t *testing.T) {
	tx := Transactions{
		CapitalCalls:  []model.CapitalCall{call(date(2015, 1, 1), "10000000")},
		Distributions: []model.Distribution{dist(date(2020, 1, 1), "25000000")},
	}

	snap := Compute(tx, nil, date(2024, 1, 1))

	require.NotNil(t, snap.DPI)
	require.NotNil(t, snap.RVPI)
	require.NotNil(t, snap.TVPI)
	assert.Equal(t, "2.5", snap.DPI.String())
	assert.True(t, snap.RVPI.IsZero())
	assert.Equal(t, "2.5", snap.TVPI.String())
}

func TestComputeDeterministic(t *testing.T) {
	nav := dec("120000000")
	tx := Transactions{
		CapitalCalls:  []model.CapitalCall{call(date(2020, 1, 15), "100000000")},
		Distributions: []model.Distribution{dist(date(2022, 3, 31), "40000000")},
	}
	asOf := date(2024, 12, 31)

	a := Compute(tx, &nav, asOf)
	b := Compute(tx, &nav, asOf)
	assert.Equal(t, a, b)
}
