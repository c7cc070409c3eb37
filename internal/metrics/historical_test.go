package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundlens/internal/model"
)

func TestHistoryOrdersAndAccumulates(t *testing.T) {
	tx := Transactions{
		CapitalCalls: []model.CapitalCall{
			call(date(2021, 6, 30), "40000000"),
			call(date(2020, 1, 15), "60000000"),
		},
		Distributions: []model.Distribution{
			dist(date(2022, 3, 31), "40000000"),
		},
	}
	nav := dec("120000000")

	events, points := History(tx, &nav)
	require.Len(t, events, 3)
	require.Len(t, points, 3)

	// Date order regardless of input order.
	assert.Equal(t, date(2020, 1, 15), events[0].Date)
	assert.Equal(t, "capital_call", events[0].Type)
	assert.Equal(t, date(2022, 3, 31), events[2].Date)
	assert.Equal(t, "distribution", events[2].Type)

	assert.Equal(t, "60000000", points[0].CumulativePaidIn.String())
	assert.Equal(t, "0", points[0].CumulativeDistributed.String())
	assert.Equal(t, "-60000000", points[0].NetPosition.String())

	last := points[2]
	assert.Equal(t, "100000000", last.CumulativePaidIn.String())
	assert.Equal(t, "40000000", last.CumulativeDistributed.String())
	assert.Equal(t, "-60000000", last.NetPosition.String())
	require.NotNil(t, last.DPI)
	assert.Equal(t, "0.4", last.DPI.String())
	require.NotNil(t, last.TVPI)
	assert.Equal(t, "1.6", last.TVPI.String())
}

func TestHistoryNullableRatios(t *testing.T) {
	// A distribution before any call leaves paid-in at zero: no ratios.
	tx := Transactions{
		Distributions: []model.Distribution{dist(date(2020, 1, 1), "500")},
		CapitalCalls:  []model.CapitalCall{call(date(2021, 1, 1), "1000")},
	}
	_, points := History(tx, nil)
	require.Len(t, points, 2)

	assert.Nil(t, points[0].DPI)
	assert.Nil(t, points[0].TVPI)

	// Paid-in positive but no NAV source: DPI yes, TVPI no.
	require.NotNil(t, points[1].DPI)
	assert.Equal(t, "0.5", points[1].DPI.String())
	assert.Nil(t, points[1].TVPI)
}

func TestHistoryCountsContributionAdjustments(t *testing.T) {
	tx := Transactions{
		CapitalCalls: []model.CapitalCall{call(date(2020, 1, 1), "1000")},
		Adjustments: []model.Adjustment{
			{EffectiveDate: date(2020, 6, 1), Amount: dec("200"), IsContribution: true, AdjustmentType: "fee"},
			{EffectiveDate: date(2020, 7, 1), Amount: dec("999"), IsContribution: false},
		},
	}
	events, points := History(tx, nil)

	// Non-contribution adjustments never enter the timeline.
	require.Len(t, events, 2)
	assert.Equal(t, "adjustment", events[1].Type)
	assert.Equal(t, "fee", events[1].Description)
	assert.Equal(t, "1200", points[1].CumulativePaidIn.String())
}
