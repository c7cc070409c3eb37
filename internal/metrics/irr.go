package metrics

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// IRR is solved from the signed cash-flow series: calls are outflows at their
// call dates, distributions inflows at theirs, and NAV a terminal synthetic
// inflow at the as-of date. NPV(r) = sum CF_i / (1+r)^(days_i/365). Newton
// iteration with a bisection fallback; non-convergence returns nil, never an
// error.

const (
	irrMaxIterations = 100
	irrTolerance     = 1e-6
	irrInitialGuess  = 0.1
	irrLowerBound    = -0.9999
	irrUpperBound    = 10.0
	daysPerYear      = 365.0
)

type cashFlow struct {
	amount float64
	years  float64 // elapsed from the first flow, in 365-day years
}

func computeIRR(tx Transactions, nav decimal.Decimal, asOf time.Time) *float64 {
	flows := buildCashFlows(tx, nav, asOf)
	if len(flows) < 2 {
		return nil
	}

	hasNegative, hasPositive := false, false
	for _, cf := range flows {
		if cf.amount < 0 {
			hasNegative = true
		}
		if cf.amount > 0 {
			hasPositive = true
		}
	}
	if !hasNegative || !hasPositive {
		return nil
	}

	if r, ok := newtonIRR(flows); ok {
		return &r
	}
	if r, ok := bisectIRR(flows); ok {
		return &r
	}
	return nil
}

func buildCashFlows(tx Transactions, nav decimal.Decimal, asOf time.Time) []cashFlow {
	type datedFlow struct {
		amount float64
		date   time.Time
	}
	var dated []datedFlow
	for _, call := range tx.CapitalCalls {
		dated = append(dated, datedFlow{-call.Amount.InexactFloat64(), call.CallDate})
	}
	for _, dist := range tx.Distributions {
		dated = append(dated, datedFlow{dist.Amount.InexactFloat64(), dist.DistributionDate})
	}
	if !nav.IsZero() {
		dated = append(dated, datedFlow{nav.InexactFloat64(), asOf})
	}
	if len(dated) == 0 {
		return nil
	}

	earliest := dated[0].date
	for _, f := range dated[1:] {
		if f.date.Before(earliest) {
			earliest = f.date
		}
	}

	flows := make([]cashFlow, len(dated))
	for i, f := range dated {
		flows[i] = cashFlow{
			amount: f.amount,
			years:  f.date.Sub(earliest).Hours() / 24 / daysPerYear,
		}
	}
	return flows
}

func npv(flows []cashFlow, rate float64) float64 {
	total := 0.0
	for _, cf := range flows {
		total += cf.amount / math.Pow(1+rate, cf.years)
	}
	return total
}

func npvDerivative(flows []cashFlow, rate float64) float64 {
	total := 0.0
	for _, cf := range flows {
		if cf.years == 0 {
			continue
		}
		total -= cf.amount * cf.years / math.Pow(1+rate, cf.years+1)
	}
	return total
}

func newtonIRR(flows []cashFlow) (float64, bool) {
	rate := irrInitialGuess
	for i := 0; i < irrMaxIterations; i++ {
		value := npv(flows, rate)
		if math.Abs(value) < irrTolerance {
			return rate, true
		}
		derivative := npvDerivative(flows, rate)
		if derivative == 0 || math.IsNaN(derivative) || math.IsInf(derivative, 0) {
			return 0, false
		}
		next := rate - value/derivative
		if math.IsNaN(next) || next <= irrLowerBound || next > irrUpperBound {
			return 0, false
		}
		rate = next
	}
	return 0, false
}

func bisectIRR(flows []cashFlow) (float64, bool) {
	low, high := irrLowerBound, irrUpperBound
	npvLow, npvHigh := npv(flows, low), npv(flows, high)
	if npvLow*npvHigh > 0 {
		return 0, false
	}
	for i := 0; i < irrMaxIterations; i++ {
		mid := (low + high) / 2
		value := npv(flows, mid)
		if math.Abs(value) < irrTolerance {
			return mid, true
		}
		if npvLow*value < 0 {
			high = mid
		} else {
			low = mid
			npvLow = value
		}
	}
	return 0, false
}
