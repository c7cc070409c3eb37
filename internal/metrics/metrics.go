// Package metrics computes fund performance multiples and IRR from a fund's
// transaction set. Everything here is pure and deterministic: the same
// transactions, NAV and as-of date always produce the same snapshot.
package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"fundlens/internal/model"
)

// Transactions is a fund's transaction set as of some date. Callers filter by
// date before handing it over; the engine does no storage access.
type Transactions struct {
	CapitalCalls  []model.CapitalCall
	Distributions []model.Distribution
	Adjustments   []model.Adjustment
}

// Snapshot carries all metric outputs together. The ratio fields and IRR are
// independently nullable: one being present says nothing about the others.
// Consumers must not treat an absent value as zero.
type Snapshot struct {
	PIC                decimal.Decimal  `json:"pic"`
	DistributedCapital decimal.Decimal  `json:"distributed_capital"`
	NAV                decimal.Decimal  `json:"nav"`
	DPI                *decimal.Decimal `json:"dpi"`
	RVPI               *decimal.Decimal `json:"rvpi"`
	TVPI               *decimal.Decimal `json:"tvpi"`
	MOIC               *decimal.Decimal `json:"moic"`
	IRR                *float64         `json:"irr"`
	AsOf               time.Time        `json:"as_of"`
}

const ratioPlaces = 4

// Compute builds the full metrics snapshot. nav is the last known valuation
// (nil means no NAV source exists, which computes as zero so RVPI degrades to
// 0 rather than null). A zero asOf means "as of now".
func Compute(tx Transactions, nav *decimal.Decimal, asOf time.Time) Snapshot {
	if asOf.IsZero() {
		asOf = time.Now()
	}

	pic := decimal.Zero
	for _, call := range tx.CapitalCalls {
		pic = pic.Add(call.Amount)
	}
	for _, adj := range tx.Adjustments {
		if adj.IsContribution {
			pic = pic.Add(adj.Amount)
		}
	}

	distributed := decimal.Zero
	for _, dist := range tx.Distributions {
		distributed = distributed.Add(dist.Amount)
	}

	navValue := decimal.Zero
	if nav != nil {
		navValue = *nav
	}

	snapshot := Snapshot{
		PIC:                pic,
		DistributedCapital: distributed,
		NAV:                navValue,
		AsOf:               asOf,
	}

	picPositive := pic.IsPositive()
	if picPositive {
		dpi := distributed.DivRound(pic, ratioPlaces)
		snapshot.DPI = &dpi

		total := distributed.Add(navValue).DivRound(pic, ratioPlaces)
		tvpi := total
		snapshot.TVPI = &tvpi
		// MOIC equals TVPI while cost basis equals PIC; reported separately
		// so the two can diverge without an API change.
		moic := total
		snapshot.MOIC = &moic
	}

	// RVPI distinguishes "no capital" (null) from "no remaining value" (0):
	// a fully distributed fund reports 0 even when PIC is unknown.
	if navValue.IsZero() {
		zero := decimal.Zero
		snapshot.RVPI = &zero
	} else if picPositive {
		rvpi := navValue.DivRound(pic, ratioPlaces)
		snapshot.RVPI = &rvpi
	}

	snapshot.IRR = computeIRR(tx, navValue, asOf)
	return snapshot
}
