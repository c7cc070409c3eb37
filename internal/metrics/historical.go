package metrics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TimelineEvent is one dated cash flow for charting.
type TimelineEvent struct {
	Date        time.Time       `json:"date"`
	Type        string          `json:"type"` // capital_call | distribution | adjustment
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// HistoricalPoint is the fund's cumulative position after one timeline event.
// DPI and TVPI follow the snapshot nullability rules: null until paid-in
// capital is positive, and TVPI additionally null without a NAV source.
type HistoricalPoint struct {
	Date                  time.Time        `json:"date"`
	CumulativePaidIn      decimal.Decimal  `json:"cumulative_paid_in"`
	CumulativeDistributed decimal.Decimal  `json:"cumulative_distributed"`
	NetPosition           decimal.Decimal  `json:"net_position"`
	DPI                   *decimal.Decimal `json:"dpi"`
	TVPI                  *decimal.Decimal `json:"tvpi"`
}

// History flattens a fund's transactions into a date-ordered event timeline
// and the cumulative series behind it. Contribution adjustments count toward
// paid-in capital, so the final point agrees with the snapshot's PIC. nav is
// the latest reported valuation; per-point TVPI applies it as the residual
// value throughout, since no per-date valuations exist.
func History(tx Transactions, nav *decimal.Decimal) ([]TimelineEvent, []HistoricalPoint) {
	events := make([]TimelineEvent, 0, len(tx.CapitalCalls)+len(tx.Distributions)+len(tx.Adjustments))
	for _, call := range tx.CapitalCalls {
		events = append(events, TimelineEvent{
			Date:        call.CallDate,
			Type:        "capital_call",
			Amount:      call.Amount,
			Description: firstNonEmpty(call.Description, call.CallType, "Capital Call"),
		})
	}
	for _, dist := range tx.Distributions {
		events = append(events, TimelineEvent{
			Date:        dist.DistributionDate,
			Type:        "distribution",
			Amount:      dist.Amount,
			Description: firstNonEmpty(dist.Description, dist.DistributionType, "Distribution"),
		})
	}
	for _, adj := range tx.Adjustments {
		if !adj.IsContribution {
			continue
		}
		events = append(events, TimelineEvent{
			Date:        adj.EffectiveDate,
			Type:        "adjustment",
			Amount:      adj.Amount,
			Description: firstNonEmpty(adj.Description, adj.AdjustmentType, "Adjustment"),
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})

	points := make([]HistoricalPoint, 0, len(events))
	paidIn := decimal.Zero
	distributed := decimal.Zero
	for _, event := range events {
		switch event.Type {
		case "distribution":
			distributed = distributed.Add(event.Amount)
		default:
			paidIn = paidIn.Add(event.Amount)
		}

		point := HistoricalPoint{
			Date:                  event.Date,
			CumulativePaidIn:      paidIn,
			CumulativeDistributed: distributed,
			NetPosition:           distributed.Sub(paidIn),
		}
		if paidIn.IsPositive() {
			dpi := distributed.DivRound(paidIn, ratioPlaces)
			point.DPI = &dpi
			if nav != nil {
				tvpi := distributed.Add(*nav).DivRound(paidIn, ratioPlaces)
				point.TVPI = &tvpi
			}
		}
		points = append(points, point)
	}
	return events, points
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
