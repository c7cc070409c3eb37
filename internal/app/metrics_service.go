package app

import (
	"fmt"
	"sort"
	"time"

	"fundlens/internal/metrics"
	"fundlens/internal/repository"
)

// MetricsService assembles a fund's transaction set and hands it to the pure
// metrics engine. Stateless and side-effect-free, so concurrent requests for
// different funds need no coordination.
type MetricsService struct {
	fundRepo *repository.FundRepository
	txRepo   *repository.TransactionRepository
}

func NewMetricsService(fundRepo *repository.FundRepository, txRepo *repository.TransactionRepository) *MetricsService {
	return &MetricsService{fundRepo: fundRepo, txRepo: txRepo}
}

// Snapshot computes all metrics for a fund as of the given date (zero time
// means latest).
func (s *MetricsService) Snapshot(fundID uint, asOf time.Time) (*metrics.Snapshot, error) {
	fund, err := s.fundRepo.GetByID(fundID)
	if err != nil {
		return nil, err
	}
	if fund == nil {
		return nil, ErrFundNotFound
	}

	calls, err := s.txRepo.ListCapitalCalls(fundID, asOf)
	if err != nil {
		return nil, err
	}
	dists, err := s.txRepo.ListDistributions(fundID, asOf)
	if err != nil {
		return nil, err
	}
	adjs, err := s.txRepo.ListAdjustments(fundID, asOf)
	if err != nil {
		return nil, err
	}

	snapshot := metrics.Compute(metrics.Transactions{
		CapitalCalls:  calls,
		Distributions: dists,
		Adjustments:   adjs,
	}, fund.NAV, asOf)
	return &snapshot, nil
}

// FundHistory is a fund's cash-flow timeline with cumulative positions and
// ratio series, shaped for charting.
type FundHistory struct {
	FundID     uint                      `json:"fund_id"`
	FundName   string                    `json:"fund_name"`
	Timeline   []metrics.TimelineEvent   `json:"timeline"`
	Cumulative []metrics.HistoricalPoint `json:"cumulative"`
}

// Historical builds the fund's full transaction timeline. No as-of cut-off:
// the series always covers every recorded transaction.
func (s *MetricsService) Historical(fundID uint) (*FundHistory, error) {
	fund, err := s.fundRepo.GetByID(fundID)
	if err != nil {
		return nil, err
	}
	if fund == nil {
		return nil, ErrFundNotFound
	}

	tx, err := s.loadTransactions(fundID)
	if err != nil {
		return nil, err
	}

	events, points := metrics.History(tx, fund.NAV)
	return &FundHistory{
		FundID:     fund.ID,
		FundName:   fund.Name,
		Timeline:   events,
		Cumulative: points,
	}, nil
}

const (
	compareMinFunds = 2
	compareMaxFunds = 10
)

// ComparisonEntry is one fund's slice of a side-by-side comparison. Rankings
// maps metric name to 1-based rank among the compared funds, best first;
// funds whose metric is null carry no entry for it.
type ComparisonEntry struct {
	FundID             uint              `json:"fund_id"`
	FundName           string            `json:"fund_name"`
	GPName             string            `json:"gp_name"`
	VintageYear        int               `json:"vintage_year"`
	Metrics            *metrics.Snapshot `json:"metrics"`
	CapitalCallsCount  int               `json:"capital_calls_count"`
	DistributionsCount int               `json:"distributions_count"`
	Rankings           map[string]int    `json:"rankings"`
}

type FundComparison struct {
	Funds         []ComparisonEntry `json:"funds"`
	TotalCompared int               `json:"total_compared"`
}

// Compare computes current snapshots for 2 to 10 funds and ranks them per
// metric.
func (s *MetricsService) Compare(fundIDs []uint) (*FundComparison, error) {
	ids := dedupeIDs(fundIDs)
	if len(ids) < compareMinFunds {
		return nil, fmt.Errorf("%w: at least %d distinct funds are required for comparison", ErrInvalidInput, compareMinFunds)
	}
	if len(ids) > compareMaxFunds {
		return nil, fmt.Errorf("%w: at most %d funds can be compared at once", ErrInvalidInput, compareMaxFunds)
	}

	entries := make([]ComparisonEntry, 0, len(ids))
	for _, id := range ids {
		fund, err := s.fundRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		if fund == nil {
			return nil, fmt.Errorf("%w: fund %d", ErrFundNotFound, id)
		}

		tx, err := s.loadTransactions(id)
		if err != nil {
			return nil, err
		}
		snap := metrics.Compute(tx, fund.NAV, time.Time{})

		entries = append(entries, ComparisonEntry{
			FundID:             fund.ID,
			FundName:           fund.Name,
			GPName:             fund.GPName,
			VintageYear:        fund.VintageYear,
			Metrics:            &snap,
			CapitalCallsCount:  len(tx.CapitalCalls),
			DistributionsCount: len(tx.Distributions),
		})
	}

	rankComparison(entries)
	return &FundComparison{Funds: entries, TotalCompared: len(entries)}, nil
}

func (s *MetricsService) loadTransactions(fundID uint) (metrics.Transactions, error) {
	calls, err := s.txRepo.ListCapitalCalls(fundID, time.Time{})
	if err != nil {
		return metrics.Transactions{}, err
	}
	dists, err := s.txRepo.ListDistributions(fundID, time.Time{})
	if err != nil {
		return metrics.Transactions{}, err
	}
	adjs, err := s.txRepo.ListAdjustments(fundID, time.Time{})
	if err != nil {
		return metrics.Transactions{}, err
	}
	return metrics.Transactions{
		CapitalCalls:  calls,
		Distributions: dists,
		Adjustments:   adjs,
	}, nil
}

var comparisonMetrics = []string{"dpi", "tvpi", "irr", "moic", "rvpi"}

// rankComparison assigns per-metric ranks in place. Null metrics are left
// unranked rather than ranked last.
func rankComparison(entries []ComparisonEntry) {
	for i := range entries {
		entries[i].Rankings = map[string]int{}
	}
	for _, key := range comparisonMetrics {
		type ranked struct {
			index int
			value float64
		}
		var values []ranked
		for i := range entries {
			if v, ok := comparisonValue(entries[i].Metrics, key); ok {
				values = append(values, ranked{index: i, value: v})
			}
		}
		sort.SliceStable(values, func(a, b int) bool {
			return values[a].value > values[b].value
		})
		for rank, r := range values {
			entries[r.index].Rankings[key] = rank + 1
		}
	}
}

func comparisonValue(snap *metrics.Snapshot, key string) (float64, bool) {
	if snap == nil {
		return 0, false
	}
	switch key {
	case "dpi":
		if snap.DPI != nil {
			return snap.DPI.InexactFloat64(), true
		}
	case "rvpi":
		if snap.RVPI != nil {
			return snap.RVPI.InexactFloat64(), true
		}
	case "tvpi":
		if snap.TVPI != nil {
			return snap.TVPI.InexactFloat64(), true
		}
	case "moic":
		if snap.MOIC != nil {
			return snap.MOIC.InexactFloat64(), true
		}
	case "irr":
		if snap.IRR != nil {
			return *snap.IRR, true
		}
	}
	return 0, false
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
