package app

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fundlens/internal/model"
	"fundlens/internal/repository"
)

// FundMetadataUpdate carries the mutable fund attributes. Nil fields are left
// untouched.
type FundMetadataUpdate struct {
	GPName      *string          `json:"gp_name"`
	VintageYear *int             `json:"vintage_year"`
	FundType    *string          `json:"fund_type"`
	NAV         *decimal.Decimal `json:"nav"`
}

type FundService struct {
	fundRepo *repository.FundRepository
	txRepo   *repository.TransactionRepository
}

func NewFundService(fundRepo *repository.FundRepository, txRepo *repository.TransactionRepository) *FundService {
	return &FundService{fundRepo: fundRepo, txRepo: txRepo}
}

func (s *FundService) List() ([]model.Fund, error) {
	return s.fundRepo.List()
}

func (s *FundService) Get(id uint) (*model.Fund, error) {
	fund, err := s.fundRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if fund == nil {
		return nil, ErrFundNotFound
	}
	return fund, nil
}

func (s *FundService) UpdateMetadata(id uint, update FundMetadataUpdate) (*model.Fund, error) {
	fund, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if update.GPName != nil {
		fund.GPName = *update.GPName
	}
	if update.VintageYear != nil {
		year := *update.VintageYear
		if year != 0 && (year < 1900 || year > time.Now().Year()+1) {
			return nil, fmt.Errorf("%w: vintage year %d out of range", ErrInvalidInput, year)
		}
		fund.VintageYear = year
	}
	if update.FundType != nil {
		fund.FundType = *update.FundType
	}
	if update.NAV != nil {
		if update.NAV.Sign() < 0 {
			return nil, fmt.Errorf("%w: nav must not be negative", ErrInvalidInput)
		}
		fund.NAV = update.NAV
	}

	if err := s.fundRepo.UpdateMetadata(fund); err != nil {
		return nil, err
	}
	return fund, nil
}

// FundTransactions groups a fund's typed transaction rows for listing.
type FundTransactions struct {
	CapitalCalls  []model.CapitalCall  `json:"capital_calls"`
	Distributions []model.Distribution `json:"distributions"`
	Adjustments   []model.Adjustment   `json:"adjustments"`
}

// Transactions lists a fund's transactions, optionally restricted to a single
// type ("capital_call", "distribution" or "adjustment").
func (s *FundService) Transactions(id uint, txType string) (*FundTransactions, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}

	result := &FundTransactions{
		CapitalCalls:  []model.CapitalCall{},
		Distributions: []model.Distribution{},
		Adjustments:   []model.Adjustment{},
	}
	var err error
	switch txType {
	case "":
		if result.CapitalCalls, err = s.txRepo.ListCapitalCalls(id, time.Time{}); err != nil {
			return nil, err
		}
		if result.Distributions, err = s.txRepo.ListDistributions(id, time.Time{}); err != nil {
			return nil, err
		}
		if result.Adjustments, err = s.txRepo.ListAdjustments(id, time.Time{}); err != nil {
			return nil, err
		}
	case "capital_call":
		if result.CapitalCalls, err = s.txRepo.ListCapitalCalls(id, time.Time{}); err != nil {
			return nil, err
		}
	case "distribution":
		if result.Distributions, err = s.txRepo.ListDistributions(id, time.Time{}); err != nil {
			return nil, err
		}
	case "adjustment":
		if result.Adjustments, err = s.txRepo.ListAdjustments(id, time.Time{}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidInput, txType)
	}
	return result, nil
}
