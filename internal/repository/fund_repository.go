package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"fundlens/internal/model"
)

type FundRepository struct {
	db *gorm.DB
}

func NewFundRepository(db *gorm.DB) *FundRepository {
	return &FundRepository{db: db}
}

func (r *FundRepository) Create(fund *model.Fund) error {
	if fund.NameNormalized == "" {
		fund.NameNormalized = model.NormalizeFundName(fund.Name)
	}
	if err := r.db.Create(fund).Error; err != nil {
		return fmt.Errorf("create fund failed: %w", err)
	}
	return nil
}

func (r *FundRepository) GetByID(id uint) (*model.Fund, error) {
	var fund model.Fund
	if err := r.db.First(&fund, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fund failed: %w", err)
	}
	return &fund, nil
}

func (r *FundRepository) GetByNormalizedName(normalized string) (*model.Fund, error) {
	var fund model.Fund
	if err := r.db.Where("name_normalized = ?", normalized).First(&fund).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fund by name failed: %w", err)
	}
	return &fund, nil
}

// FindOrCreate resolves a fund by case-insensitive exact name. The single
// ingest worker serializes calls; the unique index on name_normalized covers
// a multi-worker deployment, where an insert conflict is retried as a lookup.
func (r *FundRepository) FindOrCreate(fund *model.Fund) (*model.Fund, error) {
	normalized := model.NormalizeFundName(fund.Name)
	existing, err := r.GetByNormalizedName(normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	fund.NameNormalized = normalized
	if createErr := r.db.Create(fund).Error; createErr != nil {
		existing, err = r.GetByNormalizedName(normalized)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("create fund failed: %w", createErr)
	}
	return fund, nil
}

func (r *FundRepository) List() ([]model.Fund, error) {
	var funds []model.Fund
	if err := r.db.Order("name ASC").Find(&funds).Error; err != nil {
		return nil, fmt.Errorf("list funds failed: %w", err)
	}
	return funds, nil
}

// UpdateMetadata persists mutable fund attributes. Fund name and identity are
// never changed here; transactions reference the fund by id.
func (r *FundRepository) UpdateMetadata(fund *model.Fund) error {
	updates := map[string]interface{}{
		"gp_name":      fund.GPName,
		"vintage_year": fund.VintageYear,
		"fund_type":    fund.FundType,
		"nav":          fund.NAV,
	}
	if err := r.db.Model(&model.Fund{}).Where("id = ?", fund.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("update fund failed: %w", err)
	}
	return nil
}
