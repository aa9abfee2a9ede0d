package repository

import (
	"errors"

	"bursary/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConfigRepository struct {
	db *gorm.DB
}

func NewConfigRepository(db *gorm.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

func (r *ConfigRepository) WithTx(tx *gorm.DB) *ConfigRepository {
	return &ConfigRepository{db: tx}
}

// Get returns the stored config for the community, or (nil, nil) if the
// community has never written one.
func (r *ConfigRepository) Get(communityID uint) (*models.CommunityConfig, error) {
	var cfg models.CommunityConfig
	err := r.db.Where("community_id = ?", communityID).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *ConfigRepository) Upsert(cfg *models.CommunityConfig) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "community_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"start_balance", "wallet_cap", "bank_cap",
			"loan_interest_pct", "fd_interest_pct", "rd_interest_pct",
			"market_tax_pct", "credit_reward", "credit_penalty",
			"min_credit_score", "max_credit_score", "max_active_loans",
			"updated_at",
		}),
	}).Create(cfg).Error
}

func (r *ConfigRepository) GetTiers(communityID uint) ([]models.CreditTier, error) {
	var tiers []models.CreditTier
	err := r.db.Where("community_id = ?", communityID).Order("min_score ASC").Find(&tiers).Error
	return tiers, err
}

// ReplaceTiers swaps the community's whole tier table in one transaction.
func (r *ConfigRepository) ReplaceTiers(communityID uint, tiers []models.CreditTier) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("community_id = ?", communityID).Delete(&models.CreditTier{}).Error; err != nil {
			return err
		}
		for i := range tiers {
			tiers[i].ID = 0
			tiers[i].CommunityID = communityID
			if err := tx.Create(&tiers[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
