package repository

import (
	"time"

	"bursary/internal/domain"
	"bursary/internal/models"

	"gorm.io/gorm"
)

type InvestmentRepository struct {
	db *gorm.DB
}

func NewInvestmentRepository(db *gorm.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

func (r *InvestmentRepository) WithTx(tx *gorm.DB) *InvestmentRepository {
	return &InvestmentRepository{db: tx}
}

func (r *InvestmentRepository) Create(inv *models.Investment) error {
	return r.db.Create(inv).Error
}

func (r *InvestmentRepository) GetByID(id uint) (*models.Investment, error) {
	var inv models.Investment
	if err := r.db.First(&inv, id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvestmentRepository) ListByUser(communityID, userID uint) ([]models.Investment, error) {
	var list []models.Investment
	err := r.db.
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}

// MaturedActive returns ACTIVE investments with matures_at <= now. A zero
// userID means unscoped (the global scheduled sweep); nonzero scopes the
// query to one user's interactive collect.
func (r *InvestmentRepository) MaturedActive(now time.Time, communityID, userID uint) ([]models.Investment, error) {
	q := r.db.Where("status = ? AND matures_at <= ?", domain.InvestmentStatusActive, now)
	if userID != 0 {
		q = q.Where("community_id = ? AND user_id = ?", communityID, userID)
	}
	var list []models.Investment
	err := q.Order("matures_at ASC").Find(&list).Error
	return list, err
}

// CompleteIfActive flips the investment to COMPLETED, reporting whether
// this call won the flip. A sweep re-entering after an interruption sees
// false and pays nothing twice.
func (r *InvestmentRepository) CompleteIfActive(id uint) (bool, error) {
	res := r.db.Model(&models.Investment{}).
		Where("id = ? AND status = ?", id, domain.InvestmentStatusActive).
		Update("status", domain.InvestmentStatusCompleted)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
