package repository

import (
	"errors"

	"bursary/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	err := r.db.First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetOrCreate creates the credit profile on first reference with the given
// starting score.
func (r *UserRepository) GetOrCreate(id uint, startScore int) (*models.User, error) {
	u, err := r.GetByID(id)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	u = &models.User{ID: id, CreditScore: startScore}
	if err := r.db.Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// AdjustScore applies a signed score delta clamped to [min, max] and
// returns the new score. Delta and clamp ride inside one UPDATE, so two
// loans of the same user settling concurrently cannot lose a delta.
func (r *UserRepository) AdjustScore(id uint, delta, min, max int) (int, error) {
	res := r.db.Model(&models.User{}).
		Where("id = ?", id).
		Update("credit_score", gorm.Expr(
			"CASE WHEN credit_score + ? < ? THEN ? WHEN credit_score + ? > ? THEN ? ELSE credit_score + ? END",
			delta, min, min, delta, max, max, delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	u, err := r.GetByID(id)
	if err != nil {
		return 0, err
	}
	return u.CreditScore, nil
}

func (r *UserRepository) SetLoanBanned(id uint, banned bool) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("is_loan_banned", banned).Error
}
