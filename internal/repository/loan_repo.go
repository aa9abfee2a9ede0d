package repository

import (
	"errors"
	"time"

	"bursary/internal/domain"
	"bursary/internal/models"

	"gorm.io/gorm"
)

type LoanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

func (r *LoanRepository) WithTx(tx *gorm.DB) *LoanRepository {
	return &LoanRepository{db: tx}
}

func (r *LoanRepository) Create(l *models.Loan) error {
	return r.db.Create(l).Error
}

func (r *LoanRepository) GetByID(id uint) (*models.Loan, error) {
	var l models.Loan
	if err := r.db.First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LoanRepository) CountActive(communityID, userID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Loan{}).
		Where("community_id = ? AND user_id = ? AND status = ?", communityID, userID, domain.LoanStatusActive).
		Count(&n).Error
	return n, err
}

// OldestActive returns the user's oldest ACTIVE loan; repayments are
// applied strictly FIFO by creation order.
func (r *LoanRepository) OldestActive(communityID, userID uint) (*models.Loan, error) {
	var l models.Loan
	err := r.db.
		Where("community_id = ? AND user_id = ? AND status = ?", communityID, userID, domain.LoanStatusActive).
		Order("created_at ASC, id ASC").
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LoanRepository) ListByUser(communityID, userID uint) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Order("created_at ASC, id ASC").
		Find(&loans).Error
	return loans, err
}

// ActiveOverdue returns every ACTIVE loan past due at the given instant,
// across all communities. Used by the scheduled enforcement sweep.
func (r *LoanRepository) ActiveOverdue(now time.Time) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.
		Where("status = ? AND due_at < ?", domain.LoanStatusActive, now).
		Order("due_at ASC").
		Find(&loans).Error
	return loans, err
}

// ReduceOwed decrements the outstanding debt, flipping the loan to PAID
// when it reaches zero. The status condition makes the write idempotent
// against a concurrent settlement of the same loan.
func (r *LoanRepository) ReduceOwed(id uint, amount int64) (remaining int64, settled bool, err error) {
	res := r.db.Model(&models.Loan{}).
		Where("id = ? AND status = ? AND total_repayment_owed >= ?", id, domain.LoanStatusActive, amount).
		Update("total_repayment_owed", gorm.Expr("total_repayment_owed - ?", amount))
	if res.Error != nil {
		return 0, false, res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish a settled loan from one whose debt shrank below
		// amount after the caller read it.
		var l models.Loan
		if err := r.db.First(&l, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, false, domain.ErrNoActiveLoan
			}
			return 0, false, err
		}
		if l.Status == domain.LoanStatusActive {
			return 0, false, domain.ErrContention
		}
		return 0, false, domain.ErrNoActiveLoan
	}
	var l models.Loan
	if err := r.db.First(&l, id).Error; err != nil {
		return 0, false, err
	}
	if l.TotalRepaymentOwed == 0 {
		if err := r.db.Model(&l).Update("status", domain.LoanStatusPaid).Error; err != nil {
			return 0, false, err
		}
		return 0, true, nil
	}
	return l.TotalRepaymentOwed, false, nil
}

// MarkPaidIfActive settles the loan, reporting whether this call was the
// one that flipped it. The outstanding debt is left in place: the claiming
// UPDATE is a current read that locks the row, so a read that follows it in
// the same transaction sees the true remaining debt rather than the
// transaction's snapshot. The caller zeroes it with ClearOwed once settled.
func (r *LoanRepository) MarkPaidIfActive(id uint) (bool, error) {
	res := r.db.Model(&models.Loan{}).
		Where("id = ? AND status = ?", id, domain.LoanStatusActive).
		Update("status", domain.LoanStatusPaid)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ClearOwed zeroes the loan's outstanding debt.
func (r *LoanRepository) ClearOwed(id uint) error {
	return r.db.Model(&models.Loan{}).Where("id = ?", id).
		Update("total_repayment_owed", 0).Error
}

func (r *LoanRepository) Delete(id uint) error {
	return r.db.Delete(&models.Loan{}, id).Error
}
