package repository

import (
	"errors"

	"bursary/internal/domain"
	"bursary/internal/models"

	"gorm.io/gorm"
)

// AccountRepository owns wallet and bank rows. Balance mutations go through
// guarded single-statement updates so a concurrent debit can never pass a
// stale balance check: the non-negativity condition travels inside the
// UPDATE itself.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// WithTx returns a view of the repository bound to tx, so callers can
// compose repository calls inside one db.Transaction block.
func (r *AccountRepository) WithTx(tx *gorm.DB) *AccountRepository {
	return &AccountRepository{db: tx}
}

func (r *AccountRepository) GetWallet(communityID, userID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.Where("community_id = ? AND user_id = ?", communityID, userID).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetOrCreateWallet creates the wallet on first reference with the given
// starting balance. A nonzero start also seeds one ledger entry so the
// conservation invariant (balance == sum of entries) holds from birth.
// Credit-side lazy creation (e.g. a transfer receiver) passes start 0.
func (r *AccountRepository) GetOrCreateWallet(communityID, userID uint, startBalance int64) (*models.Wallet, error) {
	w, err := r.GetWallet(communityID, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	w = &models.Wallet{CommunityID: communityID, UserID: userID, Balance: startBalance}
	if err := r.db.Create(w).Error; err != nil {
		return nil, err
	}
	if startBalance > 0 {
		seed := &models.Transaction{
			AccountKind: domain.AccountKindWallet,
			AccountID:   w.ID,
			Amount:      startBalance,
			Kind:        domain.TxKindDeposit,
			Meta:        map[string]interface{}{"reason": "starting_balance"},
		}
		if err := r.db.Create(seed).Error; err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (r *AccountRepository) GetBank(communityID, userID uint) (*models.Bank, error) {
	var b models.Bank
	err := r.db.Where("community_id = ? AND user_id = ?", communityID, userID).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetOrCreateBank creates the bank on first deposit, loan or investment.
// Banks always start empty.
func (r *AccountRepository) GetOrCreateBank(communityID, userID uint) (*models.Bank, error) {
	b, err := r.GetBank(communityID, userID)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	b = &models.Bank{CommunityID: communityID, UserID: userID, Balance: 0}
	if err := r.db.Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

func (r *AccountRepository) modelFor(kind string) interface{} {
	if kind == domain.AccountKindBank {
		return &models.Bank{}
	}
	return &models.Wallet{}
}

// Balance reads the current balance of ref.
func (r *AccountRepository) Balance(ref domain.AccountRef) (int64, error) {
	var balance int64
	res := r.db.Model(r.modelFor(ref.Kind)).Where("id = ?", ref.ID).Pluck("balance", &balance)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, domain.ErrAccountNotFound
	}
	return balance, nil
}

// ApplyDelta applies a signed delta and returns the new balance. Unless
// allowNegative is set (overdue-loan enforcement only), the update carries
// its own non-negativity guard and fails with ErrInsufficientFunds without
// touching the row.
func (r *AccountRepository) ApplyDelta(ref domain.AccountRef, delta int64, allowNegative bool) (int64, error) {
	q := r.db.Model(r.modelFor(ref.Kind)).Where("id = ?", ref.ID)
	if !allowNegative {
		q = q.Where("balance + ? >= 0", delta)
	}
	res := q.Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing row from a guard rejection.
		if _, err := r.Balance(ref); err != nil {
			return 0, err
		}
		return 0, domain.ErrInsufficientFunds
	}
	return r.Balance(ref)
}

// ApplyDeltaWithCap credits delta only if the resulting balance stays
// within cap, failing with ErrBalanceCapExceeded otherwise. The cap guard
// rides inside the UPDATE like the non-negativity guard.
func (r *AccountRepository) ApplyDeltaWithCap(ref domain.AccountRef, delta, cap int64) (int64, error) {
	res := r.db.Model(r.modelFor(ref.Kind)).
		Where("id = ? AND balance + ? >= 0 AND balance + ? <= ?", ref.ID, delta, delta, cap).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		balance, err := r.Balance(ref)
		if err != nil {
			return 0, err
		}
		if balance+delta < 0 {
			return 0, domain.ErrInsufficientFunds
		}
		return 0, domain.ErrBalanceCapExceeded
	}
	return r.Balance(ref)
}

// ApplyDeltaClamped credits delta, truncating the result at cap instead of
// rejecting it. The clamp rides inside the UPDATE, so the write is atomic
// under concurrency; the returned balance is the row as this statement left
// it. Used by payout paths where exceeding the cap forfeits the excess
// rather than failing the operation.
func (r *AccountRepository) ApplyDeltaClamped(ref domain.AccountRef, delta, cap int64) (int64, error) {
	res := r.db.Model(r.modelFor(ref.Kind)).
		Where("id = ?", ref.ID).
		Update("balance", gorm.Expr(
			"CASE WHEN balance + ? > ? THEN ? ELSE balance + ? END",
			delta, cap, cap, delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, domain.ErrAccountNotFound
	}
	return r.Balance(ref)
}
