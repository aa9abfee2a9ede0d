package service

import (
	"errors"

	"bursary/internal/domain"
	"bursary/internal/models"
	"bursary/internal/repository"

	"gorm.io/gorm"
)

// LedgerService is the only writer of balance deltas. Every mutation pairs
// the guarded balance update with an immutable transaction entry inside one
// db.Transaction block: both land or neither does, so the sum of an
// account's entries always equals its balance.
type LedgerService struct {
	db       *gorm.DB
	accounts *repository.AccountRepository
	cfg      *ConfigStore
	audit    AuditSink
}

func NewLedgerService(db *gorm.DB, accounts *repository.AccountRepository, cfg *ConfigStore, audit AuditSink) *LedgerService {
	if audit == nil {
		audit = NopSink{}
	}
	return &LedgerService{db: db, accounts: accounts, cfg: cfg, audit: audit}
}

type recordOpts struct {
	// AllowNegative lifts the non-negativity guard. Only the overdue-loan
	// enforcement path sets it.
	AllowNegative bool
	// Cap, when nonzero, rejects a credit that would push the balance
	// past it.
	Cap int64
	// Earned tags entries that represent income (winnings, sale payouts,
	// matured investments) for reporting.
	Earned bool
}

// recordIn applies a signed delta and appends its ledger entry within the
// caller's transaction. Composed by every balance-touching service op.
func (s *LedgerService) recordIn(tx *gorm.DB, ref domain.AccountRef, amount int64, kind string, meta map[string]interface{}, opts recordOpts) (*models.Transaction, error) {
	if amount == 0 {
		return nil, domain.ErrInvalidAmount
	}
	accounts := s.accounts.WithTx(tx)
	var err error
	if opts.Cap > 0 && amount > 0 {
		_, err = accounts.ApplyDeltaWithCap(ref, amount, opts.Cap)
	} else {
		_, err = accounts.ApplyDelta(ref, amount, opts.AllowNegative)
	}
	if err != nil {
		return nil, err
	}
	return s.appendIn(tx, ref, amount, kind, meta, opts.Earned)
}

// appendIn writes only the ledger entry; the caller has already applied the
// delta through its own guarded statements and knows the exact net.
func (s *LedgerService) appendIn(tx *gorm.DB, ref domain.AccountRef, amount int64, kind string, meta map[string]interface{}, earned bool) (*models.Transaction, error) {
	entry := &models.Transaction{
		AccountKind: ref.Kind,
		AccountID:   ref.ID,
		Amount:      amount,
		Kind:        kind,
		Meta:        meta,
		IsEarned:    earned,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// Record applies one signed delta as its own atomic unit.
func (s *LedgerService) Record(ref domain.AccountRef, amount int64, kind string, meta map[string]interface{}) (*models.Transaction, error) {
	var entry *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = s.recordIn(tx, ref, amount, kind, meta, recordOpts{})
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// transferIn debits from and credits to as one unit inside the caller's
// transaction. The debit's guard fires before anything is written, so an
// underflow leaves both sides untouched. capTo of zero means uncapped.
func (s *LedgerService) transferIn(tx *gorm.DB, from, to domain.AccountRef, amount int64, kindFrom, kindTo string, meta map[string]interface{}, capTo int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	if _, err := s.recordIn(tx, from, -amount, kindFrom, meta, recordOpts{}); err != nil {
		return err
	}
	_, err := s.recordIn(tx, to, amount, kindTo, meta, recordOpts{Cap: capTo})
	return err
}

// Transfer performs a debit-then-credit as one atomic unit.
func (s *LedgerService) Transfer(from, to domain.AccountRef, amount int64, kindFrom, kindTo string, meta map[string]interface{}) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.transferIn(tx, from, to, amount, kindFrom, kindTo, meta, 0)
	})
}

// Deposit moves amount from the user's wallet into their bank, enforcing
// the community bank cap on the receiving side.
func (s *LedgerService) Deposit(communityID, userID uint, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	cfg, err := s.cfg.Get(communityID)
	if err != nil {
		return err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)
		w, err := accounts.GetOrCreateWallet(communityID, userID, cfg.StartBalance)
		if err != nil {
			return err
		}
		b, err := accounts.GetOrCreateBank(communityID, userID)
		if err != nil {
			return err
		}
		meta := map[string]interface{}{"user_id": userID}
		return s.transferIn(tx, domain.WalletRef(w.ID), domain.BankRef(b.ID), amount, domain.TxKindDeposit, domain.TxKindDeposit, meta, cfg.BankCap)
	})
	if err != nil {
		return err
	}
	s.audit.Emit(newAuditEvent("ledger.deposit", communityID, userID, amount, nil))
	return nil
}

// Withdraw moves amount from the user's bank back into their wallet,
// enforcing the community wallet cap.
func (s *LedgerService) Withdraw(communityID, userID uint, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	cfg, err := s.cfg.Get(communityID)
	if err != nil {
		return err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)
		b, err := accounts.GetBank(communityID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrInsufficientFunds
			}
			return err
		}
		w, err := accounts.GetOrCreateWallet(communityID, userID, cfg.StartBalance)
		if err != nil {
			return err
		}
		meta := map[string]interface{}{"user_id": userID}
		return s.transferIn(tx, domain.BankRef(b.ID), domain.WalletRef(w.ID), amount, domain.TxKindWithdraw, domain.TxKindWithdraw, meta, cfg.WalletCap)
	})
	if err != nil {
		return err
	}
	s.audit.Emit(newAuditEvent("ledger.withdraw", communityID, userID, amount, nil))
	return nil
}

// Balances returns the user's wallet and bank, creating the wallet with the
// community's starting balance on first reference.
func (s *LedgerService) Balances(communityID, userID uint) (*models.Wallet, *models.Bank, error) {
	cfg, err := s.cfg.Get(communityID)
	if err != nil {
		return nil, nil, err
	}
	var (
		w *models.Wallet
		b *models.Bank
	)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)
		var err error
		if w, err = accounts.GetOrCreateWallet(communityID, userID, cfg.StartBalance); err != nil {
			return err
		}
		b, err = accounts.GetOrCreateBank(communityID, userID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return w, b, nil
}

// EntriesFor returns the most recent ledger entries for an account, newest
// first.
func (s *LedgerService) EntriesFor(ref domain.AccountRef, limit int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var entries []models.Transaction
	err := s.db.
		Where("account_kind = ? AND account_id = ?", ref.Kind, ref.ID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// SumFor totals every entry for an account. Equal to the account's balance
// at all times; exposed for audits and exercised heavily by tests.
func (s *LedgerService) SumFor(ref domain.AccountRef) (int64, error) {
	var sum *int64
	err := s.db.Model(&models.Transaction{}).
		Where("account_kind = ? AND account_id = ?", ref.Kind, ref.ID).
		Select("SUM(amount)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}
