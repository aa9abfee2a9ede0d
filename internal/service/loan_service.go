package service

import (
	"errors"
	"log"
	"time"

	"bursary/internal/credit"
	"bursary/internal/domain"
	"bursary/internal/models"
	"bursary/internal/repository"

	"gorm.io/gorm"
)

// LoanService issues credit-scored loans, applies repayments FIFO across a
// user's active loans, and runs the scheduled overdue enforcement. Every
// interactive path is all-or-nothing; the sweep is best-effort per loan.
type LoanService struct {
	db       *gorm.DB
	accounts *repository.AccountRepository
	users    *repository.UserRepository
	loans    *repository.LoanRepository
	ledger   *LedgerService
	cfg      *ConfigStore
	audit    AuditSink
}

func NewLoanService(db *gorm.DB, accounts *repository.AccountRepository, users *repository.UserRepository, loans *repository.LoanRepository, ledger *LedgerService, cfg *ConfigStore, audit AuditSink) *LoanService {
	if audit == nil {
		audit = NopSink{}
	}
	return &LoanService{db: db, accounts: accounts, users: users, loans: loans, ledger: ledger, cfg: cfg, audit: audit}
}

// Eligibility returns the caller's current score and the tier it qualifies
// for under the community's table. Same computation issuance uses.
func (s *LoanService) Eligibility(communityID, userID uint) (int, models.CreditTier, error) {
	u, err := s.users.GetOrCreate(userID, domain.DefaultStartScore)
	if err != nil {
		return 0, models.CreditTier{}, err
	}
	tiers, err := s.cfg.Tiers(communityID)
	if err != nil {
		return 0, models.CreditTier{}, err
	}
	return u.CreditScore, credit.TierFor(u.CreditScore, tiers), nil
}

// Apply issues a loan: tier check, interest, disbursal to the bank, loan
// row and ledger entry, all in one atomic unit.
func (s *LoanService) Apply(communityID, userID uint, principal int64) (*models.Loan, error) {
	if principal <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	cfg, err := s.cfg.Get(communityID)
	if err != nil {
		return nil, err
	}
	tiers, err := s.cfg.Tiers(communityID)
	if err != nil {
		return nil, err
	}

	var loan *models.Loan
	err = s.db.Transaction(func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		loans := s.loans.WithTx(tx)
		accounts := s.accounts.WithTx(tx)

		u, err := users.GetOrCreate(userID, domain.DefaultStartScore)
		if err != nil {
			return err
		}
		if u.IsLoanBanned {
			return domain.ErrLoanBanned
		}
		active, err := loans.CountActive(communityID, userID)
		if err != nil {
			return err
		}
		if active >= int64(cfg.MaxActiveLoans) {
			return domain.ErrMaxActiveLoans
		}
		tier := credit.TierFor(u.CreditScore, tiers)
		if principal > tier.MaxLoanPrincipal {
			return domain.ErrCreditLimitExceeded
		}

		interest := credit.Interest(principal, cfg.LoanInterestPct)
		loan = &models.Loan{
			CommunityID:        communityID,
			UserID:             userID,
			Principal:          principal,
			TotalRepaymentOwed: principal + interest,
			InterestRatePct:    cfg.LoanInterestPct,
			DueAt:              time.Now().Add(time.Duration(tier.MaxTermDays) * 24 * time.Hour),
			Status:             domain.LoanStatusActive,
		}
		if err := loans.Create(loan); err != nil {
			return err
		}
		bank, err := accounts.GetOrCreateBank(communityID, userID)
		if err != nil {
			return err
		}
		_, err = s.ledger.recordIn(tx, domain.BankRef(bank.ID), principal, domain.TxKindLoanDisbursal,
			map[string]interface{}{"loan_id": loan.ID}, recordOpts{})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit.Emit(newAuditEvent("loan.apply", communityID, userID, principal,
		map[string]interface{}{"loan_id": loan.ID, "owed": loan.TotalRepaymentOwed}))
	return loan, nil
}

// RepayResult reports what one repayment actually did.
type RepayResult struct {
	LoanID    uint  `json:"loan_id"`
	Applied   int64 `json:"applied"`
	Remaining int64 `json:"remaining"`
	Settled   bool  `json:"settled"`
	NewScore  int   `json:"new_score,omitempty"`
}

// Repay applies amount against the user's oldest active loan. Excess beyond
// that loan's remaining debt is capped, not rolled into the next loan; this
// mirrors the original system and is intentional, pending a product call on
// rollover. Settling on time rewards the credit score, settling late
// penalizes it, both clamped to the community bounds.
func (s *LoanService) Repay(communityID, userID uint, amount int64) (*RepayResult, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	cfg, err := s.cfg.Get(communityID)
	if err != nil {
		return nil, err
	}

	var result RepayResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		loans := s.loans.WithTx(tx)
		accounts := s.accounts.WithTx(tx)

		loan, err := loans.OldestActive(communityID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNoActiveLoan
			}
			return err
		}
		bank, err := accounts.GetBank(communityID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrInsufficientFunds
			}
			return err
		}
		if bank.Balance < amount {
			return domain.ErrInsufficientFunds
		}

		applied := amount
		if applied > loan.TotalRepaymentOwed {
			applied = loan.TotalRepaymentOwed
		}
		if _, err := s.ledger.recordIn(tx, domain.BankRef(bank.ID), -applied, domain.TxKindLoanRepayment,
			map[string]interface{}{"loan_id": loan.ID}, recordOpts{}); err != nil {
			return err
		}
		remaining, settled, err := loans.ReduceOwed(loan.ID, applied)
		if err != nil {
			return err
		}
		result = RepayResult{LoanID: loan.ID, Applied: applied, Remaining: remaining, Settled: settled}
		if settled {
			delta := cfg.CreditReward
			if time.Now().After(loan.DueAt) {
				delta = -cfg.CreditPenalty
			}
			score, err := s.users.WithTx(tx).AdjustScore(userID, delta, cfg.MinCreditScore, cfg.MaxCreditScore)
			if err != nil {
				return err
			}
			result.NewScore = score
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Emit(newAuditEvent("loan.repay", communityID, userID, result.Applied,
		map[string]interface{}{"loan_id": result.LoanID, "settled": result.Settled}))
	return &result, nil
}

// ListLoans returns the user's loans, oldest first.
func (s *LoanService) ListLoans(communityID, userID uint) ([]models.Loan, error) {
	return s.loans.ListByUser(communityID, userID)
}

// SetLoanBanned flips the user's loan ban flag (admin action).
func (s *LoanService) SetLoanBanned(userID uint, banned bool) error {
	if _, err := s.users.GetOrCreate(userID, domain.DefaultStartScore); err != nil {
		return err
	}
	return s.users.SetLoanBanned(userID, banned)
}

// EnforceOverdue force-settles every loan past due: the bank is debited the
// full outstanding amount even if it goes negative (this is the one
// sanctioned overdraft, a collections action) and the late penalty lands on
// the credit score. Each loan settles in its own atomic unit; one bad row
// is logged and skipped, never allowed to stall the sweep. Loans whose
// owning user no longer resolves are deleted so the sweep always makes
// progress.
func (s *LoanService) EnforceOverdue(now time.Time) (settled, skipped int) {
	overdue, err := s.loans.ActiveOverdue(now)
	if err != nil {
		log.Printf("[sweep] overdue loan query failed: %v", err)
		return 0, 0
	}
	for _, loan := range overdue {
		if err := s.enforceOne(loan); err != nil {
			if errors.Is(err, domain.ErrCorrupted) {
				log.Printf("[sweep] deleted corrupted loan %d (user %d unresolvable)", loan.ID, loan.UserID)
			} else {
				log.Printf("[sweep] loan %d enforcement failed: %v", loan.ID, err)
			}
			skipped++
			continue
		}
		settled++
		s.audit.Emit(newAuditEvent("loan.enforce", loan.CommunityID, loan.UserID, loan.TotalRepaymentOwed,
			map[string]interface{}{"loan_id": loan.ID}))
	}
	if settled > 0 || skipped > 0 {
		log.Printf("[sweep] overdue loans: settled=%d skipped=%d", settled, skipped)
	}
	return settled, skipped
}

func (s *LoanService) enforceOne(loan models.Loan) error {
	cfg, err := s.cfg.Get(loan.CommunityID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		loans := s.loans.WithTx(tx)
		users := s.users.WithTx(tx)
		accounts := s.accounts.WithTx(tx)

		if _, err := users.GetByID(loan.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if derr := loans.Delete(loan.ID); derr != nil {
					return derr
				}
				return domain.ErrCorrupted
			}
			return err
		}
		// Claim the loan first so a concurrent repayment or a re-entered
		// sweep cannot double-debit. The claim is a current read that
		// locks the row, so the read below sees the debt as repayments
		// left it, not this transaction's snapshot.
		claimed, err := loans.MarkPaidIfActive(loan.ID)
		if err != nil {
			return err
		}
		if !claimed {
			return nil
		}
		fresh, err := loans.GetByID(loan.ID)
		if err != nil {
			return err
		}
		if fresh.TotalRepaymentOwed == 0 {
			return nil
		}
		bank, err := accounts.GetOrCreateBank(loan.CommunityID, loan.UserID)
		if err != nil {
			return err
		}
		if _, err := s.ledger.recordIn(tx, domain.BankRef(bank.ID), -fresh.TotalRepaymentOwed,
			domain.TxKindLoanEnforcement, map[string]interface{}{"loan_id": loan.ID},
			recordOpts{AllowNegative: true}); err != nil {
			return err
		}
		if err := loans.ClearOwed(loan.ID); err != nil {
			return err
		}
		_, err = users.AdjustScore(loan.UserID, -cfg.CreditPenalty, cfg.MinCreditScore, cfg.MaxCreditScore)
		return err
	})
}
