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

// InvestmentService opens fixed and recurring deposits against the bank and
// settles them at maturity, interactively (one user's collect) or from the
// scheduled sweep.
type InvestmentService struct {
	db          *gorm.DB
	accounts    *repository.AccountRepository
	investments *repository.InvestmentRepository
	ledger      *LedgerService
	cfg         *ConfigStore
	audit       AuditSink
}

func NewInvestmentService(db *gorm.DB, accounts *repository.AccountRepository, investments *repository.InvestmentRepository, ledger *LedgerService, cfg *ConfigStore, audit AuditSink) *InvestmentService {
	if audit == nil {
		audit = NopSink{}
	}
	return &InvestmentService{db: db, accounts: accounts, investments: investments, ledger: ledger, cfg: cfg, audit: audit}
}

// Open debits the bank by principal and creates the investment, one atomic
// unit.
func (s *InvestmentService) Open(communityID, userID uint, kind string, principal int64, termDays int) (*models.Investment, error) {
	if principal <= 0 || termDays <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	cfg, err := s.cfg.Get(communityID)
	if err != nil {
		return nil, err
	}
	var rate int64
	switch kind {
	case domain.InvestmentKindFD:
		rate = cfg.FDInterestPct
	case domain.InvestmentKindRD:
		rate = cfg.RDInterestPct
	default:
		return nil, domain.ErrInvalidKind
	}

	var inv *models.Investment
	err = s.db.Transaction(func(tx *gorm.DB) error {
		bank, err := s.accounts.WithTx(tx).GetOrCreateBank(communityID, userID)
		if err != nil {
			return err
		}
		inv = &models.Investment{
			CommunityID:     communityID,
			UserID:          userID,
			Kind:            kind,
			Principal:       principal,
			InterestRatePct: rate,
			MaturesAt:       time.Now().Add(time.Duration(termDays) * 24 * time.Hour),
			Status:          domain.InvestmentStatusActive,
		}
		if err := s.investments.WithTx(tx).Create(inv); err != nil {
			return err
		}
		_, err = s.ledger.recordIn(tx, domain.BankRef(bank.ID), -principal, domain.TxKindInvestmentOpen,
			map[string]interface{}{"investment_id": inv.ID, "kind": kind, "term_days": termDays}, recordOpts{})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit.Emit(newAuditEvent("investment.open", communityID, userID, principal,
		map[string]interface{}{"investment_id": inv.ID, "kind": kind}))
	return inv, nil
}

// List returns the user's investments, oldest first.
func (s *InvestmentService) List(communityID, userID uint) ([]models.Investment, error) {
	return s.investments.ListByUser(communityID, userID)
}

// SweepMatured settles every ACTIVE investment at or past maturity, paying
// principal plus floor(principal*rate/100) into the bank. userID zero means
// the unscoped scheduled sweep; nonzero scopes it to one user's interactive
// collect. Each investment is its own atomic unit and the completion flip
// is conditioned on status, so an interrupted sweep re-runs without paying
// anything twice, and one bad row never blocks the rest.
func (s *InvestmentService) SweepMatured(now time.Time, communityID, userID uint) (paid []models.Investment, skipped int) {
	matured, err := s.investments.MaturedActive(now, communityID, userID)
	if err != nil {
		log.Printf("[sweep] matured investment query failed: %v", err)
		return nil, 0
	}
	for _, inv := range matured {
		if err := s.settleOne(inv); err != nil {
			if errors.Is(err, errAlreadySettled) {
				continue
			}
			log.Printf("[sweep] investment %d settlement failed: %v", inv.ID, err)
			skipped++
			continue
		}
		paid = append(paid, inv)
		s.audit.Emit(newAuditEvent("investment.mature", inv.CommunityID, inv.UserID,
			inv.Principal+credit.Interest(inv.Principal, inv.InterestRatePct),
			map[string]interface{}{"investment_id": inv.ID, "kind": inv.Kind}))
	}
	if len(paid) > 0 || skipped > 0 {
		log.Printf("[sweep] matured investments: paid=%d skipped=%d", len(paid), skipped)
	}
	return paid, skipped
}

var errAlreadySettled = errors.New("already settled")

func (s *InvestmentService) settleOne(inv models.Investment) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		won, err := s.investments.WithTx(tx).CompleteIfActive(inv.ID)
		if err != nil {
			return err
		}
		if !won {
			return errAlreadySettled
		}
		bank, err := s.accounts.WithTx(tx).GetOrCreateBank(inv.CommunityID, inv.UserID)
		if err != nil {
			return err
		}
		payout := inv.Principal + credit.Interest(inv.Principal, inv.InterestRatePct)
		_, err = s.ledger.recordIn(tx, domain.BankRef(bank.ID), payout, domain.TxKindInvestmentPayout,
			map[string]interface{}{"investment_id": inv.ID, "kind": inv.Kind},
			recordOpts{Earned: true})
		return err
	})
}
