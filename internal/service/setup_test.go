package service_test

import (
	"testing"

	"bursary/internal/database"
	"bursary/internal/domain"
	"bursary/internal/models"
	"bursary/internal/repository"
	"bursary/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// env wires the full service stack over an in-memory database. A single
// connection keeps concurrent transactions serialized the way the
// production store serializes them.
type env struct {
	db          *gorm.DB
	accounts    *repository.AccountRepository
	users       *repository.UserRepository
	config      *service.ConfigStore
	ledger      *service.LedgerService
	loans       *service.LoanService
	investments *service.InvestmentService
	exchange    *service.ExchangeService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	accounts := repository.NewAccountRepository(db)
	users := repository.NewUserRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	investmentRepo := repository.NewInvestmentRepository(db)
	listingRepo := repository.NewListingRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	configRepo := repository.NewConfigRepository(db)

	cfgStore := service.NewConfigStore(configRepo)
	ledger := service.NewLedgerService(db, accounts, cfgStore, service.NopSink{})
	return &env{
		db:          db,
		accounts:    accounts,
		users:       users,
		config:      cfgStore,
		ledger:      ledger,
		loans:       service.NewLoanService(db, accounts, users, loanRepo, ledger, cfgStore, service.NopSink{}),
		investments: service.NewInvestmentService(db, accounts, investmentRepo, ledger, cfgStore, service.NopSink{}),
		exchange:    service.NewExchangeService(db, accounts, listingRepo, inventoryRepo, ledger, cfgStore, service.NopSink{}),
	}
}

// requireConserved asserts the core conservation invariant: an account's
// balance equals the sum of its ledger entries.
func (e *env) requireConserved(t *testing.T, ref domain.AccountRef) {
	t.Helper()
	sum, err := e.ledger.SumFor(ref)
	require.NoError(t, err)
	balance, err := e.accounts.Balance(ref)
	require.NoError(t, err)
	require.Equal(t, balance, sum, "balance must equal the sum of ledger entries for %s %d", ref.Kind, ref.ID)
}

func (e *env) walletRef(t *testing.T, communityID, userID uint) domain.AccountRef {
	t.Helper()
	w, err := e.accounts.GetWallet(communityID, userID)
	require.NoError(t, err)
	return domain.WalletRef(w.ID)
}

func (e *env) bankRef(t *testing.T, communityID, userID uint) domain.AccountRef {
	t.Helper()
	b, err := e.accounts.GetBank(communityID, userID)
	require.NoError(t, err)
	return domain.BankRef(b.ID)
}

func (e *env) bankBalance(t *testing.T, communityID, userID uint) int64 {
	t.Helper()
	b, err := e.accounts.GetBank(communityID, userID)
	require.NoError(t, err)
	return b.Balance
}

func (e *env) walletBalance(t *testing.T, communityID, userID uint) int64 {
	t.Helper()
	w, err := e.accounts.GetWallet(communityID, userID)
	require.NoError(t, err)
	return w.Balance
}

// storeConfig persists a community config derived from the defaults.
func (e *env) storeConfig(t *testing.T, communityID uint, mutate func(*models.CommunityConfig)) {
	t.Helper()
	cfg := models.DefaultCommunityConfig(communityID)
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, e.config.Update(cfg))
}
