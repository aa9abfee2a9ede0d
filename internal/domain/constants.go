package domain

const (
	AccountKindWallet = "WALLET"
	AccountKindBank   = "BANK"
)

const (
	LoanStatusActive = "ACTIVE"
	LoanStatusPaid   = "PAID"
)

const (
	InvestmentKindFD = "FD"
	InvestmentKindRD = "RD"
)

const (
	InvestmentStatusActive    = "ACTIVE"
	InvestmentStatusCompleted = "COMPLETED"
)

// Ledger entry kinds. Open set: callers outside the core may tag entries
// with kinds not listed here, the ledger never branches on them.
const (
	TxKindDeposit          = "deposit"
	TxKindWithdraw         = "withdraw"
	TxKindTransferOut      = "transfer_out"
	TxKindTransferIn       = "transfer_in"
	TxKindBet              = "bet"
	TxKindLoanDisbursal    = "loan_disbursal"
	TxKindLoanRepayment    = "loan_repayment"
	TxKindLoanEnforcement  = "loan_enforcement"
	TxKindInvestmentOpen   = "investment_deposit"
	TxKindInvestmentPayout = "investment_maturity"
	TxKindMarketPurchase   = "market_purchase"
	TxKindMarketSale       = "market_sale"
)

const (
	RoleService = "SERVICE"
	RoleAdmin   = "ADMIN"
)

// Per-community config defaults, used when a community has no stored row.
const (
	DefaultStartBalance    = 1000
	DefaultWalletCap       = 1_000_000
	DefaultBankCap         = 10_000_000
	DefaultLoanInterestPct = 5
	DefaultFDInterestPct   = 8
	DefaultRDInterestPct   = 6
	DefaultMarketTaxPct    = 2
	DefaultCreditReward    = 30
	DefaultCreditPenalty   = 50
	DefaultMinCreditScore  = 0
	DefaultMaxCreditScore  = 2000
	DefaultStartScore      = 500
	DefaultMaxActiveLoans  = 1
)
