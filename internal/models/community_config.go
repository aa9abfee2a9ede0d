package models

import (
	"time"

	"bursary/internal/domain"
)

// CommunityConfig is the per-community rule table. Read far more often than
// written; the ConfigStore keeps a read-through cache over these rows.
type CommunityConfig struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CommunityID     uint      `gorm:"uniqueIndex;not null" json:"community_id"`
	StartBalance    int64     `gorm:"not null" json:"start_balance"`
	WalletCap       int64     `gorm:"not null" json:"wallet_cap"`
	BankCap         int64     `gorm:"not null" json:"bank_cap"`
	LoanInterestPct int64     `gorm:"not null" json:"loan_interest_pct"`
	FDInterestPct   int64     `gorm:"not null" json:"fd_interest_pct"`
	RDInterestPct   int64     `gorm:"not null" json:"rd_interest_pct"`
	MarketTaxPct    int64     `gorm:"not null" json:"market_tax_pct"`
	CreditReward    int       `gorm:"not null" json:"credit_reward"`
	CreditPenalty   int       `gorm:"not null" json:"credit_penalty"`
	MinCreditScore  int       `gorm:"not null" json:"min_credit_score"`
	MaxCreditScore  int       `gorm:"not null" json:"max_credit_score"`
	MaxActiveLoans  int       `gorm:"not null" json:"max_active_loans"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (CommunityConfig) TableName() string {
	return "community_configs"
}

// DefaultCommunityConfig returns the built-in rule set used until a
// community stores its own row.
func DefaultCommunityConfig(communityID uint) *CommunityConfig {
	return &CommunityConfig{
		CommunityID:     communityID,
		StartBalance:    domain.DefaultStartBalance,
		WalletCap:       domain.DefaultWalletCap,
		BankCap:         domain.DefaultBankCap,
		LoanInterestPct: domain.DefaultLoanInterestPct,
		FDInterestPct:   domain.DefaultFDInterestPct,
		RDInterestPct:   domain.DefaultRDInterestPct,
		MarketTaxPct:    domain.DefaultMarketTaxPct,
		CreditReward:    domain.DefaultCreditReward,
		CreditPenalty:   domain.DefaultCreditPenalty,
		MinCreditScore:  domain.DefaultMinCreditScore,
		MaxCreditScore:  domain.DefaultMaxCreditScore,
		MaxActiveLoans:  domain.DefaultMaxActiveLoans,
	}
}
