package models

import (
	"time"
)

// CreditTier is one row of a community's loan tier table: the applicable
// tier for a score is the highest-MinScore row the score still qualifies
// for. Communities without stored tiers fall back to the built-in table in
// internal/credit.
type CreditTier struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	CommunityID      uint      `gorm:"not null;index" json:"community_id"`
	MinScore         int       `gorm:"not null" json:"min_score"`
	MaxLoanPrincipal int64     `gorm:"not null" json:"max_loan_principal"`
	MaxTermDays      int       `gorm:"not null" json:"max_term_days"`
	CreatedAt        time.Time `json:"created_at"`
}

func (CreditTier) TableName() string {
	return "credit_tiers"
}
