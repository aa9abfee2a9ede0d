package models

import (
	"time"
)

// Wallet is the liquid, immediately spendable balance of a user within one
// community. Mutated only through the ledger; never deleted.
type Wallet struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CommunityID uint      `gorm:"not null;uniqueIndex:idx_wallets_community_user" json:"community_id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_wallets_community_user" json:"user_id"`
	Balance     int64     `gorm:"not null;default:0" json:"balance"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}
