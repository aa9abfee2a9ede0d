package models

import (
	"time"
)

// Bank is the custodial balance used for loans, investments and larger
// holdings. Distinct ledger from the Wallet; created on first deposit,
// loan or investment. The overdue-loan enforcer is the only writer allowed
// to drive it negative.
type Bank struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CommunityID uint      `gorm:"not null;uniqueIndex:idx_banks_community_user" json:"community_id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_banks_community_user" json:"user_id"`
	Balance     int64     `gorm:"not null;default:0" json:"balance"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Bank) TableName() string {
	return "banks"
}
