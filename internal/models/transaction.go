package models

import (
	"time"
)

// Transaction is one immutable signed balance delta against a wallet or a
// bank row. The sum of all entries for an account always equals its current
// balance; every mutation writes exactly one entry in the same atomic unit.
type Transaction struct {
	ID          uint                   `gorm:"primaryKey" json:"id"`
	AccountKind string                 `gorm:"size:10;not null;index:idx_transactions_account" json:"account_kind"` // WALLET | BANK
	AccountID   uint                   `gorm:"not null;index:idx_transactions_account" json:"account_id"`
	Amount      int64                  `gorm:"not null" json:"amount"` // positive = credit, negative = debit
	Kind        string                 `gorm:"size:40;not null;index" json:"kind"`
	Meta        map[string]interface{} `gorm:"serializer:json" json:"meta,omitempty"`
	IsEarned    bool                   `gorm:"not null;default:false" json:"is_earned"`
	CreatedAt   time.Time              `json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
