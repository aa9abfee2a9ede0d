package models

import (
	"time"
)

// User carries the per-user credit profile. Platform identity (Discord ID,
// display name, ...) is resolved by the caller before it reaches this core;
// here a user is just the numeric ID every account hangs off.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreditScore  int       `gorm:"not null;default:500" json:"credit_score"`
	IsLoanBanned bool      `gorm:"not null;default:false" json:"is_loan_banned"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
