package models

import (
	"time"
)

type Loan struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	CommunityID        uint      `gorm:"not null;index" json:"community_id"`
	UserID             uint      `gorm:"not null;index" json:"user_id"`
	Principal          int64     `gorm:"not null" json:"principal"`
	TotalRepaymentOwed int64     `gorm:"not null" json:"total_repayment_owed"`
	InterestRatePct    int64     `gorm:"not null" json:"interest_rate_pct"`
	DueAt              time.Time `gorm:"not null;index" json:"due_at"`
	Status             string    `gorm:"size:10;not null;index" json:"status"` // ACTIVE | PAID
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Loan) TableName() string {
	return "loans"
}
