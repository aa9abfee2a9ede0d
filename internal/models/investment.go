package models

import (
	"time"
)

type Investment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CommunityID     uint      `gorm:"not null;index" json:"community_id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	Kind            string    `gorm:"size:4;not null" json:"kind"` // FD | RD
	Principal       int64     `gorm:"not null" json:"principal"`
	InterestRatePct int64     `gorm:"not null" json:"interest_rate_pct"`
	MaturesAt       time.Time `gorm:"not null;index" json:"matures_at"`
	Status          string    `gorm:"size:12;not null;index" json:"status"` // ACTIVE | COMPLETED
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Investment) TableName() string {
	return "investments"
}
