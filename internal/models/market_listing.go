package models

import (
	"time"
)

// MarketListing holds goods in escrow: the quantity is removed from the
// seller's custody when the listing is created and returned (cancel) or
// handed to the buyer (purchase) exactly once.
type MarketListing struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CommunityID uint      `gorm:"not null;index" json:"community_id"`
	SellerID    uint      `gorm:"not null;index" json:"seller_id"`
	GoodsRef    string    `gorm:"size:64;not null" json:"goods_ref"`
	Quantity    int64     `gorm:"not null" json:"quantity"`
	TotalPrice  int64     `gorm:"not null" json:"total_price"`
	CreatedAt   time.Time `json:"created_at"`
}

func (MarketListing) TableName() string {
	return "market_listings"
}
