package models

import (
	"time"
)

// InventoryItem is the quantity-tracked custody of one named good for one
// user within a community. Rows at quantity zero are deleted.
type InventoryItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CommunityID uint      `gorm:"not null;uniqueIndex:idx_inventory_owner_goods" json:"community_id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_inventory_owner_goods" json:"user_id"`
	GoodsRef    string    `gorm:"size:64;not null;uniqueIndex:idx_inventory_owner_goods" json:"goods_ref"`
	Quantity    int64     `gorm:"not null;default:0" json:"quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}
