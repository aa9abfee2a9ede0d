package repository

import (
	"errors"

	"bursary/internal/domain"
	"bursary/internal/models"

	"gorm.io/gorm"
)

// InventoryRepository is the quantity-tracked goods custody the exchange
// settles against. It lives in the same store as the money rows so a trade
// can move goods and funds in one atomic unit.
type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) WithTx(tx *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: tx}
}

func (r *InventoryRepository) Quantity(communityID, userID uint, goodsRef string) (int64, error) {
	var item models.InventoryItem
	err := r.db.
		Where("community_id = ? AND user_id = ? AND goods_ref = ?", communityID, userID, goodsRef).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return item.Quantity, nil
}

func (r *InventoryRepository) ListByUser(communityID, userID uint) ([]models.InventoryItem, error) {
	var list []models.InventoryItem
	err := r.db.
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Order("goods_ref ASC").
		Find(&list).Error
	return list, err
}

// Add credits qty of goodsRef to the owner, creating the row on first use.
func (r *InventoryRepository) Add(communityID, userID uint, goodsRef string, qty int64) error {
	var item models.InventoryItem
	err := r.db.
		Where("community_id = ? AND user_id = ? AND goods_ref = ?", communityID, userID, goodsRef).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&models.InventoryItem{
			CommunityID: communityID,
			UserID:      userID,
			GoodsRef:    goodsRef,
			Quantity:    qty,
		}).Error
	}
	if err != nil {
		return err
	}
	return r.db.Model(&item).Update("quantity", gorm.Expr("quantity + ?", qty)).Error
}

// Remove debits qty of goodsRef, failing with ErrInsufficientGoods without
// touching the row if the holding is too small. The guard rides inside the
// UPDATE, same discipline as balances.
func (r *InventoryRepository) Remove(communityID, userID uint, goodsRef string, qty int64) error {
	res := r.db.Model(&models.InventoryItem{}).
		Where("community_id = ? AND user_id = ? AND goods_ref = ? AND quantity >= ?",
			communityID, userID, goodsRef, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInsufficientGoods
	}
	// Drop emptied rows so custody listings stay clean.
	return r.db.
		Where("community_id = ? AND user_id = ? AND goods_ref = ? AND quantity = 0",
			communityID, userID, goodsRef).
		Delete(&models.InventoryItem{}).Error
}
