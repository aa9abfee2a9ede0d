package repository

import (
	"errors"

	"bursary/internal/domain"
	"bursary/internal/models"

	"gorm.io/gorm"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) WithTx(tx *gorm.DB) *ListingRepository {
	return &ListingRepository{db: tx}
}

func (r *ListingRepository) Create(l *models.MarketListing) error {
	return r.db.Create(l).Error
}

func (r *ListingRepository) GetByID(id uint) (*models.MarketListing, error) {
	var l models.MarketListing
	if err := r.db.First(&l, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepository) ListByCommunity(communityID uint) ([]models.MarketListing, error) {
	var list []models.MarketListing
	err := r.db.Where("community_id = ?", communityID).Order("created_at ASC").Find(&list).Error
	return list, err
}

// DeleteIfExists removes the listing, reporting whether this call was the
// one that removed it. Purchase and cancel race through here: exactly one
// settles the listing.
func (r *ListingRepository) DeleteIfExists(id uint) (bool, error) {
	res := r.db.Delete(&models.MarketListing{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
