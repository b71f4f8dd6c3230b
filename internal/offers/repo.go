package offers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accswap/accswap-backend/pkg/db/models"
	"github.com/accswap/accswap-backend/pkg/enums"
)

// Repository defines persistence operations for offers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, offer *models.Offer) (*models.Offer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Offer, error)
	ListReceivedBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Offer, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.OfferStatus) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an offers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, offer *models.Offer) (*models.Offer, error) {
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&offer).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Offer, error) {
	var rows []models.Offer
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListReceivedBySeller returns offers made on the seller's listings.
func (r *repository) ListReceivedBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Offer, error) {
	var rows []models.Offer
	err := r.db.WithContext(ctx).
		Joins("JOIN listings ON listings.id = offers.listing_id").
		Where("listings.seller_id = ?", sellerID).
		Order("offers.created_at DESC").
		Find(&rows).Error
	return rows, err
}

// UpdateStatusIf flips the offer status only when the current status matches.
func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.OfferStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
