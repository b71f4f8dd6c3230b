package listings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accswap/accswap-backend/pkg/db/models"
	"github.com/accswap/accswap-backend/pkg/enums"
	"github.com/accswap/accswap-backend/pkg/pagination"
)

// Repository defines persistence operations for listings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	ListByStatus(ctx context.Context, status enums.ListingStatus, params pagination.Params) ([]models.Listing, string, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]models.Listing, string, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.ListingStatus) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
