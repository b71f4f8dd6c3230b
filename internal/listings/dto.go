package listings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/accswap/accswap-backend/pkg/db/models"
	"github.com/accswap/accswap-backend/pkg/enums"
)

// ListingDTO is the transport shape for a listing. The stored account
// credential is intentionally absent.
type ListingDTO struct {
	ID            uuid.UUID           `json:"id"`
	SellerID      uuid.UUID           `json:"seller_id"`
	Platform      string              `json:"platform"`
	Handle        string              `json:"handle"`
	Description   string              `json:"description"`
	FollowerCount int                 `json:"follower_count"`
	Price         decimal.Decimal     `json:"price"`
	Status        enums.ListingStatus `json:"status"`
	Verified      bool                `json:"verified"`
	TrustScore    *int                `json:"trust_score,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// CreateListingDTO carries the seller-provided fields for a new listing.
type CreateListingDTO struct {
	SellerID      uuid.UUID
	Platform      string
	Handle        string
	Description   string
	FollowerCount int
	Price         decimal.Decimal
	Credential    string
}

// UpdateListingDTO carries owner-editable fields. Nil means unchanged.
type UpdateListingDTO struct {
	Description   *string
	FollowerCount *int
	Price         *decimal.Decimal
}

// ListingList wraps a page of listings plus the next page cursor.
type ListingList struct {
	Listings   []ListingDTO `json:"listings"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func FromModel(l *models.Listing) *ListingDTO {
	if l == nil {
		return nil
	}

	return &ListingDTO{
		ID:            l.ID,
		SellerID:      l.SellerID,
		Platform:      l.Platform,
		Handle:        l.Handle,
		Description:   l.Description,
		FollowerCount: l.FollowerCount,
		Price:         l.Price,
		Status:        l.Status,
		Verified:      l.Verified,
		CreatedAt:     l.CreatedAt,
	}
}
