package offers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/accswap/accswap-backend/pkg/db/models"
	"github.com/accswap/accswap-backend/pkg/enums"
)

// OfferDTO is the transport shape for a price offer.
type OfferDTO struct {
	ID        uuid.UUID         `json:"id"`
	ListingID uuid.UUID         `json:"listing_id"`
	BuyerID   uuid.UUID         `json:"buyer_id"`
	Amount    decimal.Decimal   `json:"amount"`
	Status    enums.OfferStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// CreateOfferDTO carries the buyer-provided fields for a new offer.
type CreateOfferDTO struct {
	BuyerID   uuid.UUID
	ListingID uuid.UUID
	Amount    decimal.Decimal
}

// OfferInbox groups the caller's offers by direction.
type OfferInbox struct {
	Made     []OfferDTO `json:"made"`
	Received []OfferDTO `json:"received"`
}

func FromModel(o *models.Offer) *OfferDTO {
	if o == nil {
		return nil
	}

	return &OfferDTO{
		ID:        o.ID,
		ListingID: o.ListingID,
		BuyerID:   o.BuyerID,
		Amount:    o.Amount,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}
}

func fromModels(rows []models.Offer) []OfferDTO {
	out := make([]OfferDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
