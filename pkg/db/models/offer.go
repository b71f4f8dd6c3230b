package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/accswap/accswap-backend/pkg/enums"
)

// Offer is a buyer's price proposal on a listing. Acceptance is advisory
// only; it never creates a transaction.
type Offer struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ListingID uuid.UUID         `gorm:"type:uuid;column:listing_id;not null;index"`
	BuyerID   uuid.UUID         `gorm:"type:uuid;column:buyer_id;not null;index"`
	Amount    decimal.Decimal   `gorm:"column:amount;type:numeric(10,2);not null"`
	Status    enums.OfferStatus `gorm:"column:status;not null;default:pending"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
