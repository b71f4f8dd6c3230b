package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/accswap/accswap-backend/pkg/enums"
)

// Transaction is the escrow ledger row for a purchase.
// DeliveryCredential is AES-GCM ciphertext staged by an admin; it is
// only decrypted for the buyer while status is delivery_pending.
type Transaction struct {
	ID                 uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ListingID          uuid.UUID               `gorm:"type:uuid;column:listing_id;not null;index"`
	BuyerID            uuid.UUID               `gorm:"type:uuid;column:buyer_id;not null;index"`
	SellerID           uuid.UUID               `gorm:"type:uuid;column:seller_id;not null;index"`
	Amount             decimal.Decimal         `gorm:"column:amount;type:numeric(10,2);not null"`
	BrokerageFee       decimal.Decimal         `gorm:"column:brokerage_fee;type:numeric(10,2);not null"`
	Status             enums.TransactionStatus `gorm:"column:status;not null;default:pending;index"`
	GatewayOrderID     string                  `gorm:"column:gateway_order_id;not null;index"`
	DeliveryCredential []byte                  `gorm:"column:delivery_credential"`
	CreatedAt          time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
