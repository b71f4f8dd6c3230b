package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/accswap/accswap-backend/pkg/enums"
)

// Listing is a social-media account offered for sale.
// AccountCredential is AES-GCM ciphertext and never leaves the database
// layer in serialized form.
type Listing struct {
	ID                uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID          uuid.UUID           `gorm:"type:uuid;column:seller_id;not null;index"`
	Platform          string              `gorm:"column:platform;not null"`
	Handle            string              `gorm:"column:handle;not null"`
	Description       string              `gorm:"column:description;not null;default:''"`
	FollowerCount     int                 `gorm:"column:follower_count;not null;default:0"`
	Price             decimal.Decimal     `gorm:"column:price;type:numeric(10,2);not null"`
	Status            enums.ListingStatus `gorm:"column:status;not null;default:available;index"`
	Verified          bool                `gorm:"column:verified;not null;default:false"`
	AccountCredential []byte              `gorm:"column:account_credential"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
