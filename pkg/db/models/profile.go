package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the seller-facing settings attached 1:1 to a user.
// It is created in the same transaction as its user; a user without a
// profile never exists.
type Profile struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID `gorm:"type:uuid;column:user_id;not null;uniqueIndex"`
	TwoFactorEnabled bool      `gorm:"column:two_factor_enabled;not null;default:false"`
	PhoneNumber      *string   `gorm:"column:phone_number"`
	PhoneVerified    bool      `gorm:"column:phone_verified;not null;default:false"`
	PayoutVPA        *string   `gorm:"column:payout_vpa"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
