package profiles

import (
	"time"

	"github.com/google/uuid"

	"github.com/accswap/accswap-backend/pkg/db/models"
)

// ProfileDTO is the transport shape for a user's seller profile.
type ProfileDTO struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	PhoneNumber      *string   `json:"phone_number,omitempty"`
	PhoneVerified    bool      `json:"phone_verified"`
	PayoutVPA        *string   `json:"payout_vpa,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UpdateProfileDTO carries the owner-editable fields.
type UpdateProfileDTO struct {
	PhoneNumber *string
	PayoutVPA   *string
}

func FromModel(p *models.Profile) *ProfileDTO {
	if p == nil {
		return nil
	}

	return &ProfileDTO{
		ID:               p.ID,
		UserID:           p.UserID,
		TwoFactorEnabled: p.TwoFactorEnabled,
		PhoneNumber:      p.PhoneNumber,
		PhoneVerified:    p.PhoneVerified,
		PayoutVPA:        p.PayoutVPA,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
