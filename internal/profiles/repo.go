package profiles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accswap/accswap-backend/pkg/db/models"
)

// Repository exposes profile persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a profiles repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an empty profile for the given user.
func (r *Repository) Create(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile := &models.Profile{
		ID:     uuid.New(),
		UserID: userID,
	}
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// FindByUserID retrieves the profile belonging to a user.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update applies owner-editable fields. Changing the phone number resets
// its verification flag.
func (r *Repository) Update(ctx context.Context, userID uuid.UUID, dto UpdateProfileDTO) error {
	updates := map[string]any{}
	if dto.PhoneNumber != nil {
		updates["phone_number"] = *dto.PhoneNumber
		updates["phone_verified"] = false
	}
	if dto.PayoutVPA != nil {
		updates["payout_vpa"] = *dto.PayoutVPA
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
}

// SetPhoneVerified marks the stored phone number as verified.
func (r *Repository) SetPhoneVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("phone_verified", verified)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetTwoFactorEnabled flips the 2FA flag used by the trust score.
func (r *Repository) SetTwoFactorEnabled(ctx context.Context, userID uuid.UUID, enabled bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("two_factor_enabled", enabled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
