package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accswap/accswap-backend/pkg/db/models"
	pkgerrors "github.com/accswap/accswap-backend/pkg/errors"
)

// Service defines profile operations.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	Update(ctx context.Context, userID uuid.UUID, dto UpdateProfileDTO) (*ProfileDTO, error)
	VerifyPhone(ctx context.Context, userID uuid.UUID) error
}

type repository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, dto UpdateProfileDTO) error
	SetPhoneVerified(ctx context.Context, userID uuid.UUID, verified bool) error
}

type service struct {
	repo repository
}

// NewService builds a profiles service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profiles repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(profile), nil
}

// Update changes the contact fields. A phone change resets its verified
// flag in the repository.
func (s *service) Update(ctx context.Context, userID uuid.UUID, dto UpdateProfileDTO) (*ProfileDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := s.repo.Update(ctx, userID, dto); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return s.Get(ctx, userID)
}

func (s *service) VerifyPhone(ctx context.Context, userID uuid.UUID) error {
	profile, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if profile.PhoneNumber == nil || *profile.PhoneNumber == "" {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "profile has no phone number")
	}
	if err := s.repo.SetPhoneVerified(ctx, userID, true); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify phone")
	}
	return nil
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return profile, nil
}
