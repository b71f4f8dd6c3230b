package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accswap/accswap-backend/pkg/db/models"
	"github.com/accswap/accswap-backend/pkg/enums"
	pkgerrors "github.com/accswap/accswap-backend/pkg/errors"
	"github.com/accswap/accswap-backend/pkg/pagination"
)

// Service defines listing operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, dto CreateListingDTO) (*ListingDTO, error)
	ListAvailable(ctx context.Context, params pagination.Params) (*ListingList, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*ListingList, error)
	Get(ctx context.Context, id uuid.UUID) (*ListingDTO, error)
	Update(ctx context.Context, actorID, id uuid.UUID, dto UpdateListingDTO) (*ListingDTO, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
	Verify(ctx context.Context, id uuid.UUID) error
}

type profileGetter interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

type credentialSealer interface {
	Encrypt(plaintext string) ([]byte, error)
}

type service struct {
	repo     Repository
	profiles profileGetter
	cipher   credentialSealer
}

// ServiceParams bundles the dependencies for the listings service.
type ServiceParams struct {
	Repo     Repository
	Profiles profileGetter
	Cipher   credentialSealer
}

// NewService builds a listings service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.Profiles == nil {
		return nil, fmt.Errorf("profiles repository required")
	}
	if params.Cipher == nil {
		return nil, fmt.Errorf("credential cipher required")
	}
	return &service{
		repo:     params.Repo,
		profiles: params.Profiles,
		cipher:   params.Cipher,
	}, nil
}

func (s *service) Create(ctx context.Context, dto CreateListingDTO) (*ListingDTO, error) {
	if dto.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(dto.Platform) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "platform is required")
	}
	if strings.TrimSpace(dto.Handle) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "handle is required")
	}
	if !dto.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if strings.TrimSpace(dto.Credential) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account credential is required")
	}

	sealed, err := s.cipher.Encrypt(dto.Credential)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seal credential")
	}

	listing := &models.Listing{
		ID:                uuid.New(),
		SellerID:          dto.SellerID,
		Platform:          strings.TrimSpace(dto.Platform),
		Handle:            strings.TrimSpace(dto.Handle),
		Description:       dto.Description,
		FollowerCount:     dto.FollowerCount,
		Price:             dto.Price,
		Status:            enums.ListingStatusAvailable,
		AccountCredential: sealed,
	}

	created, err := s.repo.Create(ctx, listing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
	}
	return FromModel(created), nil
}

func (s *service) ListAvailable(ctx context.Context, params pagination.Params) (*ListingList, error) {
	rows, next, err := s.repo.ListByStatus(ctx, enums.ListingStatusAvailable, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listings")
	}
	return s.buildList(rows, next), nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*ListingList, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, next, err := s.repo.ListBySeller(ctx, sellerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller listings")
	}
	return s.buildList(rows, next), nil
}

// Get returns the listing with its derived trust score.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*ListingDTO, error) {
	listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := FromModel(listing)

	profile, err := s.profiles.FindByUserID(ctx, listing.SellerID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller profile")
	}
	score := TrustScore(profile, listing)
	dto.TrustScore = &score

	return dto, nil
}

func (s *service) Update(ctx context.Context, actorID, id uuid.UUID, dto UpdateListingDTO) (*ListingDTO, error) {
	listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing does not belong to seller")
	}
	if listing.Status != enums.ListingStatusAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing cannot be edited in current state")
	}

	updates := map[string]any{}
	if dto.Description != nil {
		updates["description"] = *dto.Description
		listing.Description = *dto.Description
	}
	if dto.FollowerCount != nil {
		if *dto.FollowerCount < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "follower count cannot be negative")
		}
		updates["follower_count"] = *dto.FollowerCount
		listing.FollowerCount = *dto.FollowerCount
	}
	if dto.Price != nil {
		if !dto.Price.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		updates["price"] = *dto.Price
		listing.Price = *dto.Price
	}
	if len(updates) == 0 {
		return FromModel(listing), nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing")
	}
	return FromModel(listing), nil
}

func (s *service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	listing, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if listing.SellerID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "listing does not belong to seller")
	}
	if listing.Status != enums.ListingStatusAvailable {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "listing cannot be deleted in current state")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete listing")
	}
	return nil
}

// Verify marks a listing admin-verified.
func (s *service) Verify(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, map[string]any{"verified": true}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify listing")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return listing, nil
}

func (s *service) buildList(rows []models.Listing, next string) *ListingList {
	out := make([]ListingDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &ListingList{Listings: out, NextCursor: next}
}
