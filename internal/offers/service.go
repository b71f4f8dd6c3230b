package offers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accswap/accswap-backend/pkg/db/models"
	"github.com/accswap/accswap-backend/pkg/enums"
	pkgerrors "github.com/accswap/accswap-backend/pkg/errors"
)

// Decision names the seller's verdict on a pending offer.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// ParseDecision converts raw input into a Decision.
func ParseDecision(value string) (Decision, error) {
	switch Decision(value) {
	case DecisionAccept:
		return DecisionAccept, nil
	case DecisionReject:
		return DecisionReject, nil
	}
	return "", fmt.Errorf("invalid offer decision %q", value)
}

// Service defines offer operations.
type Service interface {
	Create(ctx context.Context, dto CreateOfferDTO) (*OfferDTO, error)
	Inbox(ctx context.Context, userID uuid.UUID) (*OfferInbox, error)
	Decide(ctx context.Context, actorID, offerID uuid.UUID, decision Decision) (*OfferDTO, error)
}

type listingGetter interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

type service struct {
	repo     Repository
	listings listingGetter
}

// ServiceParams bundles the dependencies for the offers service.
type ServiceParams struct {
	Repo     Repository
	Listings listingGetter
}

// NewService builds an offers service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("offers repository required")
	}
	if params.Listings == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	return &service{repo: params.Repo, listings: params.Listings}, nil
}

func (s *service) Create(ctx context.Context, dto CreateOfferDTO) (*OfferDTO, error) {
	if dto.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if dto.ListingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	if !dto.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer amount must be positive")
	}

	listing, err := s.loadListing(ctx, dto.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID == dto.BuyerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot offer on own listing")
	}
	if listing.Status != enums.ListingStatusAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing is not open to offers")
	}

	offer, err := s.repo.Create(ctx, &models.Offer{
		ID:        uuid.New(),
		ListingID: dto.ListingID,
		BuyerID:   dto.BuyerID,
		Amount:    dto.Amount,
		Status:    enums.OfferStatusPending,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create offer")
	}
	return FromModel(offer), nil
}

// Inbox returns the caller's offers in both directions, newest first.
func (s *service) Inbox(ctx context.Context, userID uuid.UUID) (*OfferInbox, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	made, err := s.repo.ListByBuyer(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list made offers")
	}
	received, err := s.repo.ListReceivedBySeller(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list received offers")
	}

	return &OfferInbox{
		Made:     fromModels(made),
		Received: fromModels(received),
	}, nil
}

// Decide resolves a pending offer. Acceptance records the verdict only; it
// never moves the listing or opens a transaction.
func (s *service) Decide(ctx context.Context, actorID, offerID uuid.UUID, decision Decision) (*OfferDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if offerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}

	target := enums.OfferStatusRejected
	if decision == DecisionAccept {
		target = enums.OfferStatusAccepted
	} else if decision != DecisionReject {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be accept or reject")
	}

	offer, err := s.repo.FindByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}

	listing, err := s.loadListing(ctx, offer.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "offer is not on your listing")
	}

	moved, err := s.repo.UpdateStatusIf(ctx, offerID, enums.OfferStatusPending, target)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update offer")
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer has already been decided")
	}

	offer.Status = target
	return FromModel(offer), nil
}

func (s *service) loadListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return listing, nil
}
