package offers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/accswap/accswap-backend/pkg/db/models"
	"github.com/accswap/accswap-backend/pkg/enums"
	pkgerrors "github.com/accswap/accswap-backend/pkg/errors"
)

type stubOfferRepo struct {
	offer      *models.Offer
	created    *models.Offer
	made       []models.Offer
	received   []models.Offer
	moved      bool
	lastFrom   enums.OfferStatus
	lastTarget enums.OfferStatus
}

func (s *stubOfferRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOfferRepo) Create(ctx context.Context, offer *models.Offer) (*models.Offer, error) {
	s.created = offer
	return offer, nil
}

func (s *stubOfferRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	if s.offer == nil || s.offer.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.offer
	return &cp, nil
}

func (s *stubOfferRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Offer, error) {
	return s.made, nil
}

func (s *stubOfferRepo) ListReceivedBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Offer, error) {
	return s.received, nil
}

func (s *stubOfferRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.OfferStatus) (bool, error) {
	s.lastFrom = from
	s.lastTarget = to
	return s.moved, nil
}

type stubOfferListings struct {
	listing *models.Listing
}

func (s *stubOfferListings) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	if s.listing == nil || s.listing.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.listing
	return &cp, nil
}

func newOfferTestService(t *testing.T, repo *stubOfferRepo, listings *stubOfferListings) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, Listings: listings})
	if err != nil {
		t.Fatalf("unexpected error building service: %v", err)
	}
	return svc
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected coded error %s, got %v", code, err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s", code, typed.Code())
	}
}

func TestCreateOfferOnAvailableListing(t *testing.T) {
	listingID := uuid.New()
	buyerID := uuid.New()
	repo := &stubOfferRepo{}
	listings := &stubOfferListings{
		listing: &models.Listing{ID: listingID, SellerID: uuid.New(), Status: enums.ListingStatusAvailable},
	}
	svc := newOfferTestService(t, repo, listings)

	got, err := svc.Create(context.Background(), CreateOfferDTO{
		BuyerID:   buyerID,
		ListingID: listingID,
		Amount:    decimal.NewFromInt(400),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != enums.OfferStatusPending {
		t.Fatalf("expected pending offer, got %s", got.Status)
	}
	if repo.created == nil || repo.created.BuyerID != buyerID {
		t.Fatal("expected offer persisted with buyer id")
	}
}

func TestCreateOfferRejections(t *testing.T) {
	listingID := uuid.New()
	sellerID := uuid.New()

	t.Run("own listing", func(t *testing.T) {
		listings := &stubOfferListings{
			listing: &models.Listing{ID: listingID, SellerID: sellerID, Status: enums.ListingStatusAvailable},
		}
		svc := newOfferTestService(t, &stubOfferRepo{}, listings)
		_, err := svc.Create(context.Background(), CreateOfferDTO{
			BuyerID:   sellerID,
			ListingID: listingID,
			Amount:    decimal.NewFromInt(400),
		})
		requireCode(t, err, pkgerrors.CodeValidation)
	})

	t.Run("listing in escrow", func(t *testing.T) {
		listings := &stubOfferListings{
			listing: &models.Listing{ID: listingID, SellerID: sellerID, Status: enums.ListingStatusInEscrow},
		}
		svc := newOfferTestService(t, &stubOfferRepo{}, listings)
		_, err := svc.Create(context.Background(), CreateOfferDTO{
			BuyerID:   uuid.New(),
			ListingID: listingID,
			Amount:    decimal.NewFromInt(400),
		})
		requireCode(t, err, pkgerrors.CodeStateConflict)
	})

	t.Run("listing missing", func(t *testing.T) {
		svc := newOfferTestService(t, &stubOfferRepo{}, &stubOfferListings{})
		_, err := svc.Create(context.Background(), CreateOfferDTO{
			BuyerID:   uuid.New(),
			ListingID: uuid.New(),
			Amount:    decimal.NewFromInt(400),
		})
		requireCode(t, err, pkgerrors.CodeNotFound)
	})

	t.Run("non positive amount", func(t *testing.T) {
		svc := newOfferTestService(t, &stubOfferRepo{}, &stubOfferListings{})
		_, err := svc.Create(context.Background(), CreateOfferDTO{
			BuyerID:   uuid.New(),
			ListingID: uuid.New(),
			Amount:    decimal.Zero,
		})
		requireCode(t, err, pkgerrors.CodeValidation)
	})
}

func TestInboxGroupsDirections(t *testing.T) {
	userID := uuid.New()
	repo := &stubOfferRepo{
		made:     []models.Offer{{ID: uuid.New(), BuyerID: userID}},
		received: []models.Offer{{ID: uuid.New()}, {ID: uuid.New()}},
	}
	svc := newOfferTestService(t, repo, &stubOfferListings{})

	inbox, err := svc.Inbox(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inbox.Made) != 1 || len(inbox.Received) != 2 {
		t.Fatalf("expected 1 made and 2 received, got %d/%d", len(inbox.Made), len(inbox.Received))
	}
}

func TestDecideAcceptDoesNotTouchListing(t *testing.T) {
	offerID := uuid.New()
	listingID := uuid.New()
	sellerID := uuid.New()
	repo := &stubOfferRepo{
		offer: &models.Offer{ID: offerID, ListingID: listingID, Status: enums.OfferStatusPending},
		moved: true,
	}
	listings := &stubOfferListings{
		listing: &models.Listing{ID: listingID, SellerID: sellerID, Status: enums.ListingStatusAvailable},
	}
	svc := newOfferTestService(t, repo, listings)

	got, err := svc.Decide(context.Background(), sellerID, offerID, DecisionAccept)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != enums.OfferStatusAccepted {
		t.Fatalf("expected accepted, got %s", got.Status)
	}
	if repo.lastFrom != enums.OfferStatusPending || repo.lastTarget != enums.OfferStatusAccepted {
		t.Fatalf("expected pending->accepted flip, got %s->%s", repo.lastFrom, repo.lastTarget)
	}
	if listings.listing.Status != enums.ListingStatusAvailable {
		t.Fatal("acceptance must not move the listing")
	}
}

func TestDecideRejections(t *testing.T) {
	offerID := uuid.New()
	listingID := uuid.New()
	sellerID := uuid.New()

	t.Run("not the seller", func(t *testing.T) {
		repo := &stubOfferRepo{
			offer: &models.Offer{ID: offerID, ListingID: listingID, Status: enums.OfferStatusPending},
		}
		listings := &stubOfferListings{
			listing: &models.Listing{ID: listingID, SellerID: sellerID},
		}
		svc := newOfferTestService(t, repo, listings)
		_, err := svc.Decide(context.Background(), uuid.New(), offerID, DecisionReject)
		requireCode(t, err, pkgerrors.CodeForbidden)
	})

	t.Run("already decided", func(t *testing.T) {
		repo := &stubOfferRepo{
			offer: &models.Offer{ID: offerID, ListingID: listingID, Status: enums.OfferStatusRejected},
			moved: false,
		}
		listings := &stubOfferListings{
			listing: &models.Listing{ID: listingID, SellerID: sellerID},
		}
		svc := newOfferTestService(t, repo, listings)
		_, err := svc.Decide(context.Background(), sellerID, offerID, DecisionAccept)
		requireCode(t, err, pkgerrors.CodeStateConflict)
	})

	t.Run("offer missing", func(t *testing.T) {
		svc := newOfferTestService(t, &stubOfferRepo{}, &stubOfferListings{})
		_, err := svc.Decide(context.Background(), sellerID, uuid.New(), DecisionAccept)
		requireCode(t, err, pkgerrors.CodeNotFound)
	})

	t.Run("invalid decision", func(t *testing.T) {
		svc := newOfferTestService(t, &stubOfferRepo{}, &stubOfferListings{})
		_, err := svc.Decide(context.Background(), sellerID, offerID, Decision("maybe"))
		requireCode(t, err, pkgerrors.CodeValidation)
	})
}

func TestParseDecision(t *testing.T) {
	if _, err := ParseDecision("accept"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseDecision("reject"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseDecision("veto"); err == nil {
		t.Fatal("expected error for unknown decision")
	}
}
