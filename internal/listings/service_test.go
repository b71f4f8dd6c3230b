package listings

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/accswap/accswap-backend/pkg/db/models"
	"github.com/accswap/accswap-backend/pkg/enums"
	pkgerrors "github.com/accswap/accswap-backend/pkg/errors"
	"github.com/accswap/accswap-backend/pkg/pagination"
)

type stubListingRepo struct {
	listing    *models.Listing
	findErr    error
	created    *models.Listing
	updates    map[string]any
	deletedID  uuid.UUID
	statusRows []models.Listing
}

func (s *stubListingRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubListingRepo) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	s.created = listing
	return listing, nil
}

func (s *stubListingRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.listing == nil || s.listing.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.listing
	return &cp, nil
}

func (s *stubListingRepo) ListByStatus(ctx context.Context, status enums.ListingStatus, params pagination.Params) ([]models.Listing, string, error) {
	return s.statusRows, "", nil
}

func (s *stubListingRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]models.Listing, string, error) {
	return s.statusRows, "", nil
}

func (s *stubListingRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubListingRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.ListingStatus) (bool, error) {
	return false, nil
}

func (s *stubListingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deletedID = id
	return nil
}

type stubProfileGetter struct {
	profile *models.Profile
	err     error
}

func (s *stubProfileGetter) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

type stubSealer struct {
	sealed []byte
	err    error
	last   string
}

func (s *stubSealer) Encrypt(plaintext string) ([]byte, error) {
	s.last = plaintext
	if s.err != nil {
		return nil, s.err
	}
	return s.sealed, nil
}

func newTestService(t *testing.T, repo *stubListingRepo, profiles *stubProfileGetter, sealer *stubSealer) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Profiles: profiles,
		Cipher:   sealer,
	})
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

func TestCreateSealsCredential(t *testing.T) {
	repo := &stubListingRepo{}
	sealer := &stubSealer{sealed: []byte("sealed-bytes")}
	svc := newTestService(t, repo, &stubProfileGetter{}, sealer)

	sellerID := uuid.New()
	created, err := svc.Create(context.Background(), CreateListingDTO{
		SellerID:      sellerID,
		Platform:      "instagram",
		Handle:        "@handle",
		FollowerCount: 1200,
		Price:         decimal.NewFromInt(500),
		Credential:    "user:pass",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sealer.last != "user:pass" {
		t.Fatalf("expected credential passed to cipher, got %q", sealer.last)
	}
	if string(repo.created.AccountCredential) != "sealed-bytes" {
		t.Fatalf("expected sealed credential stored, got %q", repo.created.AccountCredential)
	}
	if repo.created.Status != enums.ListingStatusAvailable {
		t.Fatalf("expected new listing available, got %s", repo.created.Status)
	}
	if created.SellerID != sellerID {
		t.Fatalf("expected seller id %s, got %s", sellerID, created.SellerID)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, &stubListingRepo{}, &stubProfileGetter{}, &stubSealer{})

	base := CreateListingDTO{
		SellerID:   uuid.New(),
		Platform:   "instagram",
		Handle:     "@handle",
		Price:      decimal.NewFromInt(100),
		Credential: "user:pass",
	}

	tests := []struct {
		name   string
		mutate func(dto *CreateListingDTO)
		code   pkgerrors.Code
	}{
		{"missing seller", func(dto *CreateListingDTO) { dto.SellerID = uuid.Nil }, pkgerrors.CodeUnauthorized},
		{"blank platform", func(dto *CreateListingDTO) { dto.Platform = "  " }, pkgerrors.CodeValidation},
		{"blank handle", func(dto *CreateListingDTO) { dto.Handle = "" }, pkgerrors.CodeValidation},
		{"zero price", func(dto *CreateListingDTO) { dto.Price = decimal.Zero }, pkgerrors.CodeValidation},
		{"negative price", func(dto *CreateListingDTO) { dto.Price = decimal.NewFromInt(-5) }, pkgerrors.CodeValidation},
		{"missing credential", func(dto *CreateListingDTO) { dto.Credential = "" }, pkgerrors.CodeValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dto := base
			tc.mutate(&dto)
			_, err := svc.Create(context.Background(), dto)
			requireCode(t, err, tc.code)
		})
	}
}

func TestGetAttachesTrustScore(t *testing.T) {
	listingID := uuid.New()
	sellerID := uuid.New()
	repo := &stubListingRepo{
		listing: &models.Listing{
			ID:       listingID,
			SellerID: sellerID,
			Verified: true,
		},
	}
	vpa := "seller@upi"
	profiles := &stubProfileGetter{
		profile: &models.Profile{
			UserID:           sellerID,
			TwoFactorEnabled: true,
			PhoneVerified:    true,
			PayoutVPA:        &vpa,
		},
	}
	svc := newTestService(t, repo, profiles, &stubSealer{})

	got, err := svc.Get(context.Background(), listingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TrustScore == nil {
		t.Fatal("expected trust score to be set")
	}
	if *got.TrustScore != 90 {
		t.Fatalf("expected trust score 90, got %d", *got.TrustScore)
	}
}

func TestGetMissingProfileScoresListingOnly(t *testing.T) {
	listingID := uuid.New()
	repo := &stubListingRepo{
		listing: &models.Listing{ID: listingID, SellerID: uuid.New(), Verified: true},
	}
	profiles := &stubProfileGetter{err: gorm.ErrRecordNotFound}
	svc := newTestService(t, repo, profiles, &stubSealer{})

	got, err := svc.Get(context.Background(), listingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TrustScore == nil || *got.TrustScore != 20 {
		t.Fatalf("expected trust score 20 without profile, got %v", got.TrustScore)
	}
}

func TestGetNotFound(t *testing.T) {
	svc := newTestService(t, &stubListingRepo{}, &stubProfileGetter{}, &stubSealer{})
	_, err := svc.Get(context.Background(), uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateOwnerAndStateChecks(t *testing.T) {
	listingID := uuid.New()
	ownerID := uuid.New()
	desc := "updated description"

	t.Run("not owner", func(t *testing.T) {
		repo := &stubListingRepo{
			listing: &models.Listing{ID: listingID, SellerID: ownerID, Status: enums.ListingStatusAvailable},
		}
		svc := newTestService(t, repo, &stubProfileGetter{}, &stubSealer{})
		_, err := svc.Update(context.Background(), uuid.New(), listingID, UpdateListingDTO{Description: &desc})
		requireCode(t, err, pkgerrors.CodeForbidden)
	})

	t.Run("in escrow", func(t *testing.T) {
		repo := &stubListingRepo{
			listing: &models.Listing{ID: listingID, SellerID: ownerID, Status: enums.ListingStatusInEscrow},
		}
		svc := newTestService(t, repo, &stubProfileGetter{}, &stubSealer{})
		_, err := svc.Update(context.Background(), ownerID, listingID, UpdateListingDTO{Description: &desc})
		requireCode(t, err, pkgerrors.CodeStateConflict)
	})

	t.Run("owner updates available listing", func(t *testing.T) {
		repo := &stubListingRepo{
			listing: &models.Listing{ID: listingID, SellerID: ownerID, Status: enums.ListingStatusAvailable},
		}
		svc := newTestService(t, repo, &stubProfileGetter{}, &stubSealer{})
		price := decimal.NewFromInt(750)
		got, err := svc.Update(context.Background(), ownerID, listingID, UpdateListingDTO{
			Description: &desc,
			Price:       &price,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Description != desc {
			t.Fatalf("expected description %q, got %q", desc, got.Description)
		}
		if repo.updates["description"] != desc {
			t.Fatalf("expected description persisted, got %v", repo.updates)
		}
		if !repo.updates["price"].(decimal.Decimal).Equal(price) {
			t.Fatalf("expected price persisted, got %v", repo.updates["price"])
		}
	})
}

func TestDeleteOwnerAndStateChecks(t *testing.T) {
	listingID := uuid.New()
	ownerID := uuid.New()

	t.Run("sold listing cannot be deleted", func(t *testing.T) {
		repo := &stubListingRepo{
			listing: &models.Listing{ID: listingID, SellerID: ownerID, Status: enums.ListingStatusSold},
		}
		svc := newTestService(t, repo, &stubProfileGetter{}, &stubSealer{})
		err := svc.Delete(context.Background(), ownerID, listingID)
		requireCode(t, err, pkgerrors.CodeStateConflict)
	})

	t.Run("owner deletes available listing", func(t *testing.T) {
		repo := &stubListingRepo{
			listing: &models.Listing{ID: listingID, SellerID: ownerID, Status: enums.ListingStatusAvailable},
		}
		svc := newTestService(t, repo, &stubProfileGetter{}, &stubSealer{})
		if err := svc.Delete(context.Background(), ownerID, listingID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.deletedID != listingID {
			t.Fatalf("expected delete of %s, got %s", listingID, repo.deletedID)
		}
	})
}

func TestVerifyMarksListing(t *testing.T) {
	listingID := uuid.New()
	repo := &stubListingRepo{
		listing: &models.Listing{ID: listingID, SellerID: uuid.New(), Status: enums.ListingStatusAvailable},
	}
	svc := newTestService(t, repo, &stubProfileGetter{}, &stubSealer{})

	if err := svc.Verify(context.Background(), listingID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.updates["verified"] != true {
		t.Fatalf("expected verified update, got %v", repo.updates)
	}
}

func TestCreateSealFailure(t *testing.T) {
	svc := newTestService(t, &stubListingRepo{}, &stubProfileGetter{}, &stubSealer{err: errors.New("cipher broken")})
	_, err := svc.Create(context.Background(), CreateListingDTO{
		SellerID:   uuid.New(),
		Platform:   "instagram",
		Handle:     "@handle",
		Price:      decimal.NewFromInt(100),
		Credential: "user:pass",
	})
	requireCode(t, err, pkgerrors.CodeInternal)
}
