package escrow

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/accswap/accswap-backend/internal/listings"
	"github.com/accswap/accswap-backend/pkg/db/models"
	"github.com/accswap/accswap-backend/pkg/enums"
	pkgerrors "github.com/accswap/accswap-backend/pkg/errors"
	"github.com/accswap/accswap-backend/pkg/logger"
	"github.com/accswap/accswap-backend/pkg/pagination"
	"github.com/accswap/accswap-backend/pkg/razorpay"
)

type stubTxRunner struct {
	err error
}

func (s stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.err != nil {
		return s.err
	}
	return fn(nil)
}

type statusFlip struct {
	from enums.TransactionStatus
	to   enums.TransactionStatus
}

type stubTransactionRepo struct {
	transaction *models.Transaction
	pending     *models.Transaction
	created     *models.Transaction
	rows        []models.Transaction
	flips       []statusFlip
	moved       bool
	sealed      []byte
}

func (s *stubTransactionRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubTransactionRepo) Create(ctx context.Context, transaction *models.Transaction) (*models.Transaction, error) {
	s.created = transaction
	return transaction, nil
}

func (s *stubTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	if s.transaction == nil || s.transaction.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.transaction
	return &cp, nil
}

func (s *stubTransactionRepo) FindPendingByGatewayOrder(ctx context.Context, orderID string) (*models.Transaction, error) {
	if s.pending == nil || s.pending.GatewayOrderID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.pending
	return &cp, nil
}

func (s *stubTransactionRepo) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	return s.rows, nil
}

func (s *stubTransactionRepo) ListByStatus(ctx context.Context, status enums.TransactionStatus) ([]models.Transaction, error) {
	return s.rows, nil
}

func (s *stubTransactionRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.TransactionStatus) (bool, error) {
	s.flips = append(s.flips, statusFlip{from: from, to: to})
	return s.moved, nil
}

func (s *stubTransactionRepo) SetDeliveryCredential(ctx context.Context, id uuid.UUID, sealed []byte) error {
	s.sealed = sealed
	return nil
}

type stubEscrowListings struct {
	listing *models.Listing
	flips   []struct{ from, to enums.ListingStatus }
	moved   bool
}

func (s *stubEscrowListings) WithTx(tx *gorm.DB) listings.Repository { return s }

func (s *stubEscrowListings) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	if s.listing == nil || s.listing.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.listing
	return &cp, nil
}

func (s *stubEscrowListings) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.ListingStatus) (bool, error) {
	s.flips = append(s.flips, struct{ from, to enums.ListingStatus }{from, to})
	return s.moved, nil
}

func (s *stubEscrowListings) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	return listing, nil
}

func (s *stubEscrowListings) ListByStatus(ctx context.Context, status enums.ListingStatus, params pagination.Params) ([]models.Listing, string, error) {
	return nil, "", nil
}

func (s *stubEscrowListings) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]models.Listing, string, error) {
	return nil, "", nil
}

func (s *stubEscrowListings) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubEscrowListings) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type stubGateway struct {
	order   *razorpay.Order
	err     error
	lastReq razorpay.OrderRequest
}

func (s *stubGateway) CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func (s *stubGateway) Currency() string { return "INR" }

type stubCipher struct {
	sealed    []byte
	plaintext string
	decErr    error
	lastSeal  string
}

func (s *stubCipher) Encrypt(plaintext string) ([]byte, error) {
	s.lastSeal = plaintext
	return s.sealed, nil
}

func (s *stubCipher) Decrypt(ciphertext []byte) (string, error) {
	if s.decErr != nil {
		return "", s.decErr
	}
	return s.plaintext, nil
}

type escrowFixture struct {
	transactions *stubTransactionRepo
	listings     *stubEscrowListings
	gateway      *stubGateway
	cipher       *stubCipher
}

func newEscrowTestService(t *testing.T, fx escrowFixture) Service {
	t.Helper()
	if fx.transactions == nil {
		fx.transactions = &stubTransactionRepo{}
	}
	if fx.listings == nil {
		fx.listings = &stubEscrowListings{}
	}
	if fx.gateway == nil {
		fx.gateway = &stubGateway{order: &razorpay.Order{ID: "order_stub", Amount: 1, Currency: "INR"}}
	}
	if fx.cipher == nil {
		fx.cipher = &stubCipher{sealed: []byte("sealed")}
	}
	svc, err := NewService(ServiceParams{
		DB:           stubTxRunner{},
		Transactions: fx.transactions,
		Listings:     fx.listings,
		Gateway:      fx.gateway,
		Cipher:       fx.cipher,
		Logger:       logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
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

func TestPurchaseHappyPath(t *testing.T) {
	listingID := uuid.New()
	buyerID := uuid.New()
	fx := escrowFixture{
		transactions: &stubTransactionRepo{},
		listings: &stubEscrowListings{
			listing: &models.Listing{
				ID:       listingID,
				SellerID: uuid.New(),
				Price:    decimal.RequireFromString("1800.00"),
				Status:   enums.ListingStatusAvailable,
			},
			moved: true,
		},
		gateway: &stubGateway{order: &razorpay.Order{ID: "order_123", Amount: 180000, Currency: "INR"}},
	}
	svc := newEscrowTestService(t, fx)

	result, err := svc.Purchase(context.Background(), buyerID, listingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Transaction.Status != enums.TransactionStatusPending {
		t.Fatalf("expected pending transaction, got %s", result.Transaction.Status)
	}
	if !result.Transaction.BrokerageFee.Equal(decimal.RequireFromString("180.00")) {
		t.Fatalf("expected fee 180.00, got %s", result.Transaction.BrokerageFee)
	}
	if fx.gateway.lastReq.Amount != 180000 {
		t.Fatalf("expected order amount 180000 paise, got %d", fx.gateway.lastReq.Amount)
	}
	if fx.transactions.created.GatewayOrderID != "order_123" {
		t.Fatalf("expected gateway order recorded, got %q", fx.transactions.created.GatewayOrderID)
	}
	if result.Checkout.OrderID != "order_123" || result.Checkout.Currency != "INR" {
		t.Fatalf("unexpected checkout: %+v", result.Checkout)
	}
}

func TestPurchaseGatewayFailureWritesNothing(t *testing.T) {
	listingID := uuid.New()
	fx := escrowFixture{
		transactions: &stubTransactionRepo{},
		listings: &stubEscrowListings{
			listing: &models.Listing{
				ID:       listingID,
				SellerID: uuid.New(),
				Price:    decimal.NewFromInt(500),
				Status:   enums.ListingStatusAvailable,
			},
		},
		gateway: &stubGateway{err: errors.New("gateway down")},
	}
	svc := newEscrowTestService(t, fx)

	_, err := svc.Purchase(context.Background(), uuid.New(), listingID)
	requireCode(t, err, pkgerrors.CodeDependency)
	if fx.transactions.created != nil {
		t.Fatal("no transaction may be written after a gateway failure")
	}
	if len(fx.listings.flips) != 0 {
		t.Fatal("listing must stay untouched after a gateway failure")
	}
}

func TestPurchaseLoserOfRace(t *testing.T) {
	listingID := uuid.New()
	fx := escrowFixture{
		transactions: &stubTransactionRepo{},
		listings: &stubEscrowListings{
			listing: &models.Listing{
				ID:       listingID,
				SellerID: uuid.New(),
				Price:    decimal.NewFromInt(500),
				Status:   enums.ListingStatusAvailable,
			},
			moved: false,
		},
	}
	svc := newEscrowTestService(t, fx)

	_, err := svc.Purchase(context.Background(), uuid.New(), listingID)
	requireCode(t, err, pkgerrors.CodeStateConflict)
	if fx.transactions.created != nil {
		t.Fatal("the losing purchase must not write a transaction")
	}
}

func TestPurchaseRejections(t *testing.T) {
	listingID := uuid.New()
	sellerID := uuid.New()

	t.Run("own listing", func(t *testing.T) {
		fx := escrowFixture{
			listings: &stubEscrowListings{
				listing: &models.Listing{ID: listingID, SellerID: sellerID, Status: enums.ListingStatusAvailable, Price: decimal.NewFromInt(100)},
			},
		}
		svc := newEscrowTestService(t, fx)
		_, err := svc.Purchase(context.Background(), sellerID, listingID)
		requireCode(t, err, pkgerrors.CodeValidation)
	})

	t.Run("already in escrow", func(t *testing.T) {
		fx := escrowFixture{
			listings: &stubEscrowListings{
				listing: &models.Listing{ID: listingID, SellerID: sellerID, Status: enums.ListingStatusInEscrow, Price: decimal.NewFromInt(100)},
			},
		}
		svc := newEscrowTestService(t, fx)
		_, err := svc.Purchase(context.Background(), uuid.New(), listingID)
		requireCode(t, err, pkgerrors.CodeStateConflict)
	})

	t.Run("listing missing", func(t *testing.T) {
		svc := newEscrowTestService(t, escrowFixture{})
		_, err := svc.Purchase(context.Background(), uuid.New(), uuid.New())
		requireCode(t, err, pkgerrors.CodeNotFound)
	})
}

func TestHandlePaymentCapturedAdvancesOnce(t *testing.T) {
	transactionID := uuid.New()
	listingID := uuid.New()
	repo := &stubTransactionRepo{
		pending: &models.Transaction{
			ID:             transactionID,
			ListingID:      listingID,
			Status:         enums.TransactionStatusPending,
			GatewayOrderID: "order_123",
		},
		moved: true,
	}
	listings := &stubEscrowListings{moved: false}
	svc := newEscrowTestService(t, escrowFixture{transactions: repo, listings: listings})

	if err := svc.HandlePaymentCaptured(context.Background(), "order_123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.flips) != 1 || repo.flips[0].from != enums.TransactionStatusPending || repo.flips[0].to != enums.TransactionStatusAdminReview {
		t.Fatalf("expected pending->admin_review flip, got %+v", repo.flips)
	}

	// Replay: the transaction is no longer pending, so the lookup misses
	// and nothing else happens.
	repo.pending.Status = enums.TransactionStatusAdminReview
	repo.pending = nil
	if err := svc.HandlePaymentCaptured(context.Background(), "order_123"); err != nil {
		t.Fatalf("replay must be a no-op, got %v", err)
	}
	if len(repo.flips) != 1 {
		t.Fatalf("replay must not flip again, got %d flips", len(repo.flips))
	}
}

func TestHandlePaymentCapturedUnknownOrderIsNoop(t *testing.T) {
	repo := &stubTransactionRepo{}
	svc := newEscrowTestService(t, escrowFixture{transactions: repo})

	if err := svc.HandlePaymentCaptured(context.Background(), "order_unknown"); err != nil {
		t.Fatalf("unknown order must be a no-op, got %v", err)
	}
	if len(repo.flips) != 0 {
		t.Fatal("unknown order must not flip anything")
	}
}

func TestCredentialsOnlyInDeliveryPending(t *testing.T) {
	transactionID := uuid.New()
	buyerID := uuid.New()

	base := models.Transaction{
		ID:                 transactionID,
		BuyerID:            buyerID,
		SellerID:           uuid.New(),
		DeliveryCredential: []byte("sealed"),
	}

	t.Run("delivery_pending returns plaintext", func(t *testing.T) {
		tx := base
		tx.Status = enums.TransactionStatusDeliveryPending
		fx := escrowFixture{
			transactions: &stubTransactionRepo{transaction: &tx},
			cipher:       &stubCipher{plaintext: "user:pass"},
		}
		svc := newEscrowTestService(t, fx)
		got, err := svc.Credentials(context.Background(), buyerID, transactionID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "user:pass" {
			t.Fatalf("expected decrypted credential, got %q", got)
		}
	})

	otherStatuses := []enums.TransactionStatus{
		enums.TransactionStatusPending,
		enums.TransactionStatusAdminReview,
		enums.TransactionStatusComplete,
		enums.TransactionStatusDisputed,
		enums.TransactionStatusCancelled,
	}
	for _, status := range otherStatuses {
		t.Run(string(status)+" is forbidden", func(t *testing.T) {
			tx := base
			tx.Status = status
			fx := escrowFixture{
				transactions: &stubTransactionRepo{transaction: &tx},
				cipher:       &stubCipher{plaintext: "user:pass"},
			}
			svc := newEscrowTestService(t, fx)
			_, err := svc.Credentials(context.Background(), buyerID, transactionID)
			requireCode(t, err, pkgerrors.CodeForbidden)
		})
	}

	t.Run("seller is forbidden", func(t *testing.T) {
		tx := base
		tx.Status = enums.TransactionStatusDeliveryPending
		fx := escrowFixture{
			transactions: &stubTransactionRepo{transaction: &tx},
		}
		svc := newEscrowTestService(t, fx)
		_, err := svc.Credentials(context.Background(), tx.SellerID, transactionID)
		requireCode(t, err, pkgerrors.CodeForbidden)
	})

	t.Run("missing credential looks the same", func(t *testing.T) {
		tx := base
		tx.Status = enums.TransactionStatusDeliveryPending
		tx.DeliveryCredential = nil
		fx := escrowFixture{
			transactions: &stubTransactionRepo{transaction: &tx},
		}
		svc := newEscrowTestService(t, fx)
		_, err := svc.Credentials(context.Background(), buyerID, transactionID)
		requireCode(t, err, pkgerrors.CodeForbidden)
	})
}

func TestGetHidesOtherUsersTransactions(t *testing.T) {
	transactionID := uuid.New()
	repo := &stubTransactionRepo{
		transaction: &models.Transaction{
			ID:       transactionID,
			BuyerID:  uuid.New(),
			SellerID: uuid.New(),
		},
	}
	svc := newEscrowTestService(t, escrowFixture{transactions: repo})

	_, err := svc.Get(context.Background(), uuid.New(), transactionID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	got, err := svc.Get(context.Background(), repo.transaction.BuyerID, transactionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != transactionID {
		t.Fatalf("expected transaction %s, got %s", transactionID, got.ID)
	}
}

func TestStageCredential(t *testing.T) {
	transactionID := uuid.New()

	t.Run("seals provided plaintext", func(t *testing.T) {
		repo := &stubTransactionRepo{
			transaction: &models.Transaction{ID: transactionID, Status: enums.TransactionStatusAdminReview},
		}
		cipher := &stubCipher{sealed: []byte("sealed")}
		svc := newEscrowTestService(t, escrowFixture{transactions: repo, cipher: cipher})

		staged, err := svc.StageCredential(context.Background(), transactionID, "user:pass")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if staged.Credential != "user:pass" {
			t.Fatalf("expected echoed plaintext, got %q", staged.Credential)
		}
		if string(repo.sealed) != "sealed" {
			t.Fatal("expected sealed credential persisted")
		}
	})

	t.Run("generates when empty", func(t *testing.T) {
		repo := &stubTransactionRepo{
			transaction: &models.Transaction{ID: transactionID, Status: enums.TransactionStatusDeliveryPending},
		}
		cipher := &stubCipher{sealed: []byte("sealed")}
		svc := newEscrowTestService(t, escrowFixture{transactions: repo, cipher: cipher})

		staged, err := svc.StageCredential(context.Background(), transactionID, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(staged.Credential) != generatedCredentialLength {
			t.Fatalf("expected generated credential of length %d, got %d", generatedCredentialLength, len(staged.Credential))
		}
		if cipher.lastSeal != staged.Credential {
			t.Fatal("generated credential must be the one sealed")
		}
	})

	t.Run("wrong state", func(t *testing.T) {
		repo := &stubTransactionRepo{
			transaction: &models.Transaction{ID: transactionID, Status: enums.TransactionStatusPending},
		}
		svc := newEscrowTestService(t, escrowFixture{transactions: repo})
		_, err := svc.StageCredential(context.Background(), transactionID, "user:pass")
		requireCode(t, err, pkgerrors.CodeStateConflict)
	})
}

func TestMarkDeliveryPendingRequiresStagedCredential(t *testing.T) {
	transactionID := uuid.New()
	repo := &stubTransactionRepo{
		transaction: &models.Transaction{ID: transactionID, Status: enums.TransactionStatusAdminReview},
		moved:       true,
	}
	svc := newEscrowTestService(t, escrowFixture{transactions: repo})

	result, err := svc.MarkDeliveryPending(context.Background(), []uuid.UUID{transactionID})
	if err == nil {
		t.Fatal("expected error for missing staged credential")
	}
	if len(result.Failed) != 1 || len(result.Updated) != 0 {
		t.Fatalf("expected one failed row, got %+v", result)
	}

	repo.transaction.DeliveryCredential = []byte("sealed")
	result, err = svc.MarkDeliveryPending(context.Background(), []uuid.UUID{transactionID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Updated) != 1 {
		t.Fatalf("expected one updated row, got %+v", result)
	}
}

func TestMarkDeliveryPendingIsPerRow(t *testing.T) {
	goodID := uuid.New()
	repo := &stubTransactionRepo{
		transaction: &models.Transaction{
			ID:                 goodID,
			Status:             enums.TransactionStatusAdminReview,
			DeliveryCredential: []byte("sealed"),
		},
		moved: true,
	}
	svc := newEscrowTestService(t, escrowFixture{transactions: repo})

	result, err := svc.MarkDeliveryPending(context.Background(), []uuid.UUID{uuid.New(), goodID})
	if err == nil {
		t.Fatal("expected combined error for the missing row")
	}
	if len(result.Updated) != 1 || result.Updated[0] != goodID {
		t.Fatalf("the good row must still advance, got %+v", result)
	}
	if len(result.Failed) != 1 {
		t.Fatalf("expected one failed row, got %+v", result)
	}
}

func TestMarkCompleteCascadesListingSold(t *testing.T) {
	transactionID := uuid.New()
	listingID := uuid.New()
	repo := &stubTransactionRepo{
		transaction: &models.Transaction{
			ID:        transactionID,
			ListingID: listingID,
			Status:    enums.TransactionStatusDeliveryPending,
		},
		moved: true,
	}
	listings := &stubEscrowListings{moved: true}
	svc := newEscrowTestService(t, escrowFixture{transactions: repo, listings: listings})

	result, err := svc.MarkComplete(context.Background(), []uuid.UUID{transactionID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Updated) != 1 {
		t.Fatalf("expected one updated row, got %+v", result)
	}
	if len(listings.flips) != 1 || listings.flips[0].from != enums.ListingStatusInEscrow || listings.flips[0].to != enums.ListingStatusSold {
		t.Fatalf("expected in_escrow->sold cascade, got %+v", listings.flips)
	}
}

func TestMarkCompleteRejectsWrongState(t *testing.T) {
	transactionID := uuid.New()
	repo := &stubTransactionRepo{
		transaction: &models.Transaction{ID: transactionID, Status: enums.TransactionStatusAdminReview},
		moved:       false,
	}
	svc := newEscrowTestService(t, escrowFixture{transactions: repo})

	result, err := svc.MarkComplete(context.Background(), []uuid.UUID{transactionID})
	if err == nil {
		t.Fatal("expected error for wrong state")
	}
	if len(result.Failed) != 1 {
		t.Fatalf("expected one failed row, got %+v", result)
	}
}

func TestOverride(t *testing.T) {
	transactionID := uuid.New()
	listingID := uuid.New()

	t.Run("cancelled releases listing", func(t *testing.T) {
		repo := &stubTransactionRepo{
			transaction: &models.Transaction{ID: transactionID, ListingID: listingID, Status: enums.TransactionStatusAdminReview},
			moved:       true,
		}
		listings := &stubEscrowListings{moved: true}
		svc := newEscrowTestService(t, escrowFixture{transactions: repo, listings: listings})

		got, err := svc.Override(context.Background(), transactionID, enums.TransactionStatusCancelled)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != enums.TransactionStatusCancelled {
			t.Fatalf("expected cancelled, got %s", got.Status)
		}
		if len(listings.flips) != 1 || listings.flips[0].to != enums.ListingStatusAvailable {
			t.Fatalf("expected listing released, got %+v", listings.flips)
		}
	})

	t.Run("disputed keeps listing reserved", func(t *testing.T) {
		repo := &stubTransactionRepo{
			transaction: &models.Transaction{ID: transactionID, ListingID: listingID, Status: enums.TransactionStatusDeliveryPending},
			moved:       true,
		}
		listings := &stubEscrowListings{}
		svc := newEscrowTestService(t, escrowFixture{transactions: repo, listings: listings})

		got, err := svc.Override(context.Background(), transactionID, enums.TransactionStatusDisputed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != enums.TransactionStatusDisputed {
			t.Fatalf("expected disputed, got %s", got.Status)
		}
		if len(listings.flips) != 0 {
			t.Fatal("a dispute must not touch the listing")
		}
	})

	t.Run("cancelling a dispute releases the listing", func(t *testing.T) {
		repo := &stubTransactionRepo{
			transaction: &models.Transaction{ID: transactionID, ListingID: listingID, Status: enums.TransactionStatusDisputed},
			moved:       true,
		}
		listings := &stubEscrowListings{moved: true}
		svc := newEscrowTestService(t, escrowFixture{transactions: repo, listings: listings})

		got, err := svc.Override(context.Background(), transactionID, enums.TransactionStatusCancelled)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != enums.TransactionStatusCancelled {
			t.Fatalf("expected cancelled, got %s", got.Status)
		}
		if len(listings.flips) != 1 || listings.flips[0].to != enums.ListingStatusAvailable {
			t.Fatalf("expected listing released after dispute settled, got %+v", listings.flips)
		}
	})

	t.Run("already disputed", func(t *testing.T) {
		repo := &stubTransactionRepo{
			transaction: &models.Transaction{ID: transactionID, Status: enums.TransactionStatusDisputed},
		}
		svc := newEscrowTestService(t, escrowFixture{transactions: repo})
		_, err := svc.Override(context.Background(), transactionID, enums.TransactionStatusDisputed)
		requireCode(t, err, pkgerrors.CodeStateConflict)
	})

	t.Run("terminal transaction", func(t *testing.T) {
		for _, status := range []enums.TransactionStatus{enums.TransactionStatusComplete, enums.TransactionStatusCancelled} {
			repo := &stubTransactionRepo{
				transaction: &models.Transaction{ID: transactionID, Status: status},
			}
			svc := newEscrowTestService(t, escrowFixture{transactions: repo})
			_, err := svc.Override(context.Background(), transactionID, enums.TransactionStatusCancelled)
			requireCode(t, err, pkgerrors.CodeStateConflict)
		}
	})

	t.Run("invalid target", func(t *testing.T) {
		svc := newEscrowTestService(t, escrowFixture{})
		_, err := svc.Override(context.Background(), transactionID, enums.TransactionStatusComplete)
		requireCode(t, err, pkgerrors.CodeValidation)
	})
}

func TestFeeExactness(t *testing.T) {
	cases := []struct {
		price string
		fee   string
	}{
		{"1800.00", "180.00"},
		{"99.99", "10.00"},
		{"0.05", "0.01"},
		{"12345.67", "1234.57"},
	}
	for _, tc := range cases {
		price := decimal.RequireFromString(tc.price)
		fee := price.Mul(brokerageRate).Round(2)
		if fee.String() != decimal.RequireFromString(tc.fee).String() {
			t.Fatalf("price %s: expected fee %s, got %s", tc.price, tc.fee, fee)
		}
	}
}
