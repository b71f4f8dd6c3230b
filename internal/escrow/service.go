package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/accswap/accswap-backend/internal/listings"
	"github.com/accswap/accswap-backend/pkg/db/models"
	"github.com/accswap/accswap-backend/pkg/enums"
	pkgerrors "github.com/accswap/accswap-backend/pkg/errors"
	"github.com/accswap/accswap-backend/pkg/logger"
	"github.com/accswap/accswap-backend/pkg/metrics"
	"github.com/accswap/accswap-backend/pkg/razorpay"
	"github.com/accswap/accswap-backend/pkg/security"
)

// brokerageRate is the platform's cut, applied to the listing price.
var brokerageRate = decimal.New(1, -1)

const generatedCredentialLength = 16

// Service defines the escrow transaction lifecycle.
type Service interface {
	Purchase(ctx context.Context, buyerID, listingID uuid.UUID) (*PurchaseResult, error)
	HandlePaymentCaptured(ctx context.Context, gatewayOrderID string) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]TransactionDTO, error)
	Get(ctx context.Context, actorID, id uuid.UUID) (*TransactionDTO, error)
	Credentials(ctx context.Context, actorID, id uuid.UUID) (string, error)
	ListByStatus(ctx context.Context, status enums.TransactionStatus) ([]TransactionDTO, error)
	StageCredential(ctx context.Context, id uuid.UUID, plaintext string) (*StagedCredential, error)
	MarkDeliveryPending(ctx context.Context, ids []uuid.UUID) (*BulkResult, error)
	MarkComplete(ctx context.Context, ids []uuid.UUID) (*BulkResult, error)
	Override(ctx context.Context, id uuid.UUID, target enums.TransactionStatus) (*TransactionDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gateway interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
	Currency() string
}

type credentialCipher interface {
	Encrypt(plaintext string) ([]byte, error)
	Decrypt(ciphertext []byte) (string, error)
}

type service struct {
	db           txRunner
	transactions Repository
	listings     listings.Repository
	gateway      gateway
	cipher       credentialCipher
	metrics      *metrics.EscrowMetrics
	logg         *logger.Logger
}

// ServiceParams bundles the dependencies for the escrow service.
type ServiceParams struct {
	DB           txRunner
	Transactions Repository
	Listings     listings.Repository
	Gateway      gateway
	Cipher       credentialCipher
	Metrics      *metrics.EscrowMetrics
	Logger       *logger.Logger
}

// NewService builds the escrow service with the required dependencies.
// Metrics may be nil; every other dependency is mandatory.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Transactions == nil {
		return nil, fmt.Errorf("transactions repository required")
	}
	if params.Listings == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.Cipher == nil {
		return nil, fmt.Errorf("credential cipher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		db:           params.DB,
		transactions: params.Transactions,
		listings:     params.Listings,
		gateway:      params.Gateway,
		cipher:       params.Cipher,
		metrics:      params.Metrics,
		logg:         params.Logger,
	}, nil
}

// Purchase opens escrow on an available listing. The gateway order is
// created before any row is written, so a gateway failure leaves the
// listing untouched. The listing flip is a conditional update; the loser
// of a concurrent purchase gets a state conflict.
func (s *service) Purchase(ctx context.Context, buyerID, listingID uuid.UUID) (*PurchaseResult, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	listing, err := s.loadListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID == buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot purchase own listing")
	}
	if listing.Status != enums.ListingStatusAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing no longer available")
	}

	amount := listing.Price
	fee := amount.Mul(brokerageRate).Round(2)
	transactionID := uuid.New()

	started := time.Now()
	order, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   amount.Shift(2).IntPart(),
		Currency: s.gateway.Currency(),
		Receipt:  transactionID.String(),
		Notes: map[string]string{
			"listing_id": listing.ID.String(),
			"buyer_id":   buyerID.String(),
		},
	})
	if err != nil {
		s.metrics.ObserveGatewayOrder("error", time.Since(started))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway order")
	}
	s.metrics.ObserveGatewayOrder("ok", time.Since(started))

	transaction := &models.Transaction{
		ID:             transactionID,
		ListingID:      listing.ID,
		BuyerID:        buyerID,
		SellerID:       listing.SellerID,
		Amount:         amount,
		BrokerageFee:   fee,
		Status:         enums.TransactionStatusPending,
		GatewayOrderID: order.ID,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.listings.WithTx(tx).UpdateStatusIf(ctx, listing.ID, enums.ListingStatusAvailable, enums.ListingStatusInEscrow)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve listing")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "listing no longer available")
		}
		if _, err := s.transactions.WithTx(tx).Create(ctx, transaction); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transaction")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition("none", enums.TransactionStatusPending.String())
	ctx = s.logg.WithTransactionID(ctx, transaction.ID.String())
	s.logg.Info(ctx, "escrow opened")

	return &PurchaseResult{
		Transaction: *FromModel(transaction),
		Checkout: GatewayCheckout{
			OrderID:  order.ID,
			Amount:   order.Amount,
			Currency: order.Currency,
		},
	}, nil
}

// HandlePaymentCaptured advances the pending transaction for a captured
// gateway order into admin review. An unknown or already-advanced order
// is a silent no-op, which makes webhook replays harmless.
func (s *service) HandlePaymentCaptured(ctx context.Context, gatewayOrderID string) error {
	if gatewayOrderID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "gateway order id required")
	}

	transaction, err := s.transactions.FindPendingByGatewayOrder(ctx, gatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Info(ctx, "payment capture matched no pending transaction")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "locate transaction")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.transactions.WithTx(tx).UpdateStatusIf(ctx, transaction.ID, enums.TransactionStatusPending, enums.TransactionStatusAdminReview)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance transaction")
		}
		if !moved {
			return nil
		}
		// Safeguard: the listing should already be reserved.
		if _, err := s.listings.WithTx(tx).UpdateStatusIf(ctx, transaction.ListingID, enums.ListingStatusAvailable, enums.ListingStatusInEscrow); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "re-assert listing reservation")
		}
		s.metrics.IncTransition(enums.TransactionStatusPending.String(), enums.TransactionStatusAdminReview.String())
		return nil
	})
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]TransactionDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.transactions.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	return fromModels(rows), nil
}

// Get returns a transaction to one of its participants. Outsiders get a
// not-found, the same as a transaction that does not exist.
func (s *service) Get(ctx context.Context, actorID, id uuid.UUID) (*TransactionDTO, error) {
	transaction, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if transaction.BuyerID != actorID && transaction.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
	}
	return FromModel(transaction), nil
}

// Credentials hands the decrypted delivery credential to the buyer while
// the transaction is in delivery_pending. Every other case, including a
// missing credential, gets the same forbidden response.
func (s *service) Credentials(ctx context.Context, actorID, id uuid.UUID) (string, error) {
	denied := pkgerrors.New(pkgerrors.CodeForbidden, "credentials not available")

	transaction, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if transaction.BuyerID != actorID {
		return "", denied
	}
	if transaction.Status != enums.TransactionStatusDeliveryPending {
		return "", denied
	}
	if len(transaction.DeliveryCredential) == 0 {
		return "", denied
	}

	plaintext, err := s.cipher.Decrypt(transaction.DeliveryCredential)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unseal credential")
	}
	return plaintext, nil
}

func (s *service) ListByStatus(ctx context.Context, status enums.TransactionStatus) ([]TransactionDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction status")
	}
	rows, err := s.transactions.ListByStatus(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	return fromModels(rows), nil
}

// StageCredential seals the delivery credential for a transaction under
// admin review or awaiting delivery. An empty plaintext stages a
// generated password, echoed back once.
func (s *service) StageCredential(ctx context.Context, id uuid.UUID, plaintext string) (*StagedCredential, error) {
	transaction, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if transaction.Status != enums.TransactionStatusAdminReview && transaction.Status != enums.TransactionStatusDeliveryPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transaction is not awaiting delivery")
	}

	if plaintext == "" {
		plaintext, err = security.GenerateTempPassword(generatedCredentialLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate credential")
		}
	}

	sealed, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seal credential")
	}
	if err := s.transactions.SetDeliveryCredential(ctx, id, sealed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store credential")
	}

	return &StagedCredential{TransactionID: id, Credential: plaintext}, nil
}

// MarkDeliveryPending advances reviewed transactions with a staged
// credential. Rows are independent; one bad id does not stop the rest.
func (s *service) MarkDeliveryPending(ctx context.Context, ids []uuid.UUID) (*BulkResult, error) {
	result := &BulkResult{}
	var combined error

	for _, id := range ids {
		if err := s.markDeliveryPendingOne(ctx, id); err != nil {
			result.Failed = append(result.Failed, id)
			combined = multierr.Append(combined, fmt.Errorf("transaction %s: %w", id, err))
			continue
		}
		result.Updated = append(result.Updated, id)
		s.metrics.IncTransition(enums.TransactionStatusAdminReview.String(), enums.TransactionStatusDeliveryPending.String())
	}
	return result, combined
}

func (s *service) markDeliveryPendingOne(ctx context.Context, id uuid.UUID) error {
	transaction, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if len(transaction.DeliveryCredential) == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no delivery credential staged")
	}
	moved, err := s.transactions.UpdateStatusIf(ctx, id, enums.TransactionStatusAdminReview, enums.TransactionStatusDeliveryPending)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance transaction")
	}
	if !moved {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction is not under admin review")
	}
	return nil
}

// MarkComplete settles delivered transactions and flips their listings
// to sold. Rows are independent; errors are combined.
func (s *service) MarkComplete(ctx context.Context, ids []uuid.UUID) (*BulkResult, error) {
	result := &BulkResult{}
	var combined error

	for _, id := range ids {
		if err := s.markCompleteOne(ctx, id); err != nil {
			result.Failed = append(result.Failed, id)
			combined = multierr.Append(combined, fmt.Errorf("transaction %s: %w", id, err))
			continue
		}
		result.Updated = append(result.Updated, id)
		s.metrics.IncTransition(enums.TransactionStatusDeliveryPending.String(), enums.TransactionStatusComplete.String())
	}
	return result, combined
}

func (s *service) markCompleteOne(ctx context.Context, id uuid.UUID) error {
	transaction, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.transactions.WithTx(tx).UpdateStatusIf(ctx, id, enums.TransactionStatusDeliveryPending, enums.TransactionStatusComplete)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete transaction")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction is not awaiting delivery confirmation")
		}
		if _, err := s.listings.WithTx(tx).UpdateStatusIf(ctx, transaction.ListingID, enums.ListingStatusInEscrow, enums.ListingStatusSold); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark listing sold")
		}
		return nil
	})
}

// Override forces a transaction into disputed or cancelled. Cancellation
// releases the listing back to available; a dispute keeps it reserved
// while the case is worked and is itself settled by a later cancellation.
func (s *service) Override(ctx context.Context, id uuid.UUID, target enums.TransactionStatus) (*TransactionDTO, error) {
	if target != enums.TransactionStatusDisputed && target != enums.TransactionStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "override target must be disputed or cancelled")
	}

	transaction, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if transaction.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transaction is already settled")
	}
	if transaction.Status == enums.TransactionStatusDisputed && target == enums.TransactionStatusDisputed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transaction is already disputed")
	}
	observed := transaction.Status

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.transactions.WithTx(tx).UpdateStatusIf(ctx, id, observed, target)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "override transaction")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction moved before the override applied")
		}
		if target == enums.TransactionStatusCancelled {
			if _, err := s.listings.WithTx(tx).UpdateStatusIf(ctx, transaction.ListingID, enums.ListingStatusInEscrow, enums.ListingStatusAvailable); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release listing")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(observed.String(), target.String())
	transaction.Status = target
	return FromModel(transaction), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	transaction, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return transaction, nil
}

func (s *service) loadListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return listing, nil
}
