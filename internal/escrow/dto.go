package escrow

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/accswap/accswap-backend/pkg/db/models"
	"github.com/accswap/accswap-backend/pkg/enums"
)

// TransactionDTO is the transport shape for an escrow transaction. The
// staged delivery credential is intentionally absent.
type TransactionDTO struct {
	ID             uuid.UUID               `json:"id"`
	ListingID      uuid.UUID               `json:"listing_id"`
	BuyerID        uuid.UUID               `json:"buyer_id"`
	SellerID       uuid.UUID               `json:"seller_id"`
	Amount         decimal.Decimal         `json:"amount"`
	BrokerageFee   decimal.Decimal         `json:"brokerage_fee"`
	Status         enums.TransactionStatus `json:"status"`
	GatewayOrderID string                  `json:"gateway_order_id"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// GatewayCheckout carries what the client needs to open the gateway's
// payment flow for a freshly created order.
type GatewayCheckout struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PurchaseResult pairs the new pending transaction with its checkout.
type PurchaseResult struct {
	Transaction TransactionDTO  `json:"transaction"`
	Checkout    GatewayCheckout `json:"checkout"`
}

// StagedCredential reports the credential an admin just staged. The
// plaintext is echoed once so a generated password is not lost.
type StagedCredential struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Credential    string    `json:"credential"`
}

// BulkResult reports a bulk admin action row by row.
type BulkResult struct {
	Updated []uuid.UUID `json:"updated"`
	Failed  []uuid.UUID `json:"failed,omitempty"`
}

func FromModel(t *models.Transaction) *TransactionDTO {
	if t == nil {
		return nil
	}

	return &TransactionDTO{
		ID:             t.ID,
		ListingID:      t.ListingID,
		BuyerID:        t.BuyerID,
		SellerID:       t.SellerID,
		Amount:         t.Amount,
		BrokerageFee:   t.BrokerageFee,
		Status:         t.Status,
		GatewayOrderID: t.GatewayOrderID,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func fromModels(rows []models.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
