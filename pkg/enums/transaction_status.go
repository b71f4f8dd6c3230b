package enums

import "fmt"

// TransactionStatus tracks the escrow lifecycle of a purchase.
type TransactionStatus string

const (
	TransactionStatusPending         TransactionStatus = "pending"
	TransactionStatusAdminReview     TransactionStatus = "admin_review"
	TransactionStatusDeliveryPending TransactionStatus = "delivery_pending"
	TransactionStatusComplete        TransactionStatus = "complete"
	TransactionStatusDisputed        TransactionStatus = "disputed"
	TransactionStatusCancelled       TransactionStatus = "cancelled"
)

var validTransactionStatuses = []TransactionStatus{
	TransactionStatusPending,
	TransactionStatusAdminReview,
	TransactionStatusDeliveryPending,
	TransactionStatusComplete,
	TransactionStatusDisputed,
	TransactionStatusCancelled,
}

// String implements fmt.Stringer.
func (t TransactionStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionStatus.
func (t TransactionStatus) IsValid() bool {
	for _, candidate := range validTransactionStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
// Disputed is not terminal: a dispute is settled by cancelling it.
func (t TransactionStatus) IsTerminal() bool {
	switch t {
	case TransactionStatusComplete, TransactionStatusCancelled:
		return true
	}
	return false
}

// ParseTransactionStatus converts raw input into a TransactionStatus.
func ParseTransactionStatus(value string) (TransactionStatus, error) {
	for _, candidate := range validTransactionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction status %q", value)
}
