package escrow

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accswap/accswap-backend/pkg/db/models"
	"github.com/accswap/accswap-backend/pkg/enums"
)

// Repository defines persistence operations for escrow transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, transaction *models.Transaction) (*models.Transaction, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	FindPendingByGatewayOrder(ctx context.Context, orderID string) (*models.Transaction, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
	ListByStatus(ctx context.Context, status enums.TransactionStatus) ([]models.Transaction, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.TransactionStatus) (bool, error)
	SetDeliveryCredential(ctx context.Context, id uuid.UUID, sealed []byte) error
}
