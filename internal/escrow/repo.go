package escrow

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accswap/accswap-backend/pkg/db/models"
	"github.com/accswap/accswap-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a transactions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, transaction *models.Transaction) (*models.Transaction, error) {
	if err := r.db.WithContext(ctx).Create(transaction).Error; err != nil {
		return nil, err
	}
	return transaction, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&transaction).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

// FindPendingByGatewayOrder locates the pending transaction a gateway
// capture refers to. Replays and unknown orders find nothing.
func (r *repository) FindPendingByGatewayOrder(ctx context.Context, orderID string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.WithContext(ctx).
		Where("gateway_order_id = ? AND status = ?", orderID, enums.TransactionStatusPending).
		First(&transaction).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *repository) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListByStatus(ctx context.Context, status enums.TransactionStatus) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// UpdateStatusIf flips the transaction status only when the current
// status matches. The boolean reports whether the row actually moved.
func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to enums.TransactionStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) SetDeliveryCredential(ctx context.Context, id uuid.UUID, sealed []byte) error {
	res := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Update("delivery_credential", sealed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
