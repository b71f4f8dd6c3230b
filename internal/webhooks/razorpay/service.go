package razorpay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pkgerrors "github.com/accswap/accswap-backend/pkg/errors"
	"github.com/accswap/accswap-backend/pkg/logger"
	"github.com/accswap/accswap-backend/pkg/metrics"
)

const (
	eventPaymentCaptured = "payment.captured"
	idempotencyScope     = "razorpay"
)

type captureHandler interface {
	HandlePaymentCaptured(ctx context.Context, gatewayOrderID string) error
}

type idempotencyStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

type eventEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// Service consumes verified gateway webhook deliveries.
type Service struct {
	escrow   captureHandler
	store    idempotencyStore
	eventTTL time.Duration
	metrics  *metrics.EscrowMetrics
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies for the webhook service.
type ServiceParams struct {
	Escrow   captureHandler
	Store    idempotencyStore
	EventTTL time.Duration
	Metrics  *metrics.EscrowMetrics
	Logger   *logger.Logger
}

// NewService builds the webhook service. Metrics may be nil.
func NewService(params ServiceParams) (*Service, error) {
	if params.Escrow == nil {
		return nil, fmt.Errorf("escrow service required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("idempotency store required")
	}
	if params.EventTTL <= 0 {
		return nil, fmt.Errorf("event ttl must be positive")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		escrow:   params.Escrow,
		store:    params.Store,
		eventTTL: params.EventTTL,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

// Process consumes a signature-verified webhook body. Unknown event types
// are acknowledged without action; a replayed event id is swallowed by
// the idempotency guard. The guard key is released when handling fails so
// the gateway's retry can try again.
func (s *Service) Process(ctx context.Context, body []byte, eventID string) error {
	var envelope eventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		s.metrics.IncWebhookResult("malformed")
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed webhook payload")
	}

	if envelope.Event != eventPaymentCaptured {
		s.metrics.IncWebhookResult("ignored")
		s.logg.Info(s.logg.WithField(ctx, "event", envelope.Event), "webhook event ignored")
		return nil
	}

	orderID := envelope.Payload.Payment.Entity.OrderID
	if orderID == "" {
		s.metrics.IncWebhookResult("malformed")
		return pkgerrors.New(pkgerrors.CodeValidation, "payment capture missing order id")
	}

	var guardKey string
	if eventID != "" {
		guardKey = s.store.IdempotencyKey(idempotencyScope, eventID)
		fresh, err := s.store.SetNX(ctx, guardKey, orderID, s.eventTTL)
		if err != nil {
			s.metrics.IncWebhookResult("error")
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency guard")
		}
		if !fresh {
			s.metrics.IncWebhookResult("duplicate")
			s.logg.Info(ctx, "webhook event already processed")
			return nil
		}
	}

	if err := s.escrow.HandlePaymentCaptured(ctx, orderID); err != nil {
		if guardKey != "" {
			if delErr := s.store.Del(ctx, guardKey); delErr != nil {
				s.logg.Error(ctx, "release webhook idempotency key", delErr)
			}
		}
		s.metrics.IncWebhookResult("error")
		return err
	}

	s.metrics.IncWebhookResult("processed")
	return nil
}
