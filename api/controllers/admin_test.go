package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/accswap/accswap-backend/internal/escrow"
	"github.com/accswap/accswap-backend/pkg/enums"
	"github.com/accswap/accswap-backend/pkg/logger"
)

type stubEscrowService struct {
	markDeliveryResult *escrow.BulkResult
	markDeliveryErr    error
	lastMarkDelivery   []uuid.UUID
	stagedResult       *escrow.StagedCredential
	lastStagedPlain    string
	lastStagedID       uuid.UUID
	overrideResult     *escrow.TransactionDTO
	overrideErr        error
	lastOverrideTarget enums.TransactionStatus
}

func (s *stubEscrowService) Purchase(ctx context.Context, buyerID, listingID uuid.UUID) (*escrow.PurchaseResult, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubEscrowService) HandlePaymentCaptured(ctx context.Context, gatewayOrderID string) error {
	return fmt.Errorf("not implemented")
}

func (s *stubEscrowService) ListForUser(ctx context.Context, userID uuid.UUID) ([]escrow.TransactionDTO, error) {
	return nil, nil
}

func (s *stubEscrowService) Get(ctx context.Context, actorID, id uuid.UUID) (*escrow.TransactionDTO, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubEscrowService) Credentials(ctx context.Context, actorID, id uuid.UUID) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func (s *stubEscrowService) ListByStatus(ctx context.Context, status enums.TransactionStatus) ([]escrow.TransactionDTO, error) {
	return nil, nil
}

func (s *stubEscrowService) StageCredential(ctx context.Context, id uuid.UUID, plaintext string) (*escrow.StagedCredential, error) {
	s.lastStagedID = id
	s.lastStagedPlain = plaintext
	return s.stagedResult, nil
}

func (s *stubEscrowService) MarkDeliveryPending(ctx context.Context, ids []uuid.UUID) (*escrow.BulkResult, error) {
	s.lastMarkDelivery = ids
	return s.markDeliveryResult, s.markDeliveryErr
}

func (s *stubEscrowService) MarkComplete(ctx context.Context, ids []uuid.UUID) (*escrow.BulkResult, error) {
	return s.markDeliveryResult, s.markDeliveryErr
}

func (s *stubEscrowService) Override(ctx context.Context, id uuid.UUID, target enums.TransactionStatus) (*escrow.TransactionDTO, error) {
	s.lastOverrideTarget = target
	return s.overrideResult, s.overrideErr
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "controller-test", Output: io.Discard})
}

func withPathParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestAdminMarkDeliveryPendingPartialFailure(t *testing.T) {
	updated := uuid.New()
	failed := uuid.New()
	svc := &stubEscrowService{
		markDeliveryResult: &escrow.BulkResult{
			Updated: []uuid.UUID{updated},
			Failed:  []uuid.UUID{failed},
		},
		markDeliveryErr: errors.New("transaction is not awaiting delivery"),
	}
	handler := AdminMarkDeliveryPending(svc, testLogger())

	body, _ := json.Marshal(map[string]any{
		"transaction_ids": []uuid.UUID{updated, failed},
	})
	req := httptest.NewRequest(http.MethodPost, "/transactions/mark-delivery-pending", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMultiStatus {
		t.Fatalf("expected 207 got %d body=%s", rec.Code, rec.Body.String())
	}
	if len(svc.lastMarkDelivery) != 2 {
		t.Fatalf("expected both ids forwarded, got %v", svc.lastMarkDelivery)
	}
	var envelope struct {
		Data escrow.BulkResult `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Updated) != 1 || envelope.Data.Updated[0] != updated {
		t.Fatalf("expected updated id in body, got %v", envelope.Data.Updated)
	}
	if len(envelope.Data.Failed) != 1 || envelope.Data.Failed[0] != failed {
		t.Fatalf("expected failed id in body, got %v", envelope.Data.Failed)
	}
}

func TestAdminMarkDeliveryPendingRejectsEmptyBatch(t *testing.T) {
	svc := &stubEscrowService{}
	handler := AdminMarkDeliveryPending(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/transactions/mark-delivery-pending", bytes.NewBufferString(`{"transaction_ids":[]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.lastMarkDelivery != nil {
		t.Fatalf("expected service untouched on empty batch")
	}
}

func TestAdminStageCredentialAllowsEmptyCredential(t *testing.T) {
	transactionID := uuid.New()
	svc := &stubEscrowService{
		stagedResult: &escrow.StagedCredential{TransactionID: transactionID, Credential: "generated"},
	}
	handler := AdminStageCredential(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/transactions/"+transactionID.String()+"/credential", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req = withPathParam(req, "transactionId", transactionID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	if svc.lastStagedID != transactionID {
		t.Fatalf("expected stage for %s got %s", transactionID, svc.lastStagedID)
	}
	if svc.lastStagedPlain != "" {
		t.Fatalf("expected empty plaintext to pass through, got %q", svc.lastStagedPlain)
	}
}

func TestAdminOverrideRejectsInvalidTarget(t *testing.T) {
	transactionID := uuid.New()
	svc := &stubEscrowService{}
	handler := AdminOverride(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/transactions/"+transactionID.String()+"/override", bytes.NewBufferString(`{"status":"complete"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withPathParam(req, "transactionId", transactionID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.lastOverrideTarget != "" {
		t.Fatalf("expected service untouched on invalid target")
	}
}
