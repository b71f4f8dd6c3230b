package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/accswap/accswap-backend/api/responses"
	"github.com/accswap/accswap-backend/api/validators"
	"github.com/accswap/accswap-backend/internal/escrow"
	listingsvc "github.com/accswap/accswap-backend/internal/listings"
	profilesvc "github.com/accswap/accswap-backend/internal/profiles"
	"github.com/accswap/accswap-backend/pkg/enums"
	pkgerrors "github.com/accswap/accswap-backend/pkg/errors"
	"github.com/accswap/accswap-backend/pkg/logger"
)

func AdminListingVerify(svc listingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		listingID, err := pathUUID(r, "listingId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Verify(ctx, listingID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "verified"})
	}
}

func AdminVerifyPhone(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		userID, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.VerifyPhone(ctx, userID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "phone_verified"})
	}
}

// AdminTransactionsList filters the escrow ledger by status.
func AdminTransactionsList(svc escrow.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "escrow service unavailable"))
			return
		}

		status, err := enums.ParseTransactionStatus(r.URL.Query().Get("status"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
			return
		}

		transactions, err := svc.ListByStatus(ctx, status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"transactions": transactions})
	}
}

type stageCredentialRequest struct {
	Credential string `json:"credential"`
}

// AdminStageCredential seals the delivery credential for a transaction.
// An empty credential asks the server to generate one.
func AdminStageCredential(svc escrow.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "escrow service unavailable"))
			return
		}

		transactionID, err := pathUUID(r, "transactionId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload stageCredentialRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		staged, err := svc.StageCredential(ctx, transactionID, payload.Credential)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, staged)
	}
}

type bulkTransactionRequest struct {
	TransactionIDs []uuid.UUID `json:"transaction_ids" validate:"required,min=1,dive,required"`
}

func AdminMarkDeliveryPending(svc escrow.Service, logg *logger.Logger) http.HandlerFunc {
	return bulkTransactionAction(svc, logg, func(r *http.Request, ids []uuid.UUID) (*escrow.BulkResult, error) {
		return svc.MarkDeliveryPending(r.Context(), ids)
	})
}

func AdminMarkComplete(svc escrow.Service, logg *logger.Logger) http.HandlerFunc {
	return bulkTransactionAction(svc, logg, func(r *http.Request, ids []uuid.UUID) (*escrow.BulkResult, error) {
		return svc.MarkComplete(r.Context(), ids)
	})
}

// bulkTransactionAction reports partial success with a 207 so the admin
// console can show which rows failed.
func bulkTransactionAction(svc escrow.Service, logg *logger.Logger, action func(*http.Request, []uuid.UUID) (*escrow.BulkResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "escrow service unavailable"))
			return
		}

		var payload bulkTransactionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := action(r, payload.TransactionIDs)
		if err != nil {
			if result != nil && len(result.Updated) > 0 {
				logg.Error(ctx, "bulk transaction action partially failed", err)
				responses.WriteSuccessStatus(w, http.StatusMultiStatus, result)
				return
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type overrideRequest struct {
	Status string `json:"status" validate:"required,oneof=disputed cancelled"`
}

func AdminOverride(svc escrow.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "escrow service unavailable"))
			return
		}

		transactionID, err := pathUUID(r, "transactionId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload overrideRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		target, err := enums.ParseTransactionStatus(payload.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid override status"))
			return
		}

		transaction, err := svc.Override(ctx, transactionID, target)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, transaction)
	}
}
