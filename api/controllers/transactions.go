package controllers

import (
	"net/http"

	"github.com/accswap/accswap-backend/api/responses"
	"github.com/accswap/accswap-backend/internal/escrow"
	pkgerrors "github.com/accswap/accswap-backend/pkg/errors"
	"github.com/accswap/accswap-backend/pkg/logger"
)

func TransactionList(svc escrow.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "escrow service unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		transactions, err := svc.ListForUser(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"transactions": transactions})
	}
}

func TransactionGet(svc escrow.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "escrow service unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		transactionID, err := pathUUID(r, "transactionId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		transaction, err := svc.Get(ctx, userID, transactionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, transaction)
	}
}

// TransactionCredentials hands the buyer the delivery credential while
// the transaction is awaiting delivery confirmation.
func TransactionCredentials(svc escrow.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "escrow service unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		transactionID, err := pathUUID(r, "transactionId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		credential, err := svc.Credentials(ctx, userID, transactionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"credential": credential})
	}
}
