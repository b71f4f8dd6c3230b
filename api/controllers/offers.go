package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/accswap/accswap-backend/api/responses"
	"github.com/accswap/accswap-backend/api/validators"
	offersvc "github.com/accswap/accswap-backend/internal/offers"
	pkgerrors "github.com/accswap/accswap-backend/pkg/errors"
	"github.com/accswap/accswap-backend/pkg/logger"
)

type createOfferRequest struct {
	ListingID uuid.UUID       `json:"listing_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
}

func OfferCreate(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		buyerID, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createOfferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		offer, err := svc.Create(ctx, offersvc.CreateOfferDTO{
			BuyerID:   buyerID,
			ListingID: payload.ListingID,
			Amount:    payload.Amount,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, offer)
	}
}

// OfferInbox lists the caller's offers, made and received.
func OfferInbox(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		inbox, err := svc.Inbox(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, inbox)
	}
}

type offerDecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accept reject"`
}

func OfferDecision(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		offerID, err := pathUUID(r, "offerId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload offerDecisionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		decision, err := offersvc.ParseDecision(payload.Decision)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid decision"))
			return
		}

		offer, err := svc.Decide(ctx, sellerID, offerID, decision)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}
