package controllers

import (
	"net/http"

	"github.com/accswap/accswap-backend/api/responses"
	"github.com/accswap/accswap-backend/api/validators"
	profilesvc "github.com/accswap/accswap-backend/internal/profiles"
	pkgerrors "github.com/accswap/accswap-backend/pkg/errors"
	"github.com/accswap/accswap-backend/pkg/logger"
)

func ProfileGet(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		profile, err := svc.Get(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

type updateProfileRequest struct {
	PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,min=8,max=20"`
	PayoutVPA   *string `json:"payout_vpa,omitempty" validate:"omitempty,min=3,max=120"`
}

func ProfileUpdate(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "profile service unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		profile, err := svc.Update(ctx, userID, profilesvc.UpdateProfileDTO{
			PhoneNumber: payload.PhoneNumber,
			PayoutVPA:   payload.PayoutVPA,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
