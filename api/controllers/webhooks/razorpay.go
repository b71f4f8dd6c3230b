package webhooks

import (
	"io"
	"net/http"

	"github.com/accswap/accswap-backend/api/responses"
	razorpaywebhook "github.com/accswap/accswap-backend/internal/webhooks/razorpay"
	pkgerrors "github.com/accswap/accswap-backend/pkg/errors"
	"github.com/accswap/accswap-backend/pkg/logger"
)

const maxWebhookBody = 1 << 20

type signatureVerifier interface {
	VerifyWebhookSignature(body []byte, signature string) bool
}

// RazorpayWebhook verifies and processes gateway deliveries. Anything
// that fails verification is rejected before any state can change.
func RazorpayWebhook(svc *razorpaywebhook.Service, verifier signatureVerifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if verifier == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gateway client unavailable"))
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		signature := r.Header.Get("X-Razorpay-Signature")
		if signature == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "webhook signature missing"))
			return
		}
		if !verifier.VerifyWebhookSignature(body, signature) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid webhook signature"))
			return
		}

		eventID := r.Header.Get("X-Razorpay-Event-Id")
		if err := svc.Process(ctx, body, eventID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
