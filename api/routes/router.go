package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/accswap/accswap-backend/api/controllers"
	webhookcontrollers "github.com/accswap/accswap-backend/api/controllers/webhooks"
	"github.com/accswap/accswap-backend/api/middleware"
	authsvc "github.com/accswap/accswap-backend/internal/auth"
	"github.com/accswap/accswap-backend/internal/escrow"
	listingsvc "github.com/accswap/accswap-backend/internal/listings"
	offersvc "github.com/accswap/accswap-backend/internal/offers"
	profilesvc "github.com/accswap/accswap-backend/internal/profiles"
	razorpaywebhook "github.com/accswap/accswap-backend/internal/webhooks/razorpay"
	"github.com/accswap/accswap-backend/pkg/auth/session"
	"github.com/accswap/accswap-backend/pkg/config"
	"github.com/accswap/accswap-backend/pkg/db"
	"github.com/accswap/accswap-backend/pkg/logger"
	"github.com/accswap/accswap-backend/pkg/razorpay"
	"github.com/accswap/accswap-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           redis.Pinger
	Sessions        session.AccessSessionChecker
	Metrics         prometheus.Gatherer
	AuthService     authsvc.Service
	RegisterService authsvc.RegisterService
	ListingService  listingsvc.Service
	OfferService    offersvc.Service
	ProfileService  profilesvc.Service
	EscrowService   escrow.Service
	WebhookService  *razorpaywebhook.Service
	Gateway         *razorpay.Client
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessDeps(deps)))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(deps.RegisterService, deps.AuthService, logg))
		r.Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/razorpay", webhookcontrollers.RazorpayWebhook(deps.WebhookService, deps.Gateway, logg))
	})

	// The marketplace feed is public; everything mutating requires auth.
	r.Get("/api/v1/listings", controllers.ListingsList(deps.ListingService, logg))
	r.Get("/api/v1/listings/{listingId}", controllers.ListingGet(deps.ListingService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Post("/listings", controllers.ListingCreate(deps.ListingService, logg))
		r.Patch("/listings/{listingId}", controllers.ListingUpdate(deps.ListingService, logg))
		r.Delete("/listings/{listingId}", controllers.ListingDelete(deps.ListingService, logg))
		r.Post("/listings/{listingId}/purchase", controllers.ListingPurchase(deps.EscrowService, logg))

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.TransactionList(deps.EscrowService, logg))
			r.Get("/{transactionId}", controllers.TransactionGet(deps.EscrowService, logg))
			r.Get("/{transactionId}/credentials", controllers.TransactionCredentials(deps.EscrowService, logg))
		})

		r.Route("/offers", func(r chi.Router) {
			r.Post("/", controllers.OfferCreate(deps.OfferService, logg))
			r.Get("/", controllers.OfferInbox(deps.OfferService, logg))
			r.Post("/{offerId}/decision", controllers.OfferDecision(deps.OfferService, logg))
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(deps.ProfileService, logg))
			r.Put("/", controllers.ProfileUpdate(deps.ProfileService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Post("/listings/{listingId}/verify", controllers.AdminListingVerify(deps.ListingService, logg))
		r.Post("/profiles/{userId}/verify-phone", controllers.AdminVerifyPhone(deps.ProfileService, logg))

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.AdminTransactionsList(deps.EscrowService, logg))
			r.Post("/{transactionId}/credential", controllers.AdminStageCredential(deps.EscrowService, logg))
			r.Post("/mark-delivery-pending", controllers.AdminMarkDeliveryPending(deps.EscrowService, logg))
			r.Post("/mark-complete", controllers.AdminMarkComplete(deps.EscrowService, logg))
			r.Post("/{transactionId}/override", controllers.AdminOverride(deps.EscrowService, logg))
		})
	})

	return r
}

func readinessDeps(deps Deps) map[string]controllers.Pinger {
	out := map[string]controllers.Pinger{}
	if deps.DB != nil {
		out["database"] = deps.DB
	}
	if deps.Redis != nil {
		out["redis"] = deps.Redis
	}
	return out
}
