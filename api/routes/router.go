package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/northfiber/fiberops-backend/api/controllers"
	"github.com/northfiber/fiberops-backend/api/middleware"
	"github.com/northfiber/fiberops-backend/internal/auth"
	"github.com/northfiber/fiberops-backend/internal/campaigns"
	"github.com/northfiber/fiberops-backend/internal/customers"
	"github.com/northfiber/fiberops-backend/internal/geocode"
	"github.com/northfiber/fiberops-backend/internal/mailer"
	"github.com/northfiber/fiberops-backend/internal/marketing"
	"github.com/northfiber/fiberops-backend/internal/realtime"
	"github.com/northfiber/fiberops-backend/pkg/auth/session"
	"github.com/northfiber/fiberops-backend/pkg/config"
	"github.com/northfiber/fiberops-backend/pkg/db"
	"github.com/northfiber/fiberops-backend/pkg/enums"
	"github.com/northfiber/fiberops-backend/pkg/logger"
	"github.com/northfiber/fiberops-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps bundles everything the router mounts.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionManager sessionManager
	AuthService    auth.Service
	Register       auth.RegisterService
	Customers      customers.Service
	Mail           mailer.Service
	Geocode        *geocode.Service
	Campaigns      campaigns.Service
	Marketing      marketing.Service
	Hub            *realtime.Hub
	Metrics        http.Handler
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

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Register, deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))
		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/customers", func(r chi.Router) {
			r.Get("/", controllers.CustomerList(deps.Customers, logg))
			r.Post("/", controllers.CustomerCreate(deps.Customers, logg))
			r.Route("/{customerId}", func(r chi.Router) {
				r.Get("/", controllers.CustomerDetail(deps.Customers, logg))
				r.Get("/stage-page", controllers.CustomerStagePage(deps.Customers, logg))
				r.Patch("/", controllers.CustomerPatch(deps.Customers, logg))
				r.Delete("/", controllers.CustomerDelete(deps.Customers, logg))
				r.Post("/transition", controllers.CustomerTransition(deps.Customers, logg))
				r.Post("/release", controllers.CustomerRelease(deps.Customers, logg))
				r.Post("/splice/complete", controllers.CustomerCompleteSplice(deps.Customers, logg))
				r.Post("/welcome-email", controllers.MailSendWelcome(deps.Mail, logg))
				r.Post("/geocode", controllers.GeocodeResolve(deps.Geocode, logg))
			})
		})

		r.Route("/v1/views", func(r chi.Router) {
			r.Get("/tracker", controllers.ViewsTracker(deps.Customers, logg))
			r.Get("/drops", controllers.ViewsDrops(deps.Customers, logg))
			r.Get("/splicing", controllers.ViewsSplicing(deps.Customers, logg))
			r.Get("/splicers", controllers.ViewsSplicers(deps.Customers, logg))
			r.Get("/splicers/{splicerName}", controllers.ViewsSplicerTab(deps.Customers, logg))
			r.Get("/map", controllers.ViewsMap(deps.Customers, logg))
		})

		r.Route("/v1/geocode", func(r chi.Router) {
			r.Post("/plot", controllers.GeocodeBulkPlot(deps.Geocode, logg))
			r.With(middleware.RequireRole(string(enums.UserRoleAdmin), logg)).
				Post("/replot", controllers.GeocodeReplotAll(deps.Geocode, logg))
		})

		r.Route("/v1/campaigns", func(r chi.Router) {
			r.Get("/", controllers.CampaignList(deps.Campaigns, logg))
			r.Post("/", controllers.CampaignCreate(deps.Campaigns, logg))
			r.Route("/{campaignId}", func(r chi.Router) {
				r.Get("/", controllers.CampaignDetail(deps.Campaigns, logg))
				r.Put("/", controllers.CampaignUpdate(deps.Campaigns, logg))
				r.Delete("/", controllers.CampaignDelete(deps.Campaigns, logg))
				r.Post("/refresh-count", controllers.CampaignRefreshCount(deps.Campaigns, logg))
			})
		})

		r.Route("/v1/marketing/points", func(r chi.Router) {
			r.Get("/", controllers.MarketingList(deps.Marketing, logg))
			r.Get("/export", controllers.MarketingExportCSV(deps.Marketing, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
				r.Put("/", controllers.MarketingReplace(deps.Marketing, logg))
				r.Post("/import", controllers.MarketingImportCSV(deps.Marketing, logg))
			})
		})

		r.Route("/v1/mail", func(r chi.Router) {
			r.Get("/", controllers.MailList(deps.Mail, logg))
		})

		r.Post("/v1/intake/extract", controllers.IntakeExtract(logg))

		r.Get("/v1/feed", controllers.Feed(deps.Hub, logg))
	})

	return r
}
