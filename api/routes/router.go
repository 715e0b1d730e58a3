package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rgavilanm/localspot-backend/api/controllers"
	"github.com/rgavilanm/localspot-backend/api/middleware"
	"github.com/rgavilanm/localspot-backend/internal/businesses"
	"github.com/rgavilanm/localspot-backend/internal/identity"
	"github.com/rgavilanm/localspot-backend/internal/media"
	"github.com/rgavilanm/localspot-backend/internal/reviews"
	"github.com/rgavilanm/localspot-backend/internal/saved"
	"github.com/rgavilanm/localspot-backend/internal/session"
	"github.com/rgavilanm/localspot-backend/pkg/config"
	"github.com/rgavilanm/localspot-backend/pkg/db"
	"github.com/rgavilanm/localspot-backend/pkg/enums"
	"github.com/rgavilanm/localspot-backend/pkg/logger"
	"github.com/rgavilanm/localspot-backend/pkg/redis"
	"github.com/rgavilanm/localspot-backend/pkg/storage/gcs"
)

type sessionManager interface {
	middleware.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      db.Pinger
	Redis   *redis.Client
	GCS     gcs.Pinger
	Session sessionManager

	IdentityService identity.Service
	SessionService  session.Service
	BusinessService businesses.Service
	ReviewService   reviews.Service
	SavedService    saved.Service
	MediaService    media.Service

	Metrics prometheus.Gatherer
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	challengePolicy := middleware.NewAuthRateLimitPolicy(
		"challenge",
		cfg.AuthRateLimit.ChallengeWindow,
		cfg.AuthRateLimit.ChallengeIPLimit,
		cfg.AuthRateLimit.ChallengeAddressLimit,
	)
	verifyPolicy := middleware.NewAuthRateLimitPolicy(
		"verify",
		cfg.AuthRateLimit.VerifyWindow,
		cfg.AuthRateLimit.VerifyIPLimit,
		cfg.AuthRateLimit.VerifyAddressLimit,
	)

	var redisPinger redis.Pinger
	if p.Redis != nil {
		redisPinger = p.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, redisPinger, p.GCS))
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(challengePolicy, p.Redis, logg)).Post("/challenge", controllers.AuthChallenge(p.IdentityService, logg))
		r.With(middleware.AuthRateLimit(verifyPolicy, p.Redis, logg)).Post("/verify", controllers.AuthVerify(p.IdentityService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Session, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(p.Session, cfg.JWT, logg))
		r.Post("/disconnect", controllers.SessionDisconnect(p.SessionService, cfg.JWT, logg))
	})

	auth := middleware.Auth(cfg.JWT, p.Session, logg)

	// Browse is public; mutations on the same tree require a session.
	r.Route("/api/v1/businesses", func(r chi.Router) {
		r.Get("/", controllers.BusinessSearch(p.BusinessService, logg))
		r.Get("/slug/{slug}", controllers.BusinessGetBySlug(p.BusinessService, logg))
		r.With(auth).Post("/", controllers.BusinessCreate(p.BusinessService, logg))

		r.Route("/{businessID}", func(r chi.Router) {
			r.Get("/", controllers.BusinessGet(p.BusinessService, logg))
			r.With(auth).Patch("/", controllers.BusinessUpdate(p.BusinessService, logg))
			r.With(auth).Delete("/", controllers.BusinessDelete(p.BusinessService, logg))

			r.Route("/reviews", func(r chi.Router) {
				r.Get("/", controllers.ReviewList(p.ReviewService, logg))
				r.With(auth).Post("/", controllers.ReviewCreate(p.ReviewService, logg))
			})

			r.Route("/images", func(r chi.Router) {
				r.Get("/", controllers.MediaList(p.MediaService, logg))
				r.With(auth).Post("/presign", controllers.MediaPresign(p.MediaService, logg))
				r.With(auth).Post("/", controllers.MediaAttach(p.MediaService, logg))
			})
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(auth)

		r.Route("/v1/me", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(p.SessionService, logg))
			r.Patch("/", controllers.ProfileUpdate(p.SessionService, logg))
			r.Get("/hints", controllers.SessionHints(p.SessionService, logg))

			r.Route("/saved", func(r chi.Router) {
				r.Get("/", controllers.SavedList(p.SavedService, logg))
				r.Get("/ids", controllers.SavedListIDs(p.SavedService, logg))
				r.Put("/{businessID}", controllers.SavedAdd(p.SavedService, logg))
				r.Delete("/{businessID}", controllers.SavedRemove(p.SavedService, logg))
			})

			r.With(middleware.RequireAnyRole(logg, string(enums.UserRoleBusinessOwner), string(enums.UserRoleAdmin))).
				Get("/businesses", controllers.BusinessListOwn(p.BusinessService, logg))
		})

		r.Route("/v1/reviews", func(r chi.Router) {
			r.Patch("/{reviewID}", controllers.ReviewUpdate(p.ReviewService, logg))
			r.Delete("/{reviewID}", controllers.ReviewDelete(p.ReviewService, logg))
		})

		r.Delete("/v1/images/{imageID}", controllers.MediaDelete(p.MediaService, logg))
	})

	return r
}
