package http

import (
	"net/http"

	"github.com/famwell-api/internal/application/activity"
	identityapp "github.com/famwell-api/internal/application/identity"
	"github.com/famwell-api/internal/application/mood"
	"github.com/famwell-api/internal/application/notification"
	"github.com/famwell-api/internal/application/provisioning"
	"github.com/famwell-api/internal/application/session"
	"github.com/famwell-api/internal/config"
	"github.com/famwell-api/internal/domain"
	"github.com/famwell-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/famwell-api/internal/infrastructure/jwt"
	s3infra "github.com/famwell-api/internal/infrastructure/s3"
	"github.com/famwell-api/internal/infrastructure/smtp"
	"github.com/famwell-api/internal/infrastructure/sns"
	"github.com/famwell-api/internal/transport/http/handler"
	appmiddleware "github.com/famwell-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	IdentityRepo     *dynamo.IdentityRepo
	OneTimeCodeRepo  *dynamo.OneTimeCodeRepo
	FamilyLinkRepo   *dynamo.FamilyLinkRepo
	SessionRepo      *dynamo.SessionRepo
	DeviceRepo       *dynamo.DeviceRepo
	MoodRepo         *dynamo.MoodRepo
	ActivityRepo     *dynamo.ActivityRepo
	NotificationRepo *dynamo.NotificationRepo
	S3Store          *s3infra.Store
	Mailer           smtp.Mailer
	SMSSender        sns.SMSSender
	JWTProvider      *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	sessionSvc := session.NewService(session.ServiceDeps{
		SessionRepo:     deps.SessionRepo,
		IdentityRepo:    deps.IdentityRepo,
		DeviceRepo:      deps.DeviceRepo,
		JWTProvider:     deps.JWTProvider,
		RefreshTokenDur: cfg.RefreshTokenDur,
	})
	provisioningSvc := provisioning.NewService(provisioning.ServiceDeps{
		IdentityRepo:     deps.IdentityRepo,
		CodeRepo:         deps.OneTimeCodeRepo,
		LinkRepo:         deps.FamilyLinkRepo,
		SessionRepo:      deps.SessionRepo,
		NotificationRepo: deps.NotificationRepo,
		Mailer:           deps.Mailer,
		SMSSender:        deps.SMSSender,
		CodeLength:       cfg.CodeLength,
		CodeTTL:          cfg.CodeTTL,
		PasswordMinLen:   cfg.PasswordMinLen,
	})
	identityDeps := identityapp.ServiceDeps{
		IdentityRepo: deps.IdentityRepo,
		LinkRepo:     deps.FamilyLinkRepo,
		SessionRepo:  deps.SessionRepo,
		ContentType:  s3infra.DetectImageContentType,
	}
	if deps.S3Store != nil {
		identityDeps.AvatarStore = deps.S3Store
	}
	identitySvc := identityapp.NewService(identityDeps)
	moodSvc := mood.NewService(mood.ServiceDeps{
		MoodRepo: deps.MoodRepo,
		LinkRepo: deps.FamilyLinkRepo,
	})
	activitySvc := activity.NewService(deps.ActivityRepo)
	notifSvc := notification.NewService(deps.NotificationRepo)

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(sessionSvc)
	provisioningH := handler.NewProvisioningHandler(provisioningSvc, sessionSvc)
	identityH := handler.NewIdentityHandler(identitySvc, sessionSvc)
	moodH := handler.NewMoodHandler(moodSvc)
	activityH := handler.NewActivityHandler(activitySvc)
	notifH := handler.NewNotificationHandler(notifSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.With(sensitiveRL.Limit).Post("/identities", identityH.RegisterParent)
		r.With(sensitiveRL.Limit).Post("/codes/redeem", provisioningH.Redeem)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			// Any authenticated identity
			r.Post("/identities/password", provisioningH.SetPassword)
			r.Post("/identities/change-password", identityH.ChangePassword)
			r.Post("/identities/avatar", identityH.UploadAvatar)
			r.Get("/identities/{id}", identityH.Get)
			r.Put("/identities/{id}", identityH.Update)
			r.Delete("/identities/{id}", identityH.Delete)
			r.Get("/identities/{id}/avatar", identityH.AvatarURL)
			r.Post("/moods", moodH.CheckIn)
			r.Get("/moods/{id}", moodH.List)
			r.Get("/moods/{id}/summary", moodH.Summary)
			r.Get("/activities", activityH.List)
			r.Get("/activities/{id}", activityH.Get)
			r.Get("/notifications", notifH.ListUnread)
			r.Put("/notifications/{id}", notifH.MarkAsRead)

			// Parent-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleParent))

				r.Post("/codes", provisioningH.Generate)
				r.Post("/codes/reset", provisioningH.Reset)
				r.Get("/children", identityH.ListChildren)

				r.Post("/activities", activityH.Create)
				r.Put("/activities/{id}", activityH.Update)
				r.Delete("/activities/{id}", activityH.Delete)
			})
		})
	})

	return r
}
