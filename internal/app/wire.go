package app

import (
	"log/slog"
	"time"

	"github.com/footyheroes/platform/internal/auth"
	"github.com/footyheroes/platform/internal/guard"
	"github.com/footyheroes/platform/internal/handler"
	"github.com/footyheroes/platform/internal/notify"
	"github.com/footyheroes/platform/internal/repository"
	"github.com/footyheroes/platform/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool       *pgxpool.Pool
	JWTMgr     *auth.JWTManager
	Dispatcher notify.Dispatcher
	Logger     *slog.Logger
}

// Services bundles the constructed service layer so binaries other than the
// API (the sweeper) can reuse the same wiring.
type Services struct {
	Auth       *service.AuthService
	Roster     *service.RosterService
	Reputation *service.ReputationService
	Sanctions  *service.SanctionService
	Requests   *service.RequestService
}

// BuildServices constructs the repository and service graph.
func BuildServices(deps RouterDeps) *Services {
	playerRepo := repository.NewPlayerRepository()
	matchRepo := repository.NewMatchRepository()
	ratingRepo := repository.NewRatingRepository()
	reportRepo := repository.NewReportRepository()
	requestRepo := repository.NewRequestRepository()
	outboxRepo := repository.NewOutboxRepository()
	authUserRepo := repository.NewAuthUserRepository()

	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = notify.NoopDispatcher{}
	}

	return &Services{
		Auth: service.NewAuthService(deps.Pool, authUserRepo, playerRepo, deps.JWTMgr).
			WithLoginGuard(guard.NewLoginGuard(deps.Pool)),
		Roster:     service.NewRosterService(deps.Pool, matchRepo, playerRepo, outboxRepo, deps.Logger),
		Reputation: service.NewReputationService(deps.Pool, ratingRepo, playerRepo, matchRepo, reportRepo, outboxRepo, deps.Logger),
		Sanctions:  service.NewSanctionService(deps.Pool, reportRepo, playerRepo, matchRepo, outboxRepo, deps.Logger),
		Requests:   service.NewRequestService(deps.Pool, requestRepo, matchRepo, playerRepo, outboxRepo, dispatcher, deps.Logger),
	}
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	svcs := BuildServices(deps)

	authHandler := handler.NewAuthHandler(svcs.Auth)
	matchHandler := handler.NewMatchHandler(svcs.Roster)
	repHandler := handler.NewReputationHandler(svcs.Reputation, svcs.Sanctions)
	requestHandler := handler.NewRequestHandler(svcs.Requests)
	adminHandler := handler.NewAdminHandler(svcs.Sanctions)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS)
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// Auth routes (no auth, rate limited per client address)
	r.Route("/auth", func(r chi.Router) {
		r.Use(handler.RateLimit(guard.NewRateLimiter(30, time.Minute)))
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Player-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticatePlayer(jwtMgr))
		r.Use(handler.IdempotencyKey(guard.NewIdempotencyGuard(time.Hour)))

		r.Route("/matches", func(r chi.Router) {
			r.Post("/", matchHandler.Create)
			r.Get("/nearby", matchHandler.Nearby)
			r.Get("/{matchID}", matchHandler.Get)
			r.Post("/{matchID}/join", matchHandler.Join)
			r.Post("/{matchID}/leave", matchHandler.Leave)
			r.Post("/{matchID}/start", matchHandler.Start)
			r.Post("/{matchID}/complete", matchHandler.Complete)
			r.Post("/{matchID}/cancel", matchHandler.Cancel)
		})

		r.Post("/ratings", repHandler.SubmitRating)
		r.Post("/reports", repHandler.SubmitReport)
		r.Get("/players/{playerID}/reputation", repHandler.Profile)

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", requestHandler.Create)
			r.Get("/{requestID}", requestHandler.Get)
			r.Post("/{requestID}/broadcast", requestHandler.Broadcast)
			r.Post("/{requestID}/respond", requestHandler.Respond)
			r.Post("/{requestID}/join", requestHandler.Join)
			r.Post("/{requestID}/cancel", requestHandler.Cancel)
			r.Get("/{requestID}/analytics", requestHandler.Analytics)
		})
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(jwtMgr))

		r.Get("/reports", adminHandler.ReviewQueue)
		r.Post("/reports/{reportID}/escalate", adminHandler.Escalate)
		r.Post("/reports/{reportID}/dismiss", adminHandler.Dismiss)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.SanctionRoles()...))
			r.Post("/reports/{reportID}/resolve", adminHandler.Resolve)
		})
	})

	return r
}
