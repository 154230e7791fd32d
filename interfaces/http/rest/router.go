package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"boardcore/application/ports"
	dynamodbinfra "boardcore/infrastructure/persistence/dynamodb"
	"boardcore/interfaces/http/rest/handlers"
	"boardcore/interfaces/http/rest/middleware"
	"boardcore/pkg/auth"
)

// Router creates and configures the HTTP router
type Router struct {
	boards      ports.BoardRepository
	events      ports.EventStore
	storage     ports.BlobStorage
	saveLock    *dynamodbinfra.BoardLock
	validator   *auth.JWTValidator
	ipLimiter   *auth.IPRateLimiter
	userLimiter *auth.UserRateLimiter
	logger      *zap.Logger
}

// NewRouter creates a new router instance. events, storage, saveLock,
// and the limiters may be nil; their behavior degrades accordingly.
func NewRouter(
	boards ports.BoardRepository,
	events ports.EventStore,
	storage ports.BlobStorage,
	saveLock *dynamodbinfra.BoardLock,
	validator *auth.JWTValidator,
	ipLimiter *auth.IPRateLimiter,
	userLimiter *auth.UserRateLimiter,
	logger *zap.Logger,
) *Router {
	return &Router{
		boards:      boards,
		events:      events,
		storage:     storage,
		saveLock:    saveLock,
		validator:   validator,
		ipLimiter:   ipLimiter,
		userLimiter: userLimiter,
		logger:      logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://*.boardcore.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator, rt.ipLimiter, rt.userLimiter, rt.logger))

		r.Route("/boards", func(r chi.Router) {
			boardHandler := handlers.NewBoardHandler(rt.boards, rt.events, rt.saveLock, rt.logger)
			r.Post("/", boardHandler.CreateBoard)
			r.Get("/", boardHandler.ListBoards)
			r.Get("/{boardID}", boardHandler.GetBoard)
			r.Put("/{boardID}", boardHandler.SaveBoard)
			r.Delete("/{boardID}", boardHandler.DeleteBoard)
			r.Post("/{boardID}/bookmarks", boardHandler.CreateBookmark)
			r.Delete("/{boardID}/bookmarks/{bookmarkID}", boardHandler.DeleteBookmark)
		})

		if rt.storage != nil {
			r.Route("/media", func(r chi.Router) {
				mediaHandler := handlers.NewMediaHandler(rt.storage, rt.logger)
				r.Get("/{fileID}/url", mediaHandler.ResolveURL)
				r.Delete("/{fileID}", mediaHandler.Delete)
			})
		}
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
