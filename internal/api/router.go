package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/veriflow/kyc-system/internal/api/handler"
	"github.com/veriflow/kyc-system/internal/api/middleware"
	"github.com/veriflow/kyc-system/internal/core/domain"
	"github.com/veriflow/kyc-system/internal/core/ports"
	"github.com/veriflow/kyc-system/internal/infrastructure/http/handlers"
	"github.com/veriflow/kyc-system/internal/infrastructure/queue"
)

// Dependencies carries everything the router needs. Construction of the
// services happens in main so the same wiring serves tests.
type Dependencies struct {
	Verification ports.VerificationService
	Reviews      ports.ReviewService
	Auth         ports.AuthService
	Dispatcher   *queue.Dispatcher

	Mongo     *mongo.Database
	Redis     *redis.Client
	JWTSecret string
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("kyc"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	applicantHandler := handler.NewApplicantHandler(deps.Verification)
	reviewHandler := handler.NewReviewHandler(deps.Reviews, deps.Verification, deps.Dispatcher)
	auditHandler := handler.NewAuditHandler(deps.Reviews)

	authMiddleware := middleware.Auth(deps.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register, authMiddleware)

	// --- Public submission ---
	e.POST("/v1/applicants", applicantHandler.Submit)

	// --- Admin routes ---
	admin := e.Group("/v1", authMiddleware, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/applicants", applicantHandler.List)
	admin.GET("/applicants/stats", applicantHandler.Stats)
	admin.GET("/applicants/:id", applicantHandler.Get)
	admin.POST("/applicants/:id/status", reviewHandler.Transition)
	admin.POST("/applicants/:id/reevaluate", reviewHandler.Reevaluate)
	admin.GET("/audit", auditHandler.List)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
