package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/siteworks/records-api/internal/api/handler"
	"github.com/siteworks/records-api/internal/api/middleware"
	"github.com/siteworks/records-api/internal/core/policy"
	"github.com/siteworks/records-api/internal/core/ports"
)

// Services bundles the core services the router exposes over HTTP.
type Services struct {
	Auth     ports.AuthService
	Workflow ports.WorkflowService
	Users    ports.UserService
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svcs Services, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("site_records"))

	authMW := middleware.Auth(svcs.Auth)

	authHandler := handler.NewAuthHandler(svcs.Auth)
	recordHandler := handler.NewRecordHandler(svcs.Workflow)
	commentHandler := handler.NewCommentHandler(svcs.Workflow)
	userHandler := handler.NewUserHandler(svcs.Users)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authMW)
	e.GET("/me", authHandler.Me, authMW)

	v1 := e.Group("/v1", authMW)

	// --- Progress records ---
	v1.POST("/progress", recordHandler.CreateProgress, middleware.RequireAction(policy.ActionCreateProgress))
	v1.GET("/progress", recordHandler.ListProgress)
	v1.PATCH("/progress/:id/approve", recordHandler.ApproveProgress, middleware.RequireAction(policy.ActionReview))

	// --- Payment records ---
	v1.POST("/payments", recordHandler.CreatePayment, middleware.RequireAction(policy.ActionCreatePayment))
	v1.GET("/payments", recordHandler.ListPayments)
	v1.PATCH("/payments/:id/approve", recordHandler.ApprovePayment, middleware.RequireAction(policy.ActionReview))
	v1.PATCH("/payments/by-payment-id/:payment_id/approve", recordHandler.ApprovePaymentByPaymentID, middleware.RequireAction(policy.ActionReview))
	v1.DELETE("/payments/:id", recordHandler.DeletePayment)

	// --- Comments ---
	v1.GET("/comments", commentHandler.List)
	v1.POST("/comments", commentHandler.Create)

	// --- User management (admin only) ---
	users := v1.Group("/users", middleware.RequireAction(policy.ActionManageUsers))
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.DELETE("/:id", userHandler.Delete)
	users.PATCH("/:id/role", userHandler.ChangeRole)

	// --- Observability and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
