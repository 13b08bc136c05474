package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/parceltrax/tracking-system/internal/api/handler"
	"github.com/parceltrax/tracking-system/internal/api/middleware"
	"github.com/parceltrax/tracking-system/internal/core/ports"
	"github.com/parceltrax/tracking-system/internal/core/service"
	mongorepo "github.com/parceltrax/tracking-system/internal/infrastructure/db/mongo"

	_ "github.com/parceltrax/tracking-system/docs" // swagger spec
)

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	packages ports.PackageService,
	refresh ports.RefreshService,
	jwtSecret string,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("tracking"))

	// --- Auth ---
	authRepo := mongorepo.NewAuthRepository(db)
	authService := service.NewAuthService(authRepo, jwtSecret, 24*time.Hour)
	authHandler := handler.NewAuthHandler(authService)
	authMiddleware := middleware.Auth(jwtSecret)

	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Tracking ---
	packageHandler := handler.NewPackageHandler(packages, refresh)

	v1 := e.Group("/v1", authMiddleware)
	v1.POST("/track", packageHandler.Create)
	v1.GET("/track", packageHandler.List)
	v1.GET("/track/:tracking_number", packageHandler.Refresh)
	v1.DELETE("/track/:tracking_number", packageHandler.Delete)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	return e
}
