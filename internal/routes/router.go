package routes

import (
	"net/http"

	"seyyar/internal/app"
	"seyyar/internal/delivery/http/handler"
	"seyyar/internal/logger"
	"seyyar/internal/middleware"

	"github.com/gin-gonic/gin"
)

const healthPath = "/health"

// SetupRoutes builds the HTTP API over c. The returned limiter must be stopped on
// shutdown.
func SetupRoutes(c *app.Container) (*gin.Engine, *middleware.RateLimiter) {
	cfg := c.Config
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	limiter := middleware.NewRateLimiter(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst)

	// order: recovery, request ID, logging, security headers, CORS, request size, rate limit
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(healthPath))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RateLimitMiddleware(limiter))

	router.GET(healthPath, func(ctx *gin.Context) {
		if err := c.Health(); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	userHandler := handler.NewUserHandler(c.UserService)
	carHandler := handler.NewCarHandler(c.CarService)
	reservationHandler := handler.NewReservationHandler(c.ReservationService)
	catalogHandler := handler.NewCatalogHandler(c.Catalog)
	mediaHandler := handler.NewMediaHandler(c.Blobs)

	bodyLimit := middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize)

	v1 := router.Group("/api/v1")
	{
		mediaHandler.RegisterRoutes(v1)
		catalogHandler.RegisterRoutes(v1)

		accounts := v1.Group("")
		accounts.Use(bodyLimit, middleware.NoStoreMiddleware())
		userHandler.RegisterRoutes(accounts)

		public := v1.Group("")
		public.Use(bodyLimit, middleware.OptionalAuthMiddleware(cfg))
		{
			carHandler.RegisterRoutes(public)
			reservationHandler.RegisterRoutes(public)
		}

		protected := v1.Group("")
		protected.Use(bodyLimit, middleware.AuthMiddleware(cfg), middleware.NoStoreMiddleware())
		{
			userHandler.RegisterProfileRoutes(protected)
			reservationHandler.RegisterProtectedRoutes(protected)
			carHandler.RegisterOwnerRoutes(protected)

			renter := protected.Group("")
			renter.Use(middleware.RenterOnly(c.UserService))
			carHandler.RegisterRenterRoutes(renter)
		}

		uploads := v1.Group("")
		uploads.Use(
			middleware.RequestSizeLimitMiddleware(middleware.MaxUploadSize),
			middleware.AuthMiddleware(cfg),
			middleware.RenterOnly(c.UserService),
		)
		carHandler.RegisterUploadRoutes(uploads)
	}

	logger.Info("All routes initialized")
	return router, limiter
}
