package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/TimmyMalatjie/timmy-gym-demo/internal/auth"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/booking"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/catalog"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/config"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/membership"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/notification"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/trainer"
	"github.com/TimmyMalatjie/timmy-gym-demo/internal/user"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, notifier *notification.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
	router.Use(corsMiddleware())

	userRepo := user.NewRepository(db)
	catalogRepo := catalog.NewRepository(db)
	trainerRepo := trainer.NewRepository(db)
	membershipRepo := membership.NewRepository(db)
	bookingRepo := booking.NewRepository(db)

	userService := user.NewService(userRepo, cfg.JWTSecret)
	membershipService := membership.NewService(membershipRepo, notifier)
	bookingService := booking.NewService(bookingRepo, catalogRepo, membershipRepo, trainerRepo, notifier)

	userHandler := user.NewHandler(userService)
	catalogHandler := catalog.NewHandler(catalogRepo)
	trainerHandler := trainer.NewHandler(trainerRepo)
	membershipHandler := membership.NewHandler(membershipService)
	bookingHandler := booking.NewHandler(bookingService)

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", userHandler.Register)
		authRoutes.POST("/login", userHandler.Login)
		authRoutes.POST("/refresh", userHandler.Refresh)
	}

	// Browsable without an account.
	router.GET("/services", catalogHandler.ListServices)
	router.GET("/services/:serviceID", catalogHandler.GetService)
	router.GET("/services/:serviceID/available-times", bookingHandler.AvailableTimes)
	router.GET("/services/:serviceID/calendar", bookingHandler.Calendar)
	router.GET("/membership-plans", membershipHandler.ListPlans)
	router.GET("/trainers", trainerHandler.ListTrainers)

	authMiddleware := auth.Middleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.PATCH("/me", userHandler.UpdateMe)

		protected.POST("/bookings", bookingHandler.CreateBooking)
		protected.GET("/bookings", bookingHandler.ListBookings)
		protected.GET("/bookings/:bookingID", bookingHandler.GetBooking)
		protected.POST("/bookings/:bookingID/cancel", bookingHandler.CancelBooking)
		protected.POST("/bookings/:bookingID/reschedule", bookingHandler.RescheduleBooking)

		protected.POST("/membership", membershipHandler.Purchase)
		protected.GET("/membership", membershipHandler.GetMine)
		protected.POST("/membership/cancel", membershipHandler.Cancel)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/services", catalogHandler.CreateService)
		admin.PATCH("/services/:serviceID", catalogHandler.UpdateService)
		admin.DELETE("/services/:serviceID", catalogHandler.DeactivateService)

		admin.POST("/trainers", trainerHandler.CreateTrainer)
		admin.PATCH("/trainers/:trainerID/accepting", trainerHandler.SetAccepting)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(notifier))
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:         ":" + port,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
