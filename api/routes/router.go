package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"seatly/internal/analytics"
	"seatly/internal/auth"
	"seatly/internal/bookings"
	"seatly/internal/events"
	"seatly/internal/feed"
	"seatly/internal/lifecycle"
	"seatly/internal/shared/config"
	"seatly/internal/shared/database"
	"seatly/internal/shared/middleware"
	"seatly/pkg/cache"
	"seatly/pkg/logger"
	"seatly/pkg/ratelimit"
)

// Router wires every domain into one gin engine.
type Router struct {
	Engine  *gin.Engine
	Sweeper *lifecycle.Sweeper
	Feed    *feed.Producer
}

func New(cfg *config.Config, db *database.DB, log *logger.Logger) (*Router, error) {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(log))
	engine.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}))

	cacheSvc := cache.NewService(db.Redis, log)
	limiter := ratelimit.NewLimiter(db.Redis, cfg.RateLimit, log)

	authMW := middleware.JWTAuth(cfg.JWT)
	adminMW := middleware.RequireAdmin()

	feedProducer, err := feed.NewProducer(cfg.Feed, log)
	if err != nil {
		return nil, err
	}

	// Domain wiring
	authSvc := auth.NewService(auth.NewRepository(db.PostgreSQL), cfg.JWT, log)
	eventSvc := events.NewService(events.NewRepository(db.PostgreSQL), cacheSvc, cfg.Redis, log)
	bookingSvc := bookings.NewService(bookings.NewRepository(db.PostgreSQL), cacheSvc, feedProducer, log)
	analyticsSvc := analytics.NewService(analytics.NewRepository(db.PostgreSQL), cacheSvc, cfg.Redis, log)
	sweeper := lifecycle.NewSweeper(lifecycle.NewStore(db.PostgreSQL), cacheSvc, feedProducer, cfg.Sweeper, log)

	// Health endpoints
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})
	engine.GET("/health/ready", func(c *gin.Context) {
		status := db.HealthCheck(c.Request.Context())
		code := http.StatusOK
		for _, v := range status {
			if v != "ok" {
				code = http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{"status": status})
	})

	api := engine.Group(cfg.GetAPIBasePath())
	{
		authGroup := api.Group("", limiter.Middleware(ratelimit.LimitAuth))
		auth.RegisterRoutes(authGroup, auth.NewController(authSvc), authMW)

		publicGroup := api.Group("", limiter.Middleware(ratelimit.LimitPublic))
		events.RegisterRoutes(publicGroup, events.NewController(eventSvc), authMW, adminMW)
		analytics.RegisterRoutes(publicGroup, analytics.NewController(analyticsSvc), authMW, adminMW)

		bookingGroup := api.Group("", limiter.Middleware(ratelimit.LimitBooking))
		bookings.RegisterRoutes(bookingGroup, bookings.NewController(bookingSvc), authMW, adminMW)
	}

	return &Router{Engine: engine, Sweeper: sweeper, Feed: feedProducer}, nil
}
