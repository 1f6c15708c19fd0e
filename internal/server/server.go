package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/farellandr/theatre/config"
	"github.com/farellandr/theatre/internal/events"
	"github.com/farellandr/theatre/internal/handlers"
	"github.com/farellandr/theatre/internal/helpers"
	"github.com/farellandr/theatre/internal/middleware"
)

const shutdownTimeout = 15 * time.Second

type Dependencies struct {
	Config    *config.Config
	DB        *gorm.DB
	Logger    *zap.Logger
	Redis     *redis.Client
	Publisher events.Publisher
	Metrics   *middleware.Metrics
}

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := config.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb := config.NewRedisClient(cfg)
	if rdb == nil {
		log.Info("response cache disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		publisher = events.NewAMQPPublisher(cfg.AMQPURL, log)
	}
	defer func() { _ = publisher.Close() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := NewRouter(Dependencies{
		Config:    cfg,
		DB:        db,
		Logger:    log,
		Redis:     rdb,
		Publisher: publisher,
		Metrics:   middleware.NewMetrics(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(srv, log)
}

func serve(srv *http.Server, log *zap.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	if deps.Metrics == nil {
		deps.Metrics = middleware.NewMetrics()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		helpers.RespondWithError(c, http.StatusNotFound, "Not found.")
	})
	r.NoMethod(func(c *gin.Context) {
		helpers.RespondWithError(c, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", c.Request.Method))
	})

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(deps.Metrics.Middleware())

	setupRoutes(r, deps)
	return r
}

func setupRoutes(r *gin.Engine, deps Dependencies) {
	cfg := deps.Config
	cache := middleware.NewResponseCache(deps.Redis, cfg.CacheTTL, "theatre:cache")

	r.GET("/metrics", deps.Metrics.Handler())
	r.Static(cfg.MediaURL, cfg.MediaRoot)

	api := r.Group("/api")
	api.Use(
		middleware.ConfigMiddleware(cfg),
		middleware.DatabaseMiddleware(deps.DB),
		middleware.PublisherMiddleware(deps.Publisher),
	)
	r.GET("/healthz", middleware.DatabaseMiddleware(deps.DB), handlers.HealthCheck)

	user := api.Group("/user")
	{
		user.POST("/register", handlers.Register)
		user.POST("/token", handlers.Token)
		user.POST("/token/refresh", handlers.RefreshToken)

		me := user.Group("/me")
		me.Use(middleware.JWTAuthMiddleware())
		{
			me.GET("", handlers.GetProfile)
			me.PATCH("", handlers.UpdateProfile)
		}
	}

	theatre := api.Group("/theatre")
	theatre.Use(middleware.JWTAuthMiddleware())

	catalogue := theatre.Group("")
	catalogue.Use(middleware.AdminOrAuthenticatedReadOnly(), cache.Cache())
	{
		catalogue.GET("/genres", handlers.ListGenres)
		catalogue.POST("/genres", handlers.CreateGenre)

		catalogue.GET("/actors", handlers.ListActors)
		catalogue.POST("/actors", handlers.CreateActor)

		catalogue.GET("/theatre_halls", handlers.ListTheatreHalls)
		catalogue.POST("/theatre_halls", handlers.CreateTheatreHall)

		plays := catalogue.Group("/plays")
		{
			plays.GET("", handlers.ListPlays)
			plays.POST("", handlers.CreatePlay)
			plays.GET("/:id", handlers.GetPlay)
			plays.POST("/:id/upload-image", handlers.UploadPlayImage)
		}

		performances := catalogue.Group("/performances")
		{
			performances.GET("", handlers.ListPerformances)
			performances.POST("", handlers.CreatePerformance)
			performances.GET("/:id", handlers.GetPerformance)
			performances.PUT("/:id", handlers.UpdatePerformance)
			performances.PATCH("/:id", handlers.UpdatePerformance)
			performances.DELETE("/:id", handlers.DeletePerformance)
		}
	}

	reservations := theatre.Group("/reservations")
	reservations.Use(cache.InvalidateOnWrite())
	{
		reservations.GET("", handlers.ListReservations)
		reservations.POST("", handlers.CreateReservation)
		reservations.GET("/:id/tickets/:ticket_id/qr", handlers.GetTicketQRCode)
	}

	theatre.POST("/tickets/validate", middleware.AdminOnly(), handlers.ValidateTicket)
}
