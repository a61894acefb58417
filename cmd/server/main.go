package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stackpulse/pulse-server/internal/config"
	"github.com/stackpulse/pulse-server/internal/handler"
	"github.com/stackpulse/pulse-server/internal/middleware"
	"github.com/stackpulse/pulse-server/internal/notify"
	"github.com/stackpulse/pulse-server/internal/stats"
	"github.com/stackpulse/pulse-server/internal/store"
	"github.com/stackpulse/pulse-server/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Optional .env for local development.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Preference store: Redis when configured, in-memory otherwise.
	var st store.Store
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer client.Close()
		st = store.NewRedisStore(client, "stackpulse", logger)
		logger.Info("Using Redis preference store", zap.String("addr", cfg.Redis.Addr))
	} else {
		st = store.NewMemoryStore()
		logger.Info("Using in-memory preference store")
	}

	// Notification channels. A missing credential disables that channel.
	var discord, telegram, email notify.Sender
	if cfg.Notify.DiscordWebhookURL != "" {
		discord = notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL, cfg.Notify.ExplorerURL, logger)
	}
	if cfg.Notify.TelegramBotToken != "" {
		tg, err := notify.NewTelegramSender(cfg.Notify.TelegramBotToken, cfg.Notify.TelegramAPIURL, cfg.Notify.ExplorerURL, logger)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram sender", zap.Error(err))
		}
		telegram = tg
	}
	if cfg.Notify.EmailAPIKey != "" {
		apiURL := cfg.Notify.EmailAPIURL
		if apiURL == "" {
			apiURL = notify.DefaultEmailAPIURL
		}
		email = notify.NewEmailSender(apiURL, cfg.Notify.EmailAPIKey, cfg.Notify.EmailFrom, cfg.Notify.ExplorerURL, logger)
	}

	broadcaster := notify.NewBroadcaster(st, discord, telegram, email, cfg.Notify.DispatchTimeout, logger)
	eventStats := stats.New()
	hub := ws.NewHub(logger)
	defer hub.Close()

	webhookHandler := handler.NewWebhookHandler(broadcaster, eventStats, hub, logger)
	userHandler := handler.NewUserHandler(st, logger)
	alertHandler := handler.NewAlertHandler(st, logger)
	statusHandler := handler.NewStatusHandler(eventStats, hub)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.CustomRecovery(func(c *gin.Context, _ interface{}) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())

	router.GET("/health", statusHandler.Health)
	router.GET("/ws", statusHandler.Live)
	if cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api")
	api.Use(middleware.RateLimit(cfg.Server.RateLimitRPS))
	{
		api.GET("/stats", statusHandler.Stats)
		api.GET("/chainhooks/status", statusHandler.Chainhooks)

		users := api.Group("/users")
		{
			users.POST("", userHandler.Upsert)
			users.GET("", userHandler.List)
			users.GET("/:address", userHandler.Get)
			users.PUT("/:address", userHandler.Update)
			users.DELETE("/:address", userHandler.Delete)

			users.GET("/:address/alerts", alertHandler.List)
			users.POST("/:address/alerts", alertHandler.Create)
			users.PUT("/:address/alerts/:alertId", alertHandler.Update)
			users.DELETE("/:address/alerts/:alertId", alertHandler.Delete)
		}
	}

	hooks := router.Group("/api/chainhooks")
	hooks.Use(middleware.WebhookAuth(cfg.Chainhook.AuthToken, logger))
	{
		hooks.POST("/whale-transfer", webhookHandler.WhaleTransfer)
		hooks.POST("/contract-deployed", webhookHandler.ContractDeployed)
		hooks.POST("/nft-mint", webhookHandler.NFTMint)
		hooks.POST("/token-launch", webhookHandler.TokenLaunch)
		hooks.POST("/large-swap", webhookHandler.LargeSwap)
		hooks.POST("/subscription-created", webhookHandler.SubscriptionCreated)
		hooks.POST("/alert-triggered", webhookHandler.AlertTriggered)
		hooks.POST("/fee-collected", webhookHandler.FeeCollected)
		hooks.POST("/badge-earned", webhookHandler.BadgeEarned)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting StackPulse server",
			zap.String("addr", cfg.Server.Addr),
			zap.String("environment", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Server.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = level
	return zcfg.Build()
}
