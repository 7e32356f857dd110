package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/tlettesaid-hue/secret-chat-1/internal/config"
	"github.com/tlettesaid-hue/secret-chat-1/internal/handler"
	"github.com/tlettesaid-hue/secret-chat-1/internal/middleware"
	"github.com/tlettesaid-hue/secret-chat-1/internal/pkg/cache"
	"github.com/tlettesaid-hue/secret-chat-1/internal/pkg/database"
	"github.com/tlettesaid-hue/secret-chat-1/internal/pkg/storage"
	"github.com/tlettesaid-hue/secret-chat-1/internal/repository"
	"github.com/tlettesaid-hue/secret-chat-1/internal/service"
	"github.com/tlettesaid-hue/secret-chat-1/internal/ws"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

// @title           Secret Chat API
// @version         1.0
// @description     Ephemeral anonymous chat rooms. Rooms are addressed by unguessable 16-character codes, keep no accounts, and self-destruct after five minutes of inactivity.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.Log.Level)
	defer logger.Sync()

	logger.Info("Starting secret chat server",
		zap.String("mode", cfg.Server.Mode),
		zap.Int("port", cfg.Server.Port),
	)

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := database.NewPostgres(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db, logger)

	// Initialize object storage for attachments
	store, err := storage.NewMinioStore(&cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to connect to object storage", zap.Error(err))
	}

	// Initialize repositories
	roomRepo := repository.NewRoomRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Initialize services
	roomService := service.NewRoomService(roomRepo, logger)
	messageService := service.NewMessageService(messageRepo, roomRepo, logger)

	// Initialize WebSocket hub and bind the fan-out
	hub := ws.NewHub(cfg.Room.TypingTTL, logger)
	messageService.SetPublisher(hub)
	go hub.Run()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is optional: without it rate limits fall back to in-process
	// buckets and fan-out stays node-local.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(&cfg.Redis, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer cache.Close(redisClient, logger)

		mirror := ws.NewMirror(redisClient, hub, logger)
		hub.SetMirror(mirror)
		go mirror.Run(ctx)
	}

	// Rooms self-destruct after the inactivity window
	reaper := service.NewReaperService(roomRepo, hub, cfg.Room.InactivityWindow, cfg.Room.ReaperInterval, logger)
	go reaper.Run(ctx)

	// Initialize handlers
	roomHandler := handler.NewRoomHandler(roomService, cfg.Room.InactivityWindow)
	messageHandler := handler.NewMessageHandler(messageService)
	uploadHandler := handler.NewUploadHandler(store, roomService, cfg.Storage.URLExpiry, logger)
	wsHandler := ws.NewHandler(hub, roomService, messageService, logger)

	// Setup router
	router := setupRouter(cfg, logger, redisClient, roomHandler, messageHandler, uploadHandler, wsHandler)

	// Create server
	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server is running",
			zap.String("addr", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(err)
	}

	return logger
}

func setupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	redisClient *redis.Client,
	roomHandler *handler.RoomHandler,
	messageHandler *handler.MessageHandler,
	uploadHandler *handler.UploadHandler,
	wsHandler *ws.Handler,
) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())

	apiLimit, messageLimit := rateLimits(redisClient)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// WebSocket endpoint
	router.GET("/ws", wsHandler.ServeWS)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(apiLimit)
	{
		rooms := v1.Group("/rooms")
		{
			rooms.POST("", roomHandler.Ensure)
			rooms.GET("/:code", roomHandler.Get)
			rooms.GET("/:code/presence", wsHandler.GetPresence)

			rooms.GET("/:code/messages", messageHandler.List)
			rooms.POST("/:code/messages", messageLimit, messageHandler.Send)

			rooms.POST("/:code/uploads", messageLimit, uploadHandler.Upload)
		}

		v1.GET("/stats", wsHandler.GetStats)
	}

	return router
}

// rateLimits builds the API-wide and per-room message limiters, backed by
// redis when it is up so the window holds across instances.
func rateLimits(redisClient *redis.Client) (gin.HandlerFunc, gin.HandlerFunc) {
	if redisClient != nil {
		return middleware.APIRateLimit(redisClient), middleware.MessageRateLimit(redisClient)
	}

	apiLimit := middleware.RateLimit(middleware.NewInMemoryRateLimiter(rate.Every(time.Minute/100), 100))
	messageLimit := middleware.RateLimitWithConfig(
		middleware.NewInMemoryRateLimiter(rate.Every(time.Second), 60),
		&middleware.RateLimitConfig{
			Requests: 60,
			Window:   time.Minute,
			KeyFunc: func(c *gin.Context) string {
				return "ratelimit:message:" + c.Param("code") + ":" + c.ClientIP()
			},
		},
	)
	return apiLimit, messageLimit
}
