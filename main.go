package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/whoskite/kitestudios-sub000/internal/auth"
	"github.com/whoskite/kitestudios-sub000/internal/chat"
	"github.com/whoskite/kitestudios-sub000/internal/cms"
	"github.com/whoskite/kitestudios-sub000/internal/handler"
	"github.com/whoskite/kitestudios-sub000/internal/middleware"
	"github.com/whoskite/kitestudios-sub000/pkg/config"
	"github.com/whoskite/kitestudios-sub000/pkg/logger"
	"github.com/whoskite/kitestudios-sub000/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger.Init(cfg.App.LogLevel)
	defer logger.Sync()
	logger.Info("Starting service",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Environment),
		zap.String("addr", cfg.Server.Addr()),
	)

	ctx := context.Background()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		logger.Warn("Failed to initialize tracing", zap.Error(err))
	}

	// Revocation store: Redis when configured, in-process otherwise
	var store auth.Store = auth.NewMemoryStore()
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		store = auth.NewRedisStore(redisClient)
		logger.Info("Session store: redis", zap.String("addr", cfg.Redis.Addr()))
	} else {
		logger.Info("Session store: in-process (REDIS_HOST not set)")
	}

	authService := auth.NewService(cfg, store)
	resolver := cms.NewResolver(cms.NewClient(cfg.CMS))
	chatService := chat.NewService(cfg.Chat)

	var isShuttingDown atomic.Bool
	r := newRouter(cfg, authService, resolver, chatService, redisClient, &isShuttingDown)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	<-sigCtx.Done()
	logger.Info("Shutdown signal received")

	// Fail readiness first so load balancers drain before the listener closes
	isShuttingDown.Store(true)

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("Tracer shutdown error", zap.Error(err))
	}

	logger.Info("Graceful shutdown complete")
}

func newRouter(
	cfg *config.Config,
	authService *auth.Service,
	resolver *cms.Resolver,
	chatService *chat.Service,
	redisClient *redis.Client,
	shuttingDown *atomic.Bool,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Site.BaseURL)))
	if cfg.OTel.Enabled {
		r.Use(telemetry.TracingMiddleware())
	}

	// Route classification runs before every handler
	r.Use(middleware.AuthGate(authService, cfg.Session.CookieName, cfg.Site, middleware.DefaultProtectedRoutes()))

	healthHandler := handler.NewHealthHandler(shuttingDown)
	pageHandler := handler.NewPageHandler(resolver, cfg.Site)
	contentHandler := handler.NewContentHandler(resolver)
	authHandler := handler.NewAuthHandler(authService, cfg)
	chatHandler := handler.NewChatHandler(chatService)

	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)

	// Pages
	r.GET("/hub", pageHandler.Hub)
	r.GET("/hub/articles/:key", pageHandler.HubArticle)
	r.GET("/resource/:key", pageHandler.ResourceDetail)
	r.GET("/admin", pageHandler.Admin)
	r.GET(cfg.Site.AccessDeniedPath, pageHandler.AccessDenied)
	r.GET(cfg.Site.AuthHelpPath, pageHandler.AuthHelp)

	api := r.Group("/api")
	{
		api.GET("/articles", contentHandler.ListArticles)
		api.GET("/articles/:key", contentHandler.GetArticle)
		api.GET("/resources", contentHandler.ListResources)
		api.GET("/resources/:key", contentHandler.GetResource)
		api.GET("/categories", contentHandler.ListCategories)
		api.GET("/authors", contentHandler.ListAuthors)
		// Inquiry submission is the one write the gateway forwards;
		// with Redis available, client retries can replay it safely
		inquiry := []gin.HandlerFunc{contentHandler.SubmitInquiry}
		if redisClient != nil {
			inquiry = append([]gin.HandlerFunc{middleware.Idempotency(redisClient)}, inquiry...)
		}
		api.POST("/inquiries", inquiry...)

		api.GET("/auth/login", authHandler.Login)
		api.GET("/auth/callback/:provider", authHandler.Callback)
		api.POST("/auth/logout", authHandler.Logout)
		api.GET("/auth/me", authHandler.Me)

		api.POST("/chat", chatHandler.Chat)
	}

	return r
}
