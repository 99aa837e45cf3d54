package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"instaclone/cache"
	"instaclone/config"
	"instaclone/database"
	"instaclone/handlers"
	"instaclone/logger"
	"instaclone/middleware"
	"instaclone/routes"
	"instaclone/services"
	"instaclone/storage"
	"instaclone/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		logger.Fatal("init logger", zap.Error(err))
	}
	defer logger.Sync()

	logger.Info("starting instaclone", zap.String("mode", cfg.Server.Mode), zap.String("port", cfg.Server.Port))
	gin.SetMode(cfg.Server.Mode)

	ctx := context.Background()

	flushSentry, err := telemetry.InitSentry(cfg.Telemetry, cfg.Server.Mode)
	if err != nil {
		logger.Fatal("init sentry", zap.Error(err))
	}
	stopTracing, err := telemetry.InitTracing(ctx, cfg.Telemetry)
	if err != nil {
		logger.Fatal("init tracing", zap.Error(err))
	}

	db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal("connect mongo", zap.Error(err))
	}
	idxCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.Timeout)
	if err := db.EnsureIndexes(idxCtx); err != nil {
		cancel()
		logger.Fatal("create indexes", zap.Error(err))
	}
	cancel()

	var (
		redisClient *redis.Client
		denylist    services.TokenDenylist
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.Connect(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal("connect redis", zap.Error(err))
		}
		denylist = cache.NewDenylist(redisClient)
		logger.Info("token revocation enabled", zap.String("redis", cfg.Redis.Addr))
	}

	images, err := imageStore(cfg.Storage)
	if err != nil {
		logger.Fatal("init image store", zap.Error(err))
	}

	userStore := database.NewUserStore(db.Client, db.Users, db.Transactions)
	postStore := database.NewPostStore(db.Posts)
	likeStore := database.NewLikeStore(db.Likes)
	commentStore := database.NewCommentStore(db.Comments)

	auth := services.NewAuthService(userStore, denylist, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	feed := services.NewFeedService(postStore, userStore, likeStore, commentStore)
	engagement := services.NewEngagementService(postStore, userStore, likeStore, commentStore)

	h := handlers.New(handlers.Deps{
		Auth:         auth,
		Users:        services.NewUserService(userStore, auth, feed),
		Posts:        services.NewPostService(postStore, images, feed, engagement),
		Engagement:   engagement,
		Feed:         feed,
		DB:           db,
		Paging:       services.Paging{DefaultLimit: cfg.Pagination.DefaultLimit, MaxLimit: cfg.Pagination.MaxLimit},
		CookieSecure: cfg.Auth.CookieSecure,
		Timeout:      cfg.Mongo.Timeout,
	})

	router, err := routes.SetupRouter(h, auth, routes.Options{
		ServiceName: cfg.Telemetry.ServiceName,
		CORSOrigins: cfg.Server.CORSOrigins,
		StaticDir:   cfg.Storage.StaticDir,
		Limiter:     middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Sentry:      cfg.Telemetry.SentryDSN != "",
		AuthTimeout: cfg.Mongo.Timeout,
	})
	if err != nil {
		logger.Fatal("build router", zap.Error(err))
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	if err := stopTracing(shutdownCtx); err != nil {
		logger.Warn("flush traces", zap.Error(err))
	}
	_ = flushSentry(shutdownCtx)
	if err := db.Disconnect(shutdownCtx); err != nil {
		logger.Warn("disconnect mongo", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info("server stopped")
}

// imageStore picks Cloudinary when configured and the local static
// directory otherwise.
func imageStore(cfg config.StorageConfig) (services.ImageStore, error) {
	if cfg.CloudinaryURL != "" {
		logger.Info("storing images on cloudinary", zap.String("folder", cfg.CloudinaryFolder))
		return storage.NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryFolder)
	}
	return storage.NewLocal(cfg.StaticDir)
}
