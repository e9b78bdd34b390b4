package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"reels-miniapp-backend/internal/common/config"
	"reels-miniapp-backend/internal/common/logger"
	"reels-miniapp-backend/internal/common/middleware"
	dailycodehttp "reels-miniapp-backend/internal/features/dailycode/delivery/http"
	dailycodeservice "reels-miniapp-backend/internal/features/dailycode/service"
	userhttp "reels-miniapp-backend/internal/features/user/delivery/http"
	"reels-miniapp-backend/internal/features/user/repository"
	filestore "reels-miniapp-backend/internal/features/user/repository/file"
	redisstore "reels-miniapp-backend/internal/features/user/repository/redis"
	userservice "reels-miniapp-backend/internal/features/user/service"
	redisplatform "reels-miniapp-backend/internal/platform/redis"
)

func main() {
	cfg := config.Load()
	logger.Init("reels-miniapp-api", cfg.Debug)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, dataPath, err := buildRepository(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	userSvc := userservice.NewUserService(repo, cfg.Stats.ReelsLimit)
	codeSvc := dailycodeservice.New(cfg.DailyCode.Secret)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.Server.Origin == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(cfg.Server.Origin, ",")
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", "init_data"}
	router.Use(cors.New(corsConfig))

	var apiMiddleware []gin.HandlerFunc
	if cfg.Telegram.RequireInitData && cfg.Telegram.BotToken != "" {
		apiMiddleware = append(apiMiddleware, middleware.TelegramInitData(cfg.Telegram.BotToken))
		logger.Info().Msg("Telegram init-data validation enabled for /api routes")
	}

	userhttp.NewUserHandler(userSvc, dataPath).RegisterRoutes(router, apiMiddleware...)
	dailycodehttp.NewDailyCodeHandler(codeSvc).RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Str("data", dataPath).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	logger.Info().Msg("Server exited")
}

func buildRepository(ctx context.Context, cfg *config.Config) (repository.UserRepository, string, error) {
	switch cfg.Storage.Driver {
	case "redis":
		client, err := redisplatform.New(ctx, cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, "", err
		}
		return redisstore.New(client), fmt.Sprintf("redis://%s:%d/%d", cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.DB), nil
	case "file":
		primary := filestore.New(cfg.Storage.Dir, cfg.Storage.File)
		if cfg.Storage.LegacyMirrorFile == "" {
			return primary, primary.Path(), nil
		}
		legacy := filestore.New(cfg.Storage.Dir, cfg.Storage.LegacyMirrorFile)
		return repository.NewMirror(primary, legacy), primary.Path() + ", " + legacy.Path(), nil
	default:
		return nil, "", fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
