package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"taskflow-gateway/internal/listeners"
	"taskflow-gateway/internal/repositories"
	"taskflow-gateway/internal/routes"
	"taskflow-gateway/internal/services"
	"taskflow-gateway/internal/session"
	"taskflow-gateway/pkg/api"
	"taskflow-gateway/pkg/config"
	"taskflow-gateway/pkg/database/postgresql"
	apperrors "taskflow-gateway/pkg/errors"
	"taskflow-gateway/pkg/eventbus"
	applogger "taskflow-gateway/pkg/logger"
	"taskflow-gateway/pkg/middleware"
	"taskflow-gateway/pkg/service"
	"taskflow-gateway/pkg/validation"
	appwebsocket "taskflow-gateway/pkg/websocket"
)

const pushDebounce = 500 * time.Millisecond

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Server.LogLevel, cfg.Server.LogFile)
	defer func() { _ = logger.Sync() }()

	api.LoginPath = cfg.Frontend.LoginPath

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("panic recovered",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				_ = api.ErrorResponse(c, apperrors.NewHttpError(http.StatusInternalServerError, "internal server error", err, nil))
			}
			return err
		},
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{"Content-Disposition"},
	}))
	e.Use(middleware.InjectLogger(logger))
	e.Use(middleware.RequestLogger(logger.Named("http")))
	e.Validator = validation.New()

	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer dbConn.Close()
	if err := repositories.Migrate(dbConn); err != nil {
		logger.Fatal("failed to apply migrations", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}
	defer redisClient.Close()

	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	tokenRepo := repositories.NewTokenRepository(cacheRepo, cfg.JWT.RefreshTokenTTL)
	dedupRepo := repositories.NewDedupRepository(cacheRepo)
	prefsRepo := repositories.NewPreferencesRepository(dbConn, logger.Named("preferences"))

	hub := appwebsocket.NewHub(logger.Named("websocket"))
	go hub.Run(ctx)

	bus := eventbus.New(logger.Named("events"))
	pushListener := listeners.NewPushListener(hub, pushDebounce, logger.Named("push"))
	pushListener.Register(bus)

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)
	sessions := session.NewManager(cfg, tokenRepo, dedupRepo, bus, jwtSvc, logger)

	routes.InitRouter(e, routes.Dependencies{
		Config:      cfg,
		Sessions:    sessions,
		JWT:         jwtSvc,
		Preferences: services.NewPreferencesService(prefsRepo, logger.Named("preferences")),
		Hub:         hub,
	}, &routes.Loggers{
		Main: logger,
		Auth: logger.Named("auth"),
		Task: logger.Named("tasks"),
		Push: logger.Named("websocket"),
	})

	go func() {
		logger.Info("gateway listening", zap.String("port", cfg.Server.Port), zap.String("backend", cfg.Backend.BaseURL))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	sessions.Close()
	pushListener.Stop()
	bus.Wait()
}
