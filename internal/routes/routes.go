package routes

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/services"
	"taskflow-gateway/internal/session"
	"taskflow-gateway/pkg/config"
	"taskflow-gateway/pkg/middleware"
	"taskflow-gateway/pkg/service"
	appwebsocket "taskflow-gateway/pkg/websocket"
)

type Loggers struct {
	Main *zap.Logger
	Auth *zap.Logger
	Task *zap.Logger
	Push *zap.Logger
}

// Dependencies are the long-lived components the HTTP surface is built on.
type Dependencies struct {
	Config      *config.Config
	Sessions    *session.Manager
	JWT         service.JWTService
	Preferences services.PreferencesServiceInterface
	Hub         *appwebsocket.Hub
	Clock       func() time.Time
}

func InitRouter(e *echo.Echo, deps Dependencies, loggers *Loggers) {
	loggers.Main.Info("InitRouter: building routes")

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(deps.JWT, deps.Sessions, loggers.Auth)
	secureGroup := api.Group("", authMW.Auth)

	dashboardService := services.NewDashboardService(clock, loggers.Main)

	runAuthRouter(api, secureGroup, deps.Sessions, loggers.Auth)
	runTaskRouter(secureGroup, dashboardService, deps.Preferences, loggers.Task)
	runProjectRouter(secureGroup, loggers.Main)
	runServiceRouter(secureGroup, loggers.Main)
	runUserRouter(secureGroup, loggers.Main)
	runNotificationRouter(secureGroup, loggers.Main)
	runResourceRouter(secureGroup, loggers.Main)
	runAttachmentRouter(secureGroup, deps.Config.Upload, loggers.Main)
	runConversationRouter(secureGroup, loggers.Main)
	runReportRouter(secureGroup, dashboardService, loggers.Main)
	runPreferencesRouter(secureGroup, deps.Preferences, loggers.Main)
	runWebSocketRouter(e, authMW, deps.Hub, loggers.Push)

	loggers.Main.Info("InitRouter: routes ready")
}
