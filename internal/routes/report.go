package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/controllers"
	"taskflow-gateway/internal/services"
	"taskflow-gateway/pkg/middleware"
	appwebsocket "taskflow-gateway/pkg/websocket"
)

func runReportRouter(secureGroup *echo.Group, dashboardService *services.DashboardService, logger *zap.Logger) {
	dashboardCtrl := controllers.NewDashboardController(dashboardService, logger)
	reportCtrl := controllers.NewReportController(dashboardService, logger)

	secureGroup.GET("/dashboard", dashboardCtrl.GetDashboard)
	secureGroup.GET("/analytics", dashboardCtrl.GetAnalytics)
	secureGroup.GET("/reports/tasks.xlsx", reportCtrl.GetTasksReport)
}

func runPreferencesRouter(secureGroup *echo.Group, preferences services.PreferencesServiceInterface, logger *zap.Logger) {
	prefsCtrl := controllers.NewPreferencesController(preferences, logger)

	secureGroup.GET("/preferences", prefsCtrl.GetPreferences)
	secureGroup.PUT("/preferences", prefsCtrl.SavePreferences)
	secureGroup.DELETE("/preferences", prefsCtrl.ResetPreferences)
}

func runWebSocketRouter(e *echo.Echo, authMW *middleware.AuthMiddleware, hub *appwebsocket.Hub, logger *zap.Logger) {
	wsCtrl := controllers.NewWebSocketController(hub, logger)

	e.GET("/ws", wsCtrl.ServeWs, authMW.Auth)
}
