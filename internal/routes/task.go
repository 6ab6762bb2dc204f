package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/controllers"
	"taskflow-gateway/internal/services"
)

func runTaskRouter(
	secureGroup *echo.Group,
	dashboardService *services.DashboardService,
	preferences services.PreferencesServiceInterface,
	logger *zap.Logger,
) {
	taskCtrl := controllers.NewTaskController(dashboardService, preferences, logger)

	secureGroup.GET("/board/tasks", taskCtrl.Board)
	secureGroup.GET("/tasks/:id", taskCtrl.GetTask)
	secureGroup.POST("/tasks", taskCtrl.CreateTask)
	secureGroup.PUT("/tasks/:id", taskCtrl.UpdateTask)
	secureGroup.DELETE("/tasks/:id", taskCtrl.DeleteTask)

	secureGroup.POST("/tasks/:id/comments", taskCtrl.CreateComment)
	secureGroup.PUT("/tasks/:id/comments/:commentId", taskCtrl.UpdateComment)
	secureGroup.DELETE("/tasks/:id/comments/:commentId", taskCtrl.DeleteComment)
}
