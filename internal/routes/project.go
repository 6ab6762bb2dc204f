package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/controllers"
)

func runProjectRouter(secureGroup *echo.Group, logger *zap.Logger) {
	projectCtrl := controllers.NewProjectController(logger)

	secureGroup.GET("/projects", projectCtrl.GetProjects)
	secureGroup.GET("/projects/:id", projectCtrl.GetProject)
	secureGroup.POST("/projects", projectCtrl.CreateProject)
	secureGroup.PUT("/projects/:id", projectCtrl.UpdateProject)
	secureGroup.DELETE("/projects/:id", projectCtrl.DeleteProject)
}

func runServiceRouter(secureGroup *echo.Group, logger *zap.Logger) {
	serviceCtrl := controllers.NewServiceController(logger)

	secureGroup.GET("/services", serviceCtrl.GetServices)
	secureGroup.POST("/services", serviceCtrl.CreateService)
	secureGroup.PUT("/services/:id", serviceCtrl.UpdateService)
	secureGroup.DELETE("/services/:id", serviceCtrl.DeleteService)
}
