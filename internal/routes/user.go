package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/controllers"
)

func runUserRouter(secureGroup *echo.Group, logger *zap.Logger) {
	userCtrl := controllers.NewUserController(logger)

	secureGroup.GET("/users", userCtrl.GetUsers)
	secureGroup.GET("/users/:id", userCtrl.GetUser)
	secureGroup.POST("/users", userCtrl.CreateUser)
	secureGroup.PUT("/users/:id", userCtrl.UpdateUser)
}
