package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/controllers"
	"taskflow-gateway/internal/session"
)

func runAuthRouter(api, secureGroup *echo.Group, sessions *session.Manager, logger *zap.Logger) {
	authCtrl := controllers.NewAuthController(sessions, logger)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", authCtrl.Login)
	authGroup.POST("/refresh", authCtrl.Refresh)
	authGroup.GET("/check-username", authCtrl.CheckUsername)
	authGroup.GET("/check-email", authCtrl.CheckEmail)

	secureGroup.POST("/auth/logout", authCtrl.Logout)
	secureGroup.GET("/auth/me", authCtrl.Me)
	secureGroup.GET("/auth/permissions", authCtrl.Permissions)
	secureGroup.POST("/auth/change-password", authCtrl.ChangePassword)
}
