package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/controllers"
	"taskflow-gateway/pkg/config"
)

func runNotificationRouter(secureGroup *echo.Group, logger *zap.Logger) {
	notificationCtrl := controllers.NewNotificationController(logger)

	secureGroup.GET("/notifications", notificationCtrl.GetNotifications)
	secureGroup.POST("/notifications", notificationCtrl.CreateNotification)
	secureGroup.POST("/notifications/read-all", notificationCtrl.MarkAllAsRead)
	secureGroup.POST("/notifications/:id/read", notificationCtrl.MarkAsRead)
	secureGroup.DELETE("/notifications/:id", notificationCtrl.DeleteNotification)
}

func runResourceRouter(secureGroup *echo.Group, logger *zap.Logger) {
	resourceCtrl := controllers.NewResourceController(logger)

	secureGroup.GET("/employee-loans", resourceCtrl.GetEmployeeLoans)
	secureGroup.POST("/employee-loans", resourceCtrl.CreateEmployeeLoan)
	secureGroup.PUT("/employee-loans/:id", resourceCtrl.UpdateEmployeeLoan)

	secureGroup.GET("/urgencies", resourceCtrl.GetUrgencyModes)
	secureGroup.POST("/urgencies", resourceCtrl.ActivateUrgencyMode)
	secureGroup.POST("/urgencies/:id/deactivate", resourceCtrl.DeactivateUrgencyMode)
}

func runAttachmentRouter(secureGroup *echo.Group, rules config.UploadConfig, logger *zap.Logger) {
	attachmentCtrl := controllers.NewAttachmentController(rules, logger)

	secureGroup.POST("/attachments", attachmentCtrl.UploadAttachment)
	secureGroup.DELETE("/attachments/:id", attachmentCtrl.DeleteAttachment)
}

func runConversationRouter(secureGroup *echo.Group, logger *zap.Logger) {
	conversationCtrl := controllers.NewConversationController(logger)

	secureGroup.GET("/conversations", conversationCtrl.GetConversations)
	secureGroup.GET("/conversations/:id/messages", conversationCtrl.GetMessages)
	secureGroup.POST("/conversations/:id/messages", conversationCtrl.SendMessage)
	secureGroup.POST("/conversations/:id/watch", conversationCtrl.Watch)
	secureGroup.DELETE("/conversations/watch", conversationCtrl.Unwatch)
}
