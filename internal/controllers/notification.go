package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/dto"
	"taskflow-gateway/internal/entities"
	"taskflow-gateway/internal/session"
	"taskflow-gateway/pkg/api"
	apperrors "taskflow-gateway/pkg/errors"
)

type NotificationController struct {
	logger *zap.Logger
}

func NewNotificationController(logger *zap.Logger) *NotificationController {
	return &NotificationController{logger: logger}
}

func ownNotifications(sess *session.Session, userID string) []entities.Notification {
	var out []entities.Notification
	for _, n := range sess.Store.Notifications() {
		if n.UserID == "" || n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func findNotification(sess *session.Session, id string) (entities.Notification, bool) {
	for _, n := range sess.Store.Notifications() {
		if n.ID == id {
			return n, true
		}
	}
	return entities.Notification{}, false
}

func (ctrl *NotificationController) GetNotifications(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessList(c, "ok", ownNotifications(sess, p.User().ID))
}

func (ctrl *NotificationController) CreateNotification(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	if !p.CanManageNotifications() {
		return forbidden(c)
	}
	var payload dto.CreateNotificationDTO
	if err := bind(c, &payload); err != nil {
		return api.ErrorResponse(c, err)
	}
	created, err := sess.Store.AddNotification(c.Request().Context(), payload.ToEntity())
	if err != nil {
		ctrl.logger.Error("failed to create notification", zap.Error(err))
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusCreated, "notification created", created)
}

func (ctrl *NotificationController) MarkAsRead(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	n, ok := findNotification(sess, c.Param("id"))
	if !ok || (n.UserID != "" && n.UserID != p.User().ID) {
		return api.ErrorResponse(c, apperrors.ErrNotFound)
	}
	if err := sess.Store.MarkNotificationAsRead(c.Request().Context(), n.ID); err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne[any](c, http.StatusOK, "notification read", nil)
}

func (ctrl *NotificationController) MarkAllAsRead(c echo.Context) error {
	sess, _, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	if err := sess.Store.MarkAllNotificationsAsRead(c.Request().Context()); err != nil {
		ctrl.logger.Warn("some notifications could not be marked as read", zap.Error(err))
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne[any](c, http.StatusOK, "all notifications read", nil)
}

// DeleteNotification: recipients delete their own, notification managers
// delete any.
func (ctrl *NotificationController) DeleteNotification(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	n, ok := findNotification(sess, c.Param("id"))
	if !ok {
		return api.ErrorResponse(c, apperrors.ErrNotFound)
	}
	if n.UserID != p.User().ID && !p.CanManageNotifications() {
		return forbidden(c)
	}
	if err := sess.Store.DeleteNotification(c.Request().Context(), n.ID); err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne[any](c, http.StatusOK, "notification deleted", nil)
}
