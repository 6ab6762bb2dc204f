package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/dto"
	"taskflow-gateway/pkg/api"
)

type ConversationController struct {
	logger *zap.Logger
}

func NewConversationController(logger *zap.Logger) *ConversationController {
	return &ConversationController{logger: logger}
}

func (ctrl *ConversationController) GetConversations(c echo.Context) error {
	sess, _, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	list, err := sess.Client.Conversations(c.Request().Context())
	if err != nil {
		ctrl.logger.Error("failed to list conversations", zap.Error(err))
		return api.ErrorResponse(c, err)
	}
	return api.SuccessList(c, "ok", list)
}

func (ctrl *ConversationController) GetMessages(c echo.Context) error {
	sess, _, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	list, err := sess.Client.Messages(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessList(c, "ok", list)
}

// Watch makes :id the polled conversation of the session; new messages are
// pushed over the websocket.
func (ctrl *ConversationController) Watch(c echo.Context) error {
	sess, _, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	if err := sess.Poller.Select(c.Param("id")); err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "watching conversation", map[string]string{"conversationId": sess.Poller.Active()})
}

func (ctrl *ConversationController) Unwatch(c echo.Context) error {
	sess, _, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	sess.Poller.Stop()
	return api.SuccessOne[any](c, http.StatusOK, "polling stopped", nil)
}

func (ctrl *ConversationController) SendMessage(c echo.Context) error {
	sess, _, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	var payload dto.SendMessageDTO
	if err := bind(c, &payload); err != nil {
		return api.ErrorResponse(c, err)
	}
	msg, err := sess.Client.SendMessage(c.Request().Context(), c.Param("id"), payload.Content)
	if err != nil {
		ctrl.logger.Error("failed to send message", zap.String("conversation", c.Param("id")), zap.Error(err))
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusCreated, "message sent", msg)
}
