package controllers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/pkg/api"
	appwebsocket "taskflow-gateway/pkg/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketController struct {
	hub    *appwebsocket.Hub
	logger *zap.Logger
}

func NewWebSocketController(hub *appwebsocket.Hub, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{hub: hub, logger: logger}
}

// ServeWs upgrades an authenticated request; the token comes from the auth
// middleware, which accepts ?token= on upgrades.
func (ctrl *WebSocketController) ServeWs(c echo.Context) error {
	_, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		ctrl.logger.Error("websocket upgrade failed", zap.Error(err))
		return err
	}

	client := appwebsocket.NewClient(ctrl.hub, conn, p.User().ID)
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	ctrl.logger.Info("websocket client connected", zap.String("user_id", p.User().ID))
	return nil
}
