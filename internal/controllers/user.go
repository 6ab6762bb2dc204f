package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/dto"
	"taskflow-gateway/pkg/api"
	apperrors "taskflow-gateway/pkg/errors"
)

type UserController struct {
	logger *zap.Logger
}

func NewUserController(logger *zap.Logger) *UserController {
	return &UserController{logger: logger}
}

func (ctrl *UserController) GetUsers(c echo.Context) error {
	sess, _, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessList(c, "ok", sess.Store.Users())
}

func (ctrl *UserController) GetUser(c echo.Context) error {
	sess, _, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	user, ok := sess.Store.FindUser(c.Param("id"))
	if !ok {
		return api.ErrorResponse(c, apperrors.ErrNotFound)
	}
	return api.SuccessOne(c, http.StatusOK, "ok", user)
}

func (ctrl *UserController) CreateUser(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	if !p.CanManageUsers() {
		return forbidden(c)
	}
	var payload dto.CreateUserDTO
	if err := bind(c, &payload); err != nil {
		return api.ErrorResponse(c, err)
	}
	created, err := sess.Store.AddUser(c.Request().Context(), payload.ToNewUser())
	if err != nil {
		ctrl.logger.Error("failed to create user", zap.String("username", payload.Username), zap.Error(err))
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusCreated, "user created", created)
}

// UpdateUser: user managers edit anyone, everybody else only themselves and
// never their own role.
func (ctrl *UserController) UpdateUser(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	id := c.Param("id")
	self := id == p.User().ID
	if !self && !p.CanManageUsers() {
		return forbidden(c)
	}
	var payload dto.UpdateUserDTO
	if err := bind(c, &payload); err != nil {
		return api.ErrorResponse(c, err)
	}
	if !p.CanManageUsers() && payload.Role != "" && payload.Role != string(p.User().Role) {
		return forbidden(c)
	}
	updated, err := sess.Store.UpdateUser(c.Request().Context(), id, payload.ToEntity())
	if err != nil {
		ctrl.logger.Error("failed to update user", zap.String("user", id), zap.Error(err))
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "user updated", updated)
}
