package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/dto"
	"taskflow-gateway/pkg/api"
)

type ServiceController struct {
	logger *zap.Logger
}

func NewServiceController(logger *zap.Logger) *ServiceController {
	return &ServiceController{logger: logger}
}

func (ctrl *ServiceController) GetServices(c echo.Context) error {
	sess, _, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessList(c, "ok", sess.Store.Services())
}

func (ctrl *ServiceController) CreateService(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	if !p.CanManageServices() {
		return forbidden(c)
	}
	var payload dto.ServiceDTO
	if err := bind(c, &payload); err != nil {
		return api.ErrorResponse(c, err)
	}
	created, err := sess.Store.AddService(c.Request().Context(), payload.ToEntity())
	if err != nil {
		ctrl.logger.Error("failed to create service", zap.Error(err))
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusCreated, "service created", created)
}

func (ctrl *ServiceController) UpdateService(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	if !p.CanManageServices() {
		return forbidden(c)
	}
	var payload dto.ServiceDTO
	if err := bind(c, &payload); err != nil {
		return api.ErrorResponse(c, err)
	}
	updated, err := sess.Store.UpdateService(c.Request().Context(), c.Param("id"), payload.ToEntity())
	if err != nil {
		ctrl.logger.Error("failed to update service", zap.String("service", c.Param("id")), zap.Error(err))
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "service updated", updated)
}

func (ctrl *ServiceController) DeleteService(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	if !p.CanManageServices() {
		return forbidden(c)
	}
	if err := sess.Store.DeleteService(c.Request().Context(), c.Param("id")); err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne[any](c, http.StatusOK, "service deleted", nil)
}
