package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/dto"
	"taskflow-gateway/pkg/api"
)

// ResourceController serves employee loans and urgency modes. Reads are
// open to every user; changes need service management rights.
type ResourceController struct {
	logger *zap.Logger
}

func NewResourceController(logger *zap.Logger) *ResourceController {
	return &ResourceController{logger: logger}
}

func (ctrl *ResourceController) GetEmployeeLoans(c echo.Context) error {
	sess, _, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessList(c, "ok", sess.Store.Snapshot().EmployeeLoans)
}

func (ctrl *ResourceController) CreateEmployeeLoan(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	if !p.CanManageServices() {
		return forbidden(c)
	}
	var payload dto.EmployeeLoanDTO
	if err := bind(c, &payload); err != nil {
		return api.ErrorResponse(c, err)
	}
	created, err := sess.Store.CreateEmployeeLoan(c.Request().Context(), payload.ToEntity())
	if err != nil {
		ctrl.logger.Error("failed to create employee loan", zap.Error(err))
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusCreated, "employee loan created", created)
}

func (ctrl *ResourceController) UpdateEmployeeLoan(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	if !p.CanManageServices() {
		return forbidden(c)
	}
	var payload dto.EmployeeLoanDTO
	if err := bind(c, &payload); err != nil {
		return api.ErrorResponse(c, err)
	}
	updated, err := sess.Store.UpdateEmployeeLoan(c.Request().Context(), c.Param("id"), payload.ToEntity())
	if err != nil {
		ctrl.logger.Error("failed to update employee loan", zap.String("loan", c.Param("id")), zap.Error(err))
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "employee loan updated", updated)
}

func (ctrl *ResourceController) GetUrgencyModes(c echo.Context) error {
	sess, _, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessList(c, "ok", sess.Store.Snapshot().UrgencyModes)
}

func (ctrl *ResourceController) ActivateUrgencyMode(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	if !p.CanManageServices() {
		return forbidden(c)
	}
	var payload dto.UrgencyModeDTO
	if err := bind(c, &payload); err != nil {
		return api.ErrorResponse(c, err)
	}
	created, err := sess.Store.ActivateUrgencyMode(c.Request().Context(), payload.ToEntity())
	if err != nil {
		ctrl.logger.Error("failed to activate urgency mode", zap.String("service", payload.ServiceID), zap.Error(err))
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusCreated, "urgency mode activated", created)
}

func (ctrl *ResourceController) DeactivateUrgencyMode(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	if !p.CanManageServices() {
		return forbidden(c)
	}
	updated, err := sess.Store.DeactivateUrgencyMode(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "urgency mode deactivated", updated)
}
