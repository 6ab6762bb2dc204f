package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/analytics"
	"taskflow-gateway/internal/dto"
	"taskflow-gateway/internal/services"
	"taskflow-gateway/pkg/api"
	apperrors "taskflow-gateway/pkg/errors"
)

type DashboardController struct {
	dashboardService *services.DashboardService
	logger           *zap.Logger
}

func NewDashboardController(ds *services.DashboardService, logger *zap.Logger) *DashboardController {
	return &DashboardController{
		dashboardService: ds,
		logger:           logger,
	}
}

func (ctrl *DashboardController) GetDashboard(c echo.Context) error {
	sess, _, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	summary, err := ctrl.dashboardService.Summary(sess.Store)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "ok", summary)
}

func (ctrl *DashboardController) GetAnalytics(c echo.Context) error {
	sess, _, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	var q dto.AnalyticsQuery
	if err := c.Bind(&q); err != nil {
		return api.ErrorResponse(c, apperrors.NewHttpError(http.StatusBadRequest, "invalid query", err, nil))
	}
	report, err := ctrl.dashboardService.Analytics(sess.Store, analytics.Period(q.Period), q.ServiceID)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "ok", report)
}
