package controllers

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/services"
	"taskflow-gateway/pkg/api"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportController struct {
	dashboardService *services.DashboardService
	logger           *zap.Logger
}

func NewReportController(ds *services.DashboardService, logger *zap.Logger) *ReportController {
	return &ReportController{dashboardService: ds, logger: logger}
}

// GetTasksReport streams the visible tasks as an .xlsx download. The
// workbook is built in memory so a failure still yields a JSON error.
func (ctrl *ReportController) GetTasksReport(c echo.Context) error {
	sess, _, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	var buf bytes.Buffer
	if err := ctrl.dashboardService.ExportTasks(&buf, sess.Store); err != nil {
		return api.ErrorResponse(c, err)
	}
	fileName := ctrl.dashboardService.ReportFileName()
	ctrl.logger.Debug("task report generated", zap.String("file", fileName), zap.Int("bytes", buf.Len()))

	c.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
