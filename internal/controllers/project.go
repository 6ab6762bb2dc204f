package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/authz"
	"taskflow-gateway/internal/dto"
	"taskflow-gateway/pkg/api"
	apperrors "taskflow-gateway/pkg/errors"
)

type ProjectController struct {
	logger *zap.Logger
}

func NewProjectController(logger *zap.Logger) *ProjectController {
	return &ProjectController{logger: logger}
}

func (ctrl *ProjectController) GetProjects(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessList(c, "ok", p.VisibleProjects(sess.Store.Projects()))
}

func (ctrl *ProjectController) GetProject(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	project, ok := sess.Store.FindProject(c.Param("id"))
	if !ok || !p.ProjectVisible(&project) {
		return api.ErrorResponse(c, apperrors.ErrNotFound)
	}
	return api.SuccessOne(c, http.StatusOK, "ok", project)
}

func (ctrl *ProjectController) CreateProject(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	if !authz.CanDo(p, authz.ProjectsCreate, nil) {
		return forbidden(c)
	}
	var payload dto.ProjectDTO
	if err := bind(c, &payload); err != nil {
		return api.ErrorResponse(c, err)
	}
	created, err := sess.Store.AddProject(c.Request().Context(), payload.ToEntity())
	if err != nil {
		ctrl.logger.Error("failed to create project", zap.Error(err))
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusCreated, "project created", created)
}

func (ctrl *ProjectController) UpdateProject(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	project, ok := sess.Store.FindProject(c.Param("id"))
	if !ok || !p.ProjectVisible(&project) {
		return api.ErrorResponse(c, apperrors.ErrNotFound)
	}
	if !authz.CanDo(p, authz.ProjectsUpdate, &project) {
		return forbidden(c)
	}
	var payload dto.ProjectDTO
	if err := bind(c, &payload); err != nil {
		return api.ErrorResponse(c, err)
	}
	updated, err := sess.Store.UpdateProject(c.Request().Context(), project.ID, payload.ToEntity())
	if err != nil {
		ctrl.logger.Error("failed to update project", zap.String("project", project.ID), zap.Error(err))
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "project updated", updated)
}

func (ctrl *ProjectController) DeleteProject(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	project, ok := sess.Store.FindProject(c.Param("id"))
	if !ok || !p.ProjectVisible(&project) {
		return api.ErrorResponse(c, apperrors.ErrNotFound)
	}
	if !authz.CanDo(p, authz.ProjectsDelete, &project) {
		return forbidden(c)
	}
	if err := sess.Store.DeleteProject(c.Request().Context(), project.ID); err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne[any](c, http.StatusOK, "project deleted", nil)
}
