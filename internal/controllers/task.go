package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/authz"
	"taskflow-gateway/internal/dto"
	"taskflow-gateway/internal/entities"
	"taskflow-gateway/internal/services"
	"taskflow-gateway/internal/session"
	"taskflow-gateway/pkg/api"
	apperrors "taskflow-gateway/pkg/errors"
)

type TaskController struct {
	dashboard   *services.DashboardService
	preferences services.PreferencesServiceInterface
	logger      *zap.Logger
}

func NewTaskController(dashboard *services.DashboardService, preferences services.PreferencesServiceInterface, logger *zap.Logger) *TaskController {
	return &TaskController{dashboard: dashboard, preferences: preferences, logger: logger}
}

// Board lists the visible tasks through the saved board preferences; query
// parameters override them.
func (ctrl *TaskController) Board(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	var q dto.BoardQuery
	if err := c.Bind(&q); err != nil {
		return api.ErrorResponse(c, apperrors.NewHttpError(http.StatusBadRequest, "invalid query", err, nil))
	}

	filter := authz.TaskFilter{}
	prefs, err := ctrl.preferences.Get(c.Request().Context(), p.User().ID)
	if err != nil {
		ctrl.logger.Warn("board falls back to unfiltered view", zap.Error(err))
	} else {
		filter = services.BoardFilter(*prefs)
	}
	override(&filter.Type, q.Type)
	override(&filter.Priority, q.Priority)
	override(&filter.Status, q.Status)
	override(&filter.Assignee, q.Assignee)
	override(&filter.ServiceID, q.ServiceID)
	override(&filter.ProjectID, q.ProjectID)
	override(&filter.Search, q.Search)

	tasks, err := ctrl.dashboard.Board(sess.Store, filter)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessList(c, "ok", tasks)
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// visibleTask resolves :id among the tasks the caller may see; hidden tasks
// are reported as missing.
func visibleTask(c echo.Context) (*session.Session, entities.Task, *authz.Principal, error) {
	sess, p, err := current(c)
	if err != nil {
		return nil, entities.Task{}, nil, err
	}
	task, ok := sess.Store.FindTask(c.Param("id"))
	if !ok || !p.TaskVisible(&task, authz.IndexProjects(sess.Store.Projects())) {
		return nil, entities.Task{}, nil, apperrors.ErrNotFound
	}
	return sess, task, p, nil
}

func (ctrl *TaskController) GetTask(c echo.Context) error {
	_, task, _, err := visibleTask(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "ok", task)
}

func (ctrl *TaskController) CreateTask(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	if !authz.CanDo(p, authz.TasksCreate, nil) {
		return forbidden(c)
	}
	var payload dto.CreateTaskDTO
	if err := bind(c, &payload); err != nil {
		return api.ErrorResponse(c, err)
	}

	created, err := sess.Store.AddTask(c.Request().Context(), payload.ToEntity())
	if err != nil {
		ctrl.logger.Error("failed to create task", zap.Error(err))
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusCreated, "task created", created)
}

func (ctrl *TaskController) UpdateTask(c echo.Context) error {
	sess, task, p, err := visibleTask(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	if !authz.CanDo(p, authz.TasksUpdate, &task) {
		return forbidden(c)
	}
	var payload dto.UpdateTaskDTO
	if err := bind(c, &payload); err != nil {
		return api.ErrorResponse(c, err)
	}

	updated, err := sess.Store.UpdateTask(c.Request().Context(), task.ID, payload.ToPatch())
	if err != nil {
		ctrl.logger.Error("failed to update task", zap.String("task", task.ID), zap.Error(err))
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "task updated", updated)
}

func (ctrl *TaskController) DeleteTask(c echo.Context) error {
	sess, task, p, err := visibleTask(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	if !authz.CanDo(p, authz.TasksDelete, &task) {
		return forbidden(c)
	}
	if err := sess.Store.DeleteTask(c.Request().Context(), task.ID); err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne[any](c, http.StatusOK, "task deleted", nil)
}

func (ctrl *TaskController) CreateComment(c echo.Context) error {
	sess, task, _, err := visibleTask(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	var payload dto.CreateCommentDTO
	if err := bind(c, &payload); err != nil {
		return api.ErrorResponse(c, err)
	}
	comment, err := sess.Store.AddComment(c.Request().Context(), task.ID, payload.ToEntity())
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusCreated, "comment added", comment)
}

// commentOwned: authors edit their own comments, ADMIN edits any.
func commentOwned(task entities.Task, commentID string, p *authz.Principal) bool {
	if p.IsAdmin() {
		return true
	}
	for _, root := range task.Comments {
		for _, cm := range root.Flatten() {
			if cm.ID == commentID {
				return cm.AuthorID == p.User().ID
			}
		}
	}
	return false
}

func (ctrl *TaskController) UpdateComment(c echo.Context) error {
	sess, task, p, err := visibleTask(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	commentID := c.Param("commentId")
	if !commentOwned(task, commentID, p) {
		return forbidden(c)
	}
	var payload dto.UpdateCommentDTO
	if err := bind(c, &payload); err != nil {
		return api.ErrorResponse(c, err)
	}
	comment, err := sess.Store.UpdateComment(c.Request().Context(), task.ID, commentID, payload.Content)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "comment updated", comment)
}

func (ctrl *TaskController) DeleteComment(c echo.Context) error {
	sess, task, p, err := visibleTask(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	commentID := c.Param("commentId")
	if !commentOwned(task, commentID, p) {
		return forbidden(c)
	}
	if err := sess.Store.DeleteComment(c.Request().Context(), task.ID, commentID); err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne[any](c, http.StatusOK, "comment deleted", nil)
}
