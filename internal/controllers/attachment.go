package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/authz"
	"taskflow-gateway/internal/backend"
	"taskflow-gateway/internal/entities"
	"taskflow-gateway/pkg/api"
	"taskflow-gateway/pkg/config"
	apperrors "taskflow-gateway/pkg/errors"
	"taskflow-gateway/pkg/validation"
)

type AttachmentController struct {
	rules  config.UploadConfig
	logger *zap.Logger
}

func NewAttachmentController(rules config.UploadConfig, logger *zap.Logger) *AttachmentController {
	return &AttachmentController{rules: rules, logger: logger}
}

// UploadAttachment takes a multipart form with "file", "relatedTo",
// "relatedId" and an optional "name".
func (ctrl *AttachmentController) UploadAttachment(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	owner, ok := entities.ParseOwner(c.FormValue("relatedTo"), c.FormValue("relatedId"))
	if !ok {
		return api.ErrorResponse(c, apperrors.NewInvalidInputError("relatedTo and relatedId are required"))
	}
	if owner.Kind == entities.OwnerTask {
		task, found := sess.Store.FindTask(owner.ID)
		if !found || !p.TaskVisible(&task, authz.IndexProjects(sess.Store.Projects())) {
			return api.ErrorResponse(c, apperrors.ErrNotFound)
		}
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return api.ErrorResponse(c, apperrors.NewInvalidInputError("no file provided"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		ctrl.logger.Error("failed to open uploaded file", zap.Error(err))
		return api.ErrorResponse(c, apperrors.NewHttpError(http.StatusBadRequest, "failed to read file", err, nil))
	}
	defer file.Close()

	mimeType, err := validation.ValidateFile(fileHeader, file, ctrl.rules)
	if err != nil {
		ctrl.logger.Warn("upload rejected", zap.String("file", fileHeader.Filename), zap.Error(err))
		return api.ErrorResponse(c, err)
	}

	created, err := sess.Store.AddAttachment(c.Request().Context(), backend.Upload{
		Owner:    owner,
		Filename: fileHeader.Filename,
		Name:     c.FormValue("name"),
		Content:  file,
	})
	if err != nil {
		ctrl.logger.Error("failed to upload attachment", zap.String("file", fileHeader.Filename), zap.Error(err))
		return api.ErrorResponse(c, err)
	}
	ctrl.logger.Info("attachment uploaded",
		zap.String("file", fileHeader.Filename),
		zap.String("mime", mimeType),
		zap.String("owner", string(owner.Kind)+"/"+owner.ID))
	return api.SuccessOne(c, http.StatusCreated, "attachment uploaded", created)
}

func (ctrl *AttachmentController) DeleteAttachment(c echo.Context) error {
	sess, _, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	if err := sess.Store.DeleteAttachment(c.Request().Context(), c.Param("id")); err != nil {
		ctrl.logger.Error("failed to delete attachment", zap.String("attachment", c.Param("id")), zap.Error(err))
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne[any](c, http.StatusOK, "attachment deleted", nil)
}
