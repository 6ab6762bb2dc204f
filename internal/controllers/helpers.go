package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskflow-gateway/internal/authz"
	"taskflow-gateway/internal/session"
	"taskflow-gateway/pkg/api"
	apperrors "taskflow-gateway/pkg/errors"
	"taskflow-gateway/pkg/middleware"
)

// current resolves the request's session and the principal of its user.
func current(ctx echo.Context) (*session.Session, *authz.Principal, error) {
	sess, err := middleware.CurrentSession(ctx.Request().Context())
	if err != nil {
		return nil, nil, err
	}
	user := sess.Store.User()
	if user == nil {
		return nil, nil, apperrors.ErrUnauthorized
	}
	return sess, authz.For(user), nil
}

// bind decodes and validates the request body into dst.
func bind(ctx echo.Context, dst interface{}) error {
	if err := ctx.Bind(dst); err != nil {
		return apperrors.NewHttpError(http.StatusBadRequest, "invalid request body", err, nil)
	}
	return ctx.Validate(dst)
}

func forbidden(ctx echo.Context) error {
	return api.ErrorResponse(ctx, apperrors.ErrForbidden)
}
