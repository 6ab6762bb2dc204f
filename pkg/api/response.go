package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "taskflow-gateway/pkg/errors"
)

type Response[T any] struct {
	Status   bool   `json:"status"`
	Message  string `json:"message"`
	Body     T      `json:"body,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

type ListBody[T any] struct {
	List  []T `json:"list"`
	Total int `json:"total"`
}

// LoginPath is where the browser is sent after a 401.
var LoginPath = "/login"

// SuccessOne wraps a single object.
func SuccessOne[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, Response[T]{
		Status:  true,
		Message: message,
		Body:    data,
	})
}

func SuccessList[T any](c echo.Context, message string, list []T) error {
	if list == nil {
		list = make([]T, 0)
	}
	return c.JSON(http.StatusOK, Response[ListBody[T]]{
		Status:  true,
		Message: message,
		Body:    ListBody[T]{List: list, Total: len(list)},
	})
}

func ErrorResponse(c echo.Context, err error) error {
	code := apperrors.StatusCode(err)
	msg := err.Error()

	// HttpError exposes only its user-facing message
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		msg = httpErr.Message
	}
	if code == http.StatusInternalServerError && httpErr == nil {
		msg = apperrors.ErrInternalServer.Error()
	}

	resp := Response[any]{
		Status:  false,
		Message: msg,
	}
	if code == http.StatusUnauthorized {
		resp.Redirect = LoginPath
	}
	return c.JSON(code, resp)
}
