package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/authz"
	"taskflow-gateway/internal/dto"
	"taskflow-gateway/internal/session"
	"taskflow-gateway/pkg/api"
	apperrors "taskflow-gateway/pkg/errors"
	"taskflow-gateway/pkg/middleware"
)

const refreshCookie = "refreshToken"

type AuthController struct {
	sessions *session.Manager
	logger   *zap.Logger
}

func NewAuthController(sessions *session.Manager, logger *zap.Logger) *AuthController {
	return &AuthController{sessions: sessions, logger: logger}
}

func (ctrl *AuthController) setRefreshCookie(c echo.Context, token string, ttl time.Duration) {
	cookie := &http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
	if token == "" {
		cookie.Expires = time.Unix(0, 0)
		cookie.MaxAge = -1
	} else {
		cookie.MaxAge = int(ttl.Seconds())
	}
	c.SetCookie(cookie)
}

func (ctrl *AuthController) Login(c echo.Context) error {
	var payload dto.LoginDTO
	if err := bind(c, &payload); err != nil {
		return api.ErrorResponse(c, err)
	}

	res, err := ctrl.sessions.Login(c.Request().Context(), payload.Username, payload.Password)
	if err != nil {
		ctrl.logger.Warn("login failed", zap.String("username", payload.Username), zap.Error(err))
		return api.ErrorResponse(c, err)
	}
	ctrl.setRefreshCookie(c, res.RefreshToken, ctrl.sessions.RefreshTTL())
	return api.SuccessOne(c, http.StatusOK, "logged in", res)
}

// Refresh takes the refresh token from the cookie or, failing that, the body.
func (ctrl *AuthController) Refresh(c echo.Context) error {
	var token string
	if cookie, err := c.Cookie(refreshCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var payload dto.RefreshDTO
		if err := bind(c, &payload); err != nil {
			return api.ErrorResponse(c, apperrors.ErrUnauthorized)
		}
		token = payload.RefreshToken
	}

	tokens, err := ctrl.sessions.Refresh(c.Request().Context(), token)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	ctrl.setRefreshCookie(c, tokens.RefreshToken, ctrl.sessions.RefreshTTL())
	return api.SuccessOne(c, http.StatusOK, "tokens refreshed", tokens)
}

func (ctrl *AuthController) Logout(c echo.Context) error {
	id := middleware.CurrentSessionID(c.Request().Context())
	if err := ctrl.sessions.Logout(c.Request().Context(), id); err != nil {
		ctrl.logger.Warn("logout did not clear tokens", zap.String("session", id), zap.Error(err))
	}
	ctrl.setRefreshCookie(c, "", 0)
	return api.SuccessOne[any](c, http.StatusOK, "logged out", nil)
}

func (ctrl *AuthController) Me(c echo.Context) error {
	sess, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "ok", dto.MeDTO{
		User:        *p.User(),
		Permissions: p.Summary(),
		Ready:       sess.Store.Ready(),
	})
}

// Permissions answers a single capability check, e.g. ?capability=add_tache.
func (ctrl *AuthController) Permissions(c echo.Context) error {
	_, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	if capability := c.QueryParam("capability"); capability != "" {
		return api.SuccessOne(c, http.StatusOK, "ok", map[string]bool{authz.Normalize(capability): authz.CanDo(p, capability, nil)})
	}
	return api.SuccessOne(c, http.StatusOK, "ok", p.Summary())
}

func (ctrl *AuthController) ChangePassword(c echo.Context) error {
	sess, _, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	var payload dto.ChangePasswordDTO
	if err := bind(c, &payload); err != nil {
		return api.ErrorResponse(c, err)
	}
	if err := sess.Client.ChangePassword(c.Request().Context(), payload.CurrentPassword, payload.NewPassword); err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne[any](c, http.StatusOK, "password changed", nil)
}

// CheckUsername and CheckEmail are public; registration forms use them.
func (ctrl *AuthController) CheckUsername(c echo.Context) error {
	username := c.QueryParam("username")
	if username == "" {
		return api.ErrorResponse(c, apperrors.NewInvalidInputError("username is required"))
	}
	ok, err := ctrl.sessions.PublicClient().UsernameAvailable(c.Request().Context(), username)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "ok", dto.AvailabilityDTO{Available: ok})
}

func (ctrl *AuthController) CheckEmail(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return api.ErrorResponse(c, apperrors.NewInvalidInputError("email is required"))
	}
	ok, err := ctrl.sessions.PublicClient().EmailAvailable(c.Request().Context(), email)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "ok", dto.AvailabilityDTO{Available: ok})
}
