package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow-gateway/internal/dto"
	"taskflow-gateway/internal/services"
	"taskflow-gateway/pkg/api"
)

type PreferencesController struct {
	preferences services.PreferencesServiceInterface
	logger      *zap.Logger
}

func NewPreferencesController(preferences services.PreferencesServiceInterface, logger *zap.Logger) *PreferencesController {
	return &PreferencesController{preferences: preferences, logger: logger}
}

func (ctrl *PreferencesController) GetPreferences(c echo.Context) error {
	_, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	prefs, err := ctrl.preferences.Get(c.Request().Context(), p.User().ID)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "ok", prefs)
}

func (ctrl *PreferencesController) SavePreferences(c echo.Context) error {
	_, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	var payload dto.PreferencesDTO
	if err := bind(c, &payload); err != nil {
		return api.ErrorResponse(c, err)
	}
	saved, err := ctrl.preferences.Save(c.Request().Context(), payload.ToEntity(p.User().ID))
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "preferences saved", saved)
}

func (ctrl *PreferencesController) ResetPreferences(c echo.Context) error {
	_, p, err := current(c)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	prefs, err := ctrl.preferences.Reset(c.Request().Context(), p.User().ID)
	if err != nil {
		return api.ErrorResponse(c, err)
	}
	return api.SuccessOne(c, http.StatusOK, "preferences reset", prefs)
}
