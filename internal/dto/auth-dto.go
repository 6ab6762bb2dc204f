package dto

import (
	"taskflow-gateway/internal/authz"
	"taskflow-gateway/internal/entities"
)

type LoginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

type MeDTO struct {
	User        entities.User         `json:"user"`
	Permissions authz.UserPermissions `json:"permissions"`
	Ready       bool                  `json:"ready"`
}

type AvailabilityDTO struct {
	Available bool `json:"available"`
}
