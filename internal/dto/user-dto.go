package dto

import (
	"github.com/aarondl/null/v8"

	"taskflow-gateway/internal/entities"
	"taskflow-gateway/internal/transformers"
)

type CreateUserDTO struct {
	Username  string      `json:"username" validate:"required,min=3,max=150"`
	Email     string      `json:"email" validate:"required,custom_email"`
	Password  string      `json:"password" validate:"required,min=8"`
	FirstName string      `json:"firstName" validate:"required"`
	LastName  string      `json:"lastName" validate:"required"`
	Role      string      `json:"role" validate:"required,role"`
	Service   null.String `json:"service" validate:"omitempty,entity_id"`
	Phone     string      `json:"phone"`
	AdminCode string      `json:"adminCode"`
}

func (d CreateUserDTO) ToNewUser() transformers.NewUser {
	return transformers.NewUser{
		User: entities.User{
			Username:  d.Username,
			Email:     d.Email,
			FirstName: d.FirstName,
			LastName:  d.LastName,
			Role:      entities.Role(d.Role),
			Service:   d.Service,
			Phone:     d.Phone,
		},
		Password:  d.Password,
		AdminCode: d.AdminCode,
	}
}

// UpdateUserDTO: an empty username or role keeps the current one.
type UpdateUserDTO struct {
	Username     string      `json:"username" validate:"omitempty,min=3,max=150"`
	Email        string      `json:"email" validate:"omitempty,custom_email"`
	FirstName    string      `json:"firstName"`
	LastName     string      `json:"lastName"`
	Role         string      `json:"role" validate:"omitempty,role"`
	Service      null.String `json:"service" validate:"omitempty,entity_id"`
	Phone        string      `json:"phone"`
	Bio          string      `json:"bio" validate:"max=2000"`
	ProfilePhoto string      `json:"profilePhoto"`
}

func (d UpdateUserDTO) ToEntity() entities.User {
	return entities.User{
		Username:     d.Username,
		Email:        d.Email,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Role:         entities.Role(d.Role),
		Service:      d.Service,
		Phone:        d.Phone,
		Bio:          d.Bio,
		ProfilePhoto: d.ProfilePhoto,
	}
}
