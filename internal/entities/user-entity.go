package entities

import (
	"strings"

	"github.com/aarondl/null/v8"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
	RoleDirector Role = "DIRECTOR"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee, RoleDirector:
		return true
	}
	return false
}

type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	FirstName    string      `json:"firstName"`
	LastName     string      `json:"lastName"`
	FullName     string      `json:"fullName"`
	Role         Role        `json:"role"`
	Service      null.String `json:"service"`
	Permissions  []string    `json:"permissions"`
	ProfilePhoto string      `json:"profilePhoto,omitempty"`
	Phone        string      `json:"phone,omitempty"`
	Bio          string      `json:"bio,omitempty"`
	LastLogin    null.Time   `json:"lastLogin"`
	IsOnline     bool        `json:"isOnline"`
}

// ServiceID returns the user's service or "" when the user has none.
func (u *User) ServiceID() string {
	if u == nil || !u.Service.Valid {
		return ""
	}
	return u.Service.String
}

func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
