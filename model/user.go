package model

import "github.com/google/uuid"

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Role         UserRole  `json:"role"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
