package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleClient   Role = "client"
	RoleEngineer Role = "engineer"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleEngineer
}

type User struct {
	ID          uuid.UUID
	Role        Role
	DisplayName string
	CreatedAt   time.Time
}
