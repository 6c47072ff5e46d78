package dto

import (
	"time"

	"field-match/internal/domain/user"

	"github.com/google/uuid"
)

type RegisterUserRequest struct {
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

type UserResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{
		UserID:      u.ID,
		Role:        string(u.Role),
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}
