package response

import (
	"time"

	"arc-web/internal/data/entity"
)

type RegisterResponse struct {
	Success bool   `json:"success"`
	Email   string `json:"email"`
	DevCode string `json:"devCode,omitempty"`
}

type ResendCodeResponse struct {
	Success bool   `json:"success"`
	DevCode string `json:"devCode,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ValidResponse struct {
	Valid bool `json:"valid"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type UserResponse struct {
	ID          string                 `json:"id"`
	Email       string                 `json:"email"`
	DisplayName *string                `json:"display_name,omitempty"`
	Role        entity.UserRole        `json:"role"`
	IsVerified  bool                   `json:"is_verified"`
	CreatedAt   time.Time              `json:"created_at"`
	Minecraft   *LinkedAccountResponse `json:"minecraft,omitempty"`
}

type LinkedAccountResponse struct {
	AuthUUID string    `json:"authUUID"`
	Username string    `json:"username"`
	LinkedAt time.Time `json:"linkedAt"`
}

func UserToResponse(user *entity.User, account *entity.MinecraftAccount) UserResponse {
	resp := UserResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		IsVerified:  user.EmailVerified,
		CreatedAt:   user.CreatedAt,
	}

	if account != nil {
		resp.Minecraft = &LinkedAccountResponse{
			AuthUUID: account.AuthUUID,
			Username: account.Username,
			LinkedAt: account.LinkedAt,
		}
	}

	return resp
}
