package dto

import (
	"time"

	"github.com/noah-isme/educonnect-api/internal/models"
)

// LoginRequest is the credential payload for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=64"`
	Password string `json:"password" form:"password" validate:"required"`
	Role     string `json:"role" form:"role" validate:"required,oneof=teacher student"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	Username   string  `json:"username"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	ProfilePic *string `json:"profile_pic"`
}

// NewUserResponse converts a user model into its public view.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		Username:   user.Username,
		Name:       user.Name,
		Role:       user.Role,
		ProfilePic: user.ProfilePic,
	}
}
