package dto

import "time"

// ProfileUpdateRequest holds the optional profile fields submitted by a user.
type ProfileUpdateRequest struct {
	Name            *string `form:"name" validate:"omitempty,min=1,max=255"`
	Username        *string `form:"username" validate:"omitempty,min=3,max=64,alphanumunicode"`
	Password        string  `form:"password" validate:"omitempty,min=4,max=128"`
	ConfirmPassword string  `form:"confirm_password"`
}

// ProfileResponse is returned by profile reads and updates. Token is set when
// the username changed and the previous token no longer identifies the user.
type ProfileResponse struct {
	User      UserResponse `json:"user"`
	Token     *string      `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}
