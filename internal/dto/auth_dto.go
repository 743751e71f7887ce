package dto

import "github.com/noah-isme/classroom-go-api/internal/models"

// LoginRequest describes the payload for the login endpoint. Unknown
// usernames are registered on the fly with the requested role.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Role     string `json:"role" validate:"required,oneof=TUTOR STUDENT"`
}

// UserResponse is the serialized representation of a user.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResponse carries the signed token together with the resolved user.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// NewUserResponse maps a user model to its API representation.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
}
