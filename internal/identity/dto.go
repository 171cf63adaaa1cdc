package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/brewhaven/brewhaven-backend/pkg/db/models"
	"github.com/brewhaven/brewhaven-backend/pkg/enums"
)

// RegisterRequest carries the sign-up inputs.
type RegisterRequest struct {
	Email    string
	Password string
	FullName string
}

// LoginRequest carries the credential inputs.
type LoginRequest struct {
	Email    string
	Password string
}

// UserView is the public shape of a user account.
type UserView struct {
	ID       uuid.UUID      `json:"id"`
	Email    string         `json:"email"`
	FullName string         `json:"full_name"`
	Role     enums.UserRole `json:"role"`
	JoinedAt time.Time      `json:"joined_at"`
}

// AuthResponse is returned by register, login, and refresh.
type AuthResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         UserView `json:"user"`
}

// FromModel maps the persistence model to the public view.
func FromModel(user *models.User) UserView {
	return UserView{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		JoinedAt: user.CreatedAt,
	}
}
