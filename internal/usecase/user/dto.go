package user

import (
	"time"

	domainUser "seyyar/internal/domain/user"

	"github.com/google/uuid"
)

type SignUpRequest struct {
	FirstName       string `json:"first_name" validate:"required,min=1,max=100"`
	LastName        string `json:"last_name" validate:"required,min=1,max=100"`
	Phone           string `json:"phone" validate:"required,phone"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required,numeric,min=4,max=10"`
}

type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type UpdateProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	Firstname *string `json:"firstname" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,phone"`
	Pfp       *string `json:"pfp" validate:"omitempty,url"`
}

// VerifyIdentityRequest carries the Algerian national ID number. The number is
// checked but not stored.
type VerifyIdentityRequest struct {
	AlgeriaID string `json:"algeria_id" validate:"required,min=8,max=20"`
}

type OTPSentResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Firstname string    `json:"firstname"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Pfp       string    `json:"pfp"`
	TypeUser  string    `json:"typeUser"`
	IsRenter  bool      `json:"is_renter"`
	Initial   string    `json:"initial"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	User         *UserResponse `json:"user"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresAt    int64         `json:"expires_at"`
}

func ToUserResponse(u *domainUser.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Firstname: u.Firstname,
		Email:     u.Email,
		Phone:     u.Phone,
		Pfp:       u.Pfp,
		TypeUser:  string(u.Type),
		IsRenter:  u.IsRenter(),
		Initial:   u.Initial(),
		CreatedAt: u.CreatedAt,
	}
}
