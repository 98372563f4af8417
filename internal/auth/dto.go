// AngelaMos | 2026
// dto.go

package auth

import (
	"time"

	"github.com/angelamos/climate-api/internal/user"
)

type LoginRequest struct {
	Email    string `json:"email"     validate:"required,email,max=255"`
	Password string `json:"password"  validate:"required,min=8,max=128"`
	TOTPCode string `json:"totp_code" validate:"required,len=6,number"`
}

type RegisterRequest struct {
	Email     string `json:"email"      validate:"required,email,max=255"`
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name"  validate:"required,min=1,max=100"`
	Phone     string `json:"phone"      validate:"omitempty,max=32"`
	Password  string `json:"password"   validate:"required,min=8,max=128"`
	TOTPSeed  string `json:"totp_seed"  validate:"omitempty,min=16,max=64"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=128"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type AuthResponse struct {
	User  user.ProfileResponse `json:"user"`
	Token TokenResponse        `json:"token"`
}

// RegisterResponse echoes the TOTP seed so the registrant can enroll their
// authenticator; it is never retrievable again afterwards.
type RegisterResponse struct {
	User     user.ProfileResponse `json:"user"`
	TOTPSeed string               `json:"totp_seed"`
}

type ForgotPasswordResponse struct {
	// Token is only populated outside production, where no mail
	// delivery exists to carry it.
	Token string `json:"token,omitempty"`
}
