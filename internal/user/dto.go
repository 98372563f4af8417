// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type ProfileResponse struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Phone             string     `json:"phone"`
	Role              string     `json:"role"`
	RegisteredAt      time.Time  `json:"registered_at"`
	LastLoggedInAt    *time.Time `json:"last_logged_in_at,omitempty"`
	CurrentLoggedInAt *time.Time `json:"current_logged_in_at,omitempty"`
}

type ProfileListResponse struct {
	Users []ProfileResponse `json:"users"`
}

func ToProfileResponse(u *User) ProfileResponse {
	return ProfileResponse{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Phone:             u.Phone,
		Role:              u.Role,
		RegisteredAt:      u.RegisteredAt,
		LastLoggedInAt:    u.LastLoggedInAt,
		CurrentLoggedInAt: u.CurrentLoggedInAt,
	}
}

func ToProfileResponseList(users []User) []ProfileResponse {
	responses := make([]ProfileResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToProfileResponse(&u))
	}
	return responses
}
