// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID                string     `db:"id"`
	Email             string     `db:"email"`
	PasswordHash      string     `db:"password_hash"`
	TOTPSeed          string     `db:"totp_seed"`
	EncryptionKey     string     `db:"encryption_key"`
	FirstName         string     `db:"first_name"`
	LastName          string     `db:"last_name"`
	Phone             string     `db:"phone"`
	Role              string     `db:"role"`
	RegisteredAt      time.Time  `db:"registered_at"`
	LastLoggedInAt    *time.Time `db:"last_logged_in_at"`
	CurrentLoggedInAt *time.Time `db:"current_logged_in_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
