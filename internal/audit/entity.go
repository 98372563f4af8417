// AngelaMos | 2026
// entity.go

package audit

import (
	"time"
)

// Event is one append-only record in the security log.
type Event struct {
	ID         string    `db:"id"          json:"id"`
	Kind       string    `db:"kind"        json:"kind"`
	ActorRole  string    `db:"actor_role"  json:"actor_role"`
	ActorID    string    `db:"actor_id"    json:"actor_id"`
	ActorEmail string    `db:"actor_email" json:"actor_email"`
	Origin     string    `db:"origin"      json:"origin"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}

const (
	KindLogin                = "login"
	KindLoginFailed          = "login_failed"
	KindTOTPFailed           = "totp_failed"
	KindLogout               = "logout"
	KindRegistration         = "registration"
	KindPasswordChange       = "password_change"
	KindPasswordResetRequest = "password_reset_request"
	KindPasswordReset        = "password_reset"
	KindAccountDeleted       = "account_deleted"
)
