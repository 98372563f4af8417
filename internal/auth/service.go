// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelamos/climate-api/internal/audit"
	"github.com/angelamos/climate-api/internal/core"
	"github.com/angelamos/climate-api/internal/middleware"
	"github.com/angelamos/climate-api/internal/user"
)

var (
	// ErrInvalidCredentials covers unknown email and wrong password
	// alike; the message must not reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidTOTP is deliberately distinct: the password was correct.
	ErrInvalidTOTP = errors.New("invalid 2FA code")
	ErrEmailExists = errors.New("email already exists")
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id string) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
	RecordLogin(ctx context.Context, id string) (*user.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	users    UserStore
	tokens   *TokenManager
	sessions SessionRevoker
	audit    audit.Recorder
	issuer   string
	now      func() time.Time
}

func NewService(
	users UserStore,
	tokens *TokenManager,
	sessions SessionRevoker,
	auditLog audit.Recorder,
	issuer string,
) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		audit:    auditLog,
		issuer:   issuer,
		now:      time.Now,
	}
}

// Login checks the password first and the TOTP code second. A correct
// password with a failed TOTP check establishes nothing: no session, no
// timestamp update, and a distinct error from a bad password.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	origin string,
) (*AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			s.audit.Record(ctx, audit.Event{
				Kind:       audit.KindLoginFailed,
				ActorEmail: req.Email,
				Origin:     origin,
			})
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&u.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		s.audit.Record(ctx, audit.Event{
			Kind:       audit.KindLoginFailed,
			ActorRole:  u.Role,
			ActorID:    u.ID,
			ActorEmail: u.Email,
			Origin:     origin,
		})
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, u.ID, newHash)
	}

	totpOK, err := core.VerifyTOTP(u.TOTPSeed, req.TOTPCode, s.now())
	if err != nil {
		return nil, fmt.Errorf("verify totp: %w", err)
	}

	if !totpOK {
		s.audit.Record(ctx, audit.Event{
			Kind:       audit.KindTOTPFailed,
			ActorRole:  u.Role,
			ActorID:    u.ID,
			ActorEmail: u.Email,
			Origin:     origin,
		})
		return nil, ErrInvalidTOTP
	}

	u, err = s.users.RecordLogin(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}

	accessToken, err := s.tokens.CreateAccessToken(AccessTokenClaims{
		UserID: u.ID,
		Role:   u.Role,
		Email:  u.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	s.audit.Record(ctx, audit.Event{
		Kind:       audit.KindLogin,
		ActorRole:  u.Role,
		ActorID:    u.ID,
		ActorEmail: u.Email,
		Origin:     origin,
	})

	expiresAt := s.now().Add(s.tokens.config.AccessTokenExpire)

	return &AuthResponse{
		User: user.ToProfileResponse(u),
		Token: TokenResponse{
			AccessToken: accessToken,
			TokenType:   "Bearer",
			ExpiresIn:   int(s.tokens.config.AccessTokenExpire / time.Second),
			ExpiresAt:   expiresAt,
		},
	}, nil
}

// Register creates the account with a hashed password and a symmetric
// encryption key derived from the plaintext while it is transiently
// available. The key and the hash use independently generated salts.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	origin string,
) (*RegisterResponse, error) {
	seed := req.TOTPSeed
	if seed == "" {
		generated, err := core.GenerateTOTPSeed(s.issuer, req.Email)
		if err != nil {
			return nil, fmt.Errorf("generate totp seed: %w", err)
		}
		seed = generated
	} else if err := core.ValidateTOTPSeed(seed); err != nil {
		return nil, fmt.Errorf("validate totp seed: %w: %w", core.ErrInvalidInput, err)
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	encryptionKey, err := core.DeriveEncryptionKey(req.Password)
	if err != nil {
		return nil, fmt.Errorf("derive encryption key: %w", err)
	}

	u := &user.User{
		Email:         req.Email,
		PasswordHash:  passwordHash,
		TOTPSeed:      seed,
		EncryptionKey: encryptionKey,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		Role:          user.RoleUser,
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.audit.Record(ctx, audit.Event{
		Kind:       audit.KindRegistration,
		ActorRole:  u.Role,
		ActorID:    u.ID,
		ActorEmail: u.Email,
		Origin:     origin,
	})

	return &RegisterResponse{
		User:     user.ToProfileResponse(u),
		TOTPSeed: seed,
	}, nil
}

// ChangePassword replaces the hash only. The stored encryption key stays
// bound to the registration-time derivation, so data encrypted under it
// remains readable after the change.
func (s *Service) ChangePassword(
	ctx context.Context,
	userID, currentPassword, newPassword, origin string,
) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, _, err := core.VerifyPasswordWithRehash(
		currentPassword,
		u.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.audit.Record(ctx, audit.Event{
		Kind:       audit.KindPasswordChange,
		ActorRole:  u.Role,
		ActorID:    u.ID,
		ActorEmail: u.Email,
		Origin:     origin,
	})

	return nil
}

// DeleteAccount removes the caller's own account. Administrator accounts
// are protected; the role check happens here, before the store is touched.
func (s *Service) DeleteAccount(
	ctx context.Context,
	userID, origin string,
) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	if u.IsAdmin() {
		return fmt.Errorf("delete account: %w", core.ErrAdminProtected)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.audit.Record(ctx, audit.Event{
		Kind:       audit.KindAccountDeleted,
		ActorRole:  u.Role,
		ActorID:    u.ID,
		ActorEmail: u.Email,
		Origin:     origin,
	})

	return nil
}

func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
	origin string,
) error {
	if err := s.sessions.Revoke(ctx, claims.JTI, claims.ExpiresAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	s.audit.Record(ctx, audit.Event{
		Kind:       audit.KindLogout,
		ActorRole:  claims.Role,
		ActorID:    claims.UserID,
		ActorEmail: claims.Email,
		Origin:     origin,
	})

	return nil
}

// RequestPasswordReset issues a reset token for the account, or nothing at
// all for an unknown email. Callers answer identically either way so the
// endpoint cannot be used to enumerate accounts.
func (s *Service) RequestPasswordReset(
	ctx context.Context,
	email, origin string,
) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	token, err := s.tokens.CreateResetToken(u.ID)
	if err != nil {
		return "", fmt.Errorf("create reset token: %w", err)
	}

	s.audit.Record(ctx, audit.Event{
		Kind:       audit.KindPasswordResetRequest,
		ActorRole:  u.Role,
		ActorID:    u.ID,
		ActorEmail: u.Email,
		Origin:     origin,
	})

	return token, nil
}

// ConsumePasswordReset fails closed: a token for a since-deleted account
// reports the same ErrTokenInvalid as a forged or expired one.
func (s *Service) ConsumePasswordReset(
	ctx context.Context,
	token, newPassword, origin string,
) error {
	userID, err := s.tokens.VerifyResetToken(token)
	if err != nil {
		return err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("consume reset token: %w", core.ErrTokenInvalid)
		}
		return fmt.Errorf("get user: %w", err)
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, u.ID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.audit.Record(ctx, audit.Event{
		Kind:       audit.KindPasswordReset,
		ActorRole:  u.Role,
		ActorID:    u.ID,
		ActorEmail: u.Email,
		Origin:     origin,
	})

	return nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*user.ProfileResponse, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := user.ToProfileResponse(u)
	return &resp, nil
}
