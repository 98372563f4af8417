// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/angelamos/climate-api/internal/config"
	"github.com/angelamos/climate-api/internal/core"
)

type Service struct {
	repo Repository
	db   *core.Database
}

func NewService(repo Repository, db *core.Database) *Service {
	return &Service{repo: repo, db: db}
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(email))
}

func (s *Service) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.Email = strings.ToLower(u.Email)
	if u.Role == "" {
		u.Role = RoleUser
	}

	return s.repo.Create(ctx, u)
}

func (s *Service) RecordLogin(ctx context.Context, id string) (*User, error) {
	return s.repo.RecordLogin(ctx, id)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// EnsureAdmin seeds the single bootstrap administrator account if it does
// not exist yet. The check and insert run in one transaction; a duplicate
// from a racing instance is treated as success since the account exists
// either way.
func (s *Service) EnsureAdmin(
	ctx context.Context,
	cfg config.BootstrapConfig,
) error {
	// A malformed seed would otherwise only surface on the admin's
	// first login; reject it before anything is written.
	if err := core.ValidateTOTPSeed(cfg.AdminTOTPSeed); err != nil {
		return fmt.Errorf("bootstrap admin totp seed: %w", err)
	}

	passwordHash, err := core.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	encryptionKey, err := core.DeriveEncryptionKey(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("derive admin encryption key: %w", err)
	}

	admin := &User{
		ID:            uuid.New().String(),
		Email:         strings.ToLower(cfg.AdminEmail),
		PasswordHash:  passwordHash,
		TOTPSeed:      cfg.AdminTOTPSeed,
		EncryptionKey: encryptionKey,
		FirstName:     "Alice",
		LastName:      "Jones",
		Role:          RoleAdmin,
	}

	err = core.InTx(ctx, s.db.DB, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		exists, err := repo.ExistsByEmail(ctx, admin.Email)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		if err := repo.Create(ctx, admin); err != nil {
			return err
		}

		slog.Info("bootstrap admin account created", "email", admin.Email)
		return nil
	})
	if errors.Is(err, core.ErrDuplicateKey) {
		return nil
	}
	return err
}
