// AngelaMos | 2026
// repository.go

package audit

import (
	"context"
	"fmt"

	"github.com/angelamos/climate-api/internal/core"
)

type Repository interface {
	Insert(ctx context.Context, event *Event) error
	ListRecent(ctx context.Context, limit int) ([]Event, error)
	ListAll(ctx context.Context) ([]Event, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, event *Event) error {
	query := `
		INSERT INTO security_events (
			id, kind, actor_role, actor_id, actor_email, origin
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &event.CreatedAt, query,
		event.ID,
		event.Kind,
		event.ActorRole,
		event.ActorID,
		event.ActorEmail,
		event.Origin,
	)
	if err != nil {
		return fmt.Errorf("insert security event: %w", err)
	}

	return nil
}

func (r *repository) ListRecent(
	ctx context.Context,
	limit int,
) ([]Event, error) {
	query := `
		SELECT id, kind, actor_role, actor_id, actor_email, origin, created_at
		FROM security_events
		ORDER BY created_at DESC
		LIMIT $1`

	var events []Event
	if err := r.db.SelectContext(ctx, &events, query, limit); err != nil {
		return nil, fmt.Errorf("list recent security events: %w", err)
	}

	return events, nil
}

func (r *repository) ListAll(ctx context.Context) ([]Event, error) {
	query := `
		SELECT id, kind, actor_role, actor_id, actor_email, origin, created_at
		FROM security_events
		ORDER BY created_at DESC`

	var events []Event
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list security events: %w", err)
	}

	return events, nil
}
