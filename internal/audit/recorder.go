// AngelaMos | 2026
// recorder.go

package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Recorder accepts security events. Recording is best-effort: a failed
// write must never fail the operation that produced the event.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

type Log struct {
	repo   Repository
	logger *slog.Logger
}

func NewLog(repo Repository, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{repo: repo, logger: logger}
}

func (l *Log) Record(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	l.logger.Warn("USER ACTIVITY",
		"kind", event.Kind,
		"actor_role", event.ActorRole,
		"actor_id", event.ActorID,
		"actor_email", event.ActorEmail,
		"origin", event.Origin,
	)

	if err := l.repo.Insert(ctx, &event); err != nil {
		l.logger.Error("security event write failed",
			"kind", event.Kind,
			"error", err,
		)
	}
}
