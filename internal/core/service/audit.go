package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/routinely/tracker/internal/core/domain"
	"github.com/routinely/tracker/internal/core/ports"
)

// auditor writes security events to the audit repository and the log.
// A failed write is logged and never fails the calling operation.
type auditor struct {
	repo  ports.AuditRepository
	clock ports.Clock
	log   zerolog.Logger
}

func (a auditor) record(ctx context.Context, entry domain.AuditEntry) {
	entry.ID = uuid.NewString()
	entry.CreatedAt = a.clock.Now().UTC()

	ev := a.log.Info()
	if entry.Outcome != domain.OutcomeSuccess {
		ev = a.log.Warn()
	}
	ev.Str("operation", string(entry.Operation)).
		Str("outcome", string(entry.Outcome)).
		Int64("actor_id", entry.ActorID).
		Int64("target_id", entry.TargetID).
		Str("username", entry.Username).
		Str("origin", entry.Origin).
		Str("detail", entry.Detail).
		Msg("audit")

	if a.repo == nil {
		return
	}
	if err := a.repo.Append(ctx, &entry); err != nil {
		a.log.Warn().Err(err).Str("operation", string(entry.Operation)).Msg("failed to append audit entry")
	}
}
