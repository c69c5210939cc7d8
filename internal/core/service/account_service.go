package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/routinely/tracker/internal/core/domain"
	"github.com/routinely/tracker/internal/core/ports"
	"github.com/routinely/tracker/internal/metrics"
)

const defaultAuditLimit = 100

// AccountService guards administrative mutations of user accounts.
// Protected accounts can have their password changed but are never deleted.
type AccountService struct {
	users     ports.UserRepository
	auditRepo ports.AuditRepository
	audit     auditor
	protected map[int64]struct{}
	log       zerolog.Logger
}

func NewAccountService(
	users ports.UserRepository,
	audit ports.AuditRepository,
	clock ports.Clock,
	protectedIDs []int64,
	log zerolog.Logger,
) *AccountService {
	protected := make(map[int64]struct{}, len(protectedIDs))
	for _, id := range protectedIDs {
		protected[id] = struct{}{}
	}
	return &AccountService{
		users:     users,
		auditRepo: audit,
		audit:     auditor{repo: audit, clock: clock, log: log},
		protected: protected,
		log:       log,
	}
}

func (s *AccountService) IsProtected(id int64) bool {
	_, ok := s.protected[id]
	return ok
}

func (s *AccountService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// DeleteUser checks, in order: protection, self-deletion, existence. Every
// attempt is audited with its outcome.
func (s *AccountService) DeleteUser(ctx context.Context, targetID, adminID int64, origin string) error {
	entry := domain.AuditEntry{
		Operation: domain.AuditDeleteUser,
		ActorID:   adminID,
		TargetID:  targetID,
		Origin:    origin,
	}

	err := s.deleteUser(ctx, targetID, adminID)
	switch {
	case err == nil:
		entry.Outcome = domain.OutcomeSuccess
	case errors.Is(err, domain.ErrProtectedAccount), errors.Is(err, domain.ErrSelfDelete):
		entry.Outcome = domain.OutcomeDenied
		entry.Detail = err.Error()
	default:
		entry.Outcome = domain.OutcomeFailure
		entry.Detail = err.Error()
	}

	metrics.AdminOperationsTotal.WithLabelValues(string(entry.Operation), string(entry.Outcome)).Inc()
	s.audit.record(ctx, entry)
	return err
}

func (s *AccountService) deleteUser(ctx context.Context, targetID, adminID int64) error {
	if s.IsProtected(targetID) {
		return domain.ErrProtectedAccount
	}
	if targetID == adminID {
		return domain.ErrSelfDelete
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// ChangePassword resets a user's password. Protected accounts are allowed.
func (s *AccountService) ChangePassword(ctx context.Context, targetID, adminID int64, newPassword, origin string) error {
	entry := domain.AuditEntry{
		Operation: domain.AuditChangePassword,
		ActorID:   adminID,
		TargetID:  targetID,
		Origin:    origin,
	}
	if s.IsProtected(targetID) {
		entry.Detail = "protected account"
	}

	err := s.changePassword(ctx, targetID, newPassword)
	if err == nil {
		entry.Outcome = domain.OutcomeSuccess
	} else {
		entry.Outcome = domain.OutcomeFailure
		entry.Detail = err.Error()
	}

	metrics.AdminOperationsTotal.WithLabelValues(string(entry.Operation), string(entry.Outcome)).Inc()
	s.audit.record(ctx, entry)
	return err
}

func (s *AccountService) changePassword(ctx context.Context, targetID int64, newPassword string) error {
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}
	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, targetID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// RecordUnauthorized audits a signed-in user reaching for an admin resource.
func (s *AccountService) RecordUnauthorized(ctx context.Context, actorID int64, username, origin, resource string) {
	metrics.AdminOperationsTotal.WithLabelValues(string(domain.AuditUnauthorized), string(domain.OutcomeDenied)).Inc()
	s.audit.record(ctx, domain.AuditEntry{
		Operation: domain.AuditUnauthorized,
		Outcome:   domain.OutcomeDenied,
		ActorID:   actorID,
		Username:  username,
		Origin:    origin,
		Detail:    resource,
	})
}

func (s *AccountService) ListAudit(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > 1000 {
		limit = defaultAuditLimit
	}
	if s.auditRepo == nil {
		return []domain.AuditEntry{}, nil
	}
	entries, err := s.auditRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	return entries, nil
}
