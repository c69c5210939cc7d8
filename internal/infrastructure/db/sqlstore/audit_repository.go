package sqlstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/routinely/tracker/internal/core/domain"
)

// AuditRepository keeps the audit log in the relational store. It is used
// when no document store is configured.
type AuditRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	model := toAuditModel(entry)
	return storeError("append audit", r.db.WithContext(ctx).Create(&model).Error)
}

// List returns the newest entries first.
func (r *AuditRepository) List(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var models []auditEntryModel
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id").Limit(limit).Find(&models).Error
	if err != nil {
		return nil, storeError("list audit", err)
	}
	entries := make([]domain.AuditEntry, 0, len(models))
	for _, m := range models {
		entries = append(entries, m.toDomain())
	}
	return entries, nil
}
