package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
)

type auditLogRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewAuditLogRepository creates a Postgres-backed settlement audit ledger
func NewAuditLogRepository(db *gorm.DB, logger *zap.Logger) repository.AuditLogRepository {
	return &auditLogRepository{
		db:     db,
		logger: logger,
	}
}

func (r *auditLogRepository) Record(ctx context.Context, entry *model.AuditLog) error {
	if entry.Metadata == nil {
		entry.Metadata = datatypes.JSONMap{}
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		r.logger.Error("Failed to record audit log",
			zap.String("operation", entry.Operation),
			zap.String("order_id", entry.OrderID),
			zap.Error(err))
		return fmt.Errorf("failed to record audit log: %w", err)
	}
	return nil
}

func (r *auditLogRepository) List(ctx context.Context, f repository.AuditLogFilter) ([]model.AuditLog, error) {
	query := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if f.OrderID != "" {
		query = query.Where("order_id = ?", f.OrderID)
	}
	if f.EntitlementID != "" {
		query = query.Where("entitlement_id = ?", f.EntitlementID)
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var entries []model.AuditLog
	if err := query.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return entries, nil
}

type nopAuditLogRepository struct{}

// NewNopAuditLogRepository is used when no audit database is configured.
func NewNopAuditLogRepository() repository.AuditLogRepository {
	return nopAuditLogRepository{}
}

func (nopAuditLogRepository) Record(context.Context, *model.AuditLog) error { return nil }

func (nopAuditLogRepository) List(context.Context, repository.AuditLogFilter) ([]model.AuditLog, error) {
	return []model.AuditLog{}, nil
}
