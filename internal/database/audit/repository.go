package audit

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/hymnal/internal/entities"
)

// Filter narrows an audit log listing. Zero values match everything.
type Filter struct {
	UserID uint
	Action entities.AuditAction
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx so the entry commits or rolls back
// with the action it records.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Append saves an audit log entry.
func (r *Repository) Append(ctx context.Context, entry *entities.AuditLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// List retrieves paginated audit logs, most recent first, with the total
// count before pagination.
func (r *Repository) List(ctx context.Context, f Filter, skip, limit int) ([]entities.AuditLog, int64, error) {
	var logs []entities.AuditLog
	var total int64

	query := r.db.WithContext(ctx).Model(&entities.AuditLog{})
	if f.UserID > 0 {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if skip < 0 {
		skip = 0
	}

	err := query.Order("timestamp DESC, id DESC").Limit(limit).Offset(skip).Find(&logs).Error
	return logs, total, err
}

// DeleteOlderThan removes entries older than the retention period and
// returns how many were deleted.
func (r *Repository) DeleteOlderThan(retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	result := r.db.Where("timestamp < ?", cutoff).Delete(&entities.AuditLog{})
	return result.RowsAffected, result.Error
}
