package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mikestefanello/backlite"
)

// DefaultAuditRetentionDays applies when a task carries no retention.
const DefaultAuditRetentionDays = 90

// AuditLogCleaner provides the ability to delete old audit logs.
type AuditLogCleaner interface {
	DeleteOlderThan(retention time.Duration) (int64, error)
}

// CleanupAuditLogsTask removes audit logs older than the retention period.
type CleanupAuditLogsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit cleanup tasks.
func (t CleanupAuditLogsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit_logs",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// Retention converts the task's day count into a duration.
func (t CleanupAuditLogsTask) Retention() time.Duration {
	days := t.RetentionDays
	if days <= 0 {
		days = DefaultAuditRetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// CleanupAuditLogsProcessor creates a processor function for CleanupAuditLogsTask.
func CleanupAuditLogsProcessor(cleaner AuditLogCleaner) backlite.QueueProcessor[CleanupAuditLogsTask] {
	return func(ctx context.Context, task CleanupAuditLogsTask) error {
		if cleaner == nil {
			return fmt.Errorf("audit log cleaner not configured")
		}

		deleted, err := cleaner.DeleteOlderThan(task.Retention())
		if err != nil {
			return fmt.Errorf("cleanup audit logs: %w", err)
		}

		log.Info("Cleaned up audit logs", "deleted", deleted, "retention", task.Retention())
		return nil
	}
}

// NewCleanupAuditLogsQueue creates a backlite queue for audit cleanup tasks.
func NewCleanupAuditLogsQueue(cleaner AuditLogCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditLogsProcessor(cleaner))
}
