package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mrlokans/hymnal/internal/database/audit"
	"github.com/mrlokans/hymnal/internal/entities"
)

// Entry describes one audited action before it is persisted.
type Entry struct {
	ActorID  *uint
	Action   entities.AuditAction
	Details  string
	Metadata map[string]any
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

func (e Entry) toLog() *entities.AuditLog {
	entry := &entities.AuditLog{
		UserID:  e.ActorID,
		Action:  e.Action,
		Details: truncate(e.Details, 1000),
	}
	if len(e.Metadata) > 0 {
		if md, err := json.Marshal(e.Metadata); err == nil {
			entry.Metadata = datatypes.JSON(md)
		}
	}
	return entry
}

// RecordTx appends the entry inside tx. A failure aborts the surrounding
// transaction, so the action and its audit trail commit together.
func (s *Service) RecordTx(ctx context.Context, tx *gorm.DB, e Entry) error {
	if err := s.repo.WithTx(tx).Append(ctx, e.toLog()); err != nil {
		return fmt.Errorf("failed to record audit log: %w", err)
	}
	return nil
}

// Record appends the entry outside any transaction. Failures are logged and
// dropped.
func (s *Service) Record(ctx context.Context, e Entry) {
	entry := e.toLog()
	if err := s.repo.Append(ctx, entry); err != nil {
		log.Warn("Failed to record audit log", "action", entry.Action, "err", err)
	}
}

// RecordAsync appends the entry in the background (non-blocking). Failures
// are logged and dropped.
func (s *Service) RecordAsync(e Entry) {
	entry := e.toLog()
	go func() {
		if err := s.repo.Append(context.Background(), entry); err != nil {
			log.Warn("Failed to record audit log", "action", entry.Action, "err", err)
		}
	}()
}

// List returns audit logs newest first with the unpaginated total.
func (s *Service) List(ctx context.Context, f audit.Filter, skip, limit int) ([]entities.AuditLog, int64, error) {
	return s.repo.List(ctx, f, skip, limit)
}

// ActorID converts a user into the nullable actor reference.
func ActorID(u *entities.User) *uint {
	if u == nil {
		return nil
	}
	id := u.ID
	return &id
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
