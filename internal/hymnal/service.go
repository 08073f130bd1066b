// Package hymnal implements hymn, hymn book and mapping operations on top of
// the repositories. Every write runs in one transaction together with its
// audit entry.
package hymnal

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/mrlokans/hymnal/internal/audit"
	"github.com/mrlokans/hymnal/internal/database"
	"github.com/mrlokans/hymnal/internal/database/hymnbooks"
	"github.com/mrlokans/hymnal/internal/database/hymns"
	"github.com/mrlokans/hymnal/internal/database/mappings"
	"github.com/mrlokans/hymnal/internal/storage"
)

const (
	DefaultHymnLimit   = 100
	DefaultSearchLimit = 10
	DefaultSlidesLimit = 20
)

type Service struct {
	db       *database.Database
	books    *hymnbooks.Repository
	hymns    *hymns.Repository
	mappings *mappings.Repository
	audit    *audit.Service
	blobs    storage.BlobStore
}

func NewService(db *database.Database, auditService *audit.Service, blobs storage.BlobStore) *Service {
	return &Service{
		db:       db,
		books:    hymnbooks.NewRepository(db.DB),
		hymns:    hymns.NewRepository(db.DB),
		mappings: mappings.NewRepository(db.DB),
		audit:    auditService,
		blobs:    blobs,
	}
}

// removeBlob deletes a stale upload. Failures are logged and ignored.
func (s *Service) removeBlob(ctx context.Context, path *string) {
	if path == nil || *path == "" || s.blobs == nil {
		return
	}
	if err := s.blobs.Delete(ctx, *path); err != nil {
		log.Warn("Failed to remove stale file", "path", *path, "err", err)
	}
}
