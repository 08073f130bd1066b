package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/hymnal/internal/auth"
	auditRepo "github.com/mrlokans/hymnal/internal/database/audit"
	"github.com/mrlokans/hymnal/internal/database/rbac"
	"github.com/mrlokans/hymnal/internal/database/users"
	"github.com/mrlokans/hymnal/internal/entities"
	"github.com/mrlokans/hymnal/internal/scheduler"
	"github.com/mrlokans/hymnal/internal/storage"
	"github.com/mrlokans/hymnal/internal/tasks"
)

// =============================================================================
// Authentication and Authorization
// =============================================================================

// UserLoader implementations
var _ auth.UserLoader = (*users.Repository)(nil)

// PermissionChecker implementations
var _ auth.PermissionChecker = (*rbac.Repository)(nil)

// Policy implementations
var _ auth.Policy = auth.FlagPolicy{}
var _ auth.Policy = (*auth.RBACPolicy)(nil)

// =============================================================================
// Storage
// =============================================================================

// BlobStore implementations
var _ storage.BlobStore = (*storage.LocalStore)(nil)

// Deletion policies
var _ entities.Deletable = (*entities.HymnBook)(nil)
var _ entities.Deletable = (*entities.Hymn)(nil)
var _ entities.Deletable = (*entities.HymnMapping)(nil)
var _ entities.SoftDeletable = (*entities.User)(nil)

// =============================================================================
// Background Work
// =============================================================================

// AuditLogCleaner implementations
var _ tasks.AuditLogCleaner = (*auditRepo.Repository)(nil)

// TaskEnqueuer implementations
var _ scheduler.TaskEnqueuer = (*tasks.Client)(nil)
