// Package interfaces holds compile-time checks for the extension points of
// the application.
//
// # Interface Categories
//
// ## Authentication and Authorization
//
//   - UserLoader: loads the active user behind a token (internal/auth/middleware.go)
//   - PermissionChecker: user -> role -> permission lookup (internal/auth/policy.go)
//   - Policy: decides whether an actor may perform an action (internal/auth/policy.go)
//
// ## Storage
//
//   - BlobStore: uploaded thumbnails and user images (internal/storage/client.go)
//   - Deletable / SoftDeletable: how an entity is removed (internal/entities/policy.go)
//
// ## Background Work
//
//   - AuditLogCleaner: removes audit rows past retention (internal/tasks/cleanup_audit.go)
//   - TaskEnqueuer: adds tasks to the queue (internal/scheduler/audit_retention.go)
//
// # Adding a Blob Backend
//
// Implement storage.BlobStore and pass it to hymnal.NewService and
// accounts.NewService. Saved paths are served under /media only by the
// local store; other backends return URLs or keys that clients resolve.
package interfaces
