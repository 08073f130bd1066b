// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, driver selection, migrations, deletion policy
//	├── hymnbooks/       # Hymn book CRUD
//	├── hymns/           # Hymns with their verses and chorus, search
//	├── mappings/        # Cross-book hymn mappings
//	├── users/           # User management
//	├── rbac/            # Roles, permissions and their assignments
//	├── audit/           # Append-only audit log
//	└── dbtest/          # Throwaway databases for tests
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase(cfg.Database)
//
//	// Create domain-specific repositories
//	hymnsRepo := hymns.NewRepository(db.DB)
//	usersRepo := users.NewRepository(db.DB)
//
//	// Use repositories, inside a transaction when several writes belong together
//	err = db.Transaction(ctx, func(tx *gorm.DB) error {
//		return hymnsRepo.WithTx(tx).Create(ctx, hymn)
//	})
//
// # Interface Implementations
//
//   - users.Repository: implements auth.UserLoader
//   - rbac.Repository: implements auth.PermissionChecker
//   - audit.Repository: implements tasks.AuditLogCleaner
//
// # Deletion
//
// Every entity declares a DeletePolicy. Remove marks SoftDelete entities
// deleted and saves them; everything else is removed from its table.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) and WithTx(tx *gorm.DB) constructors
//  4. Register the entity in Models()
//  5. Add compile-time interface checks in internal/interfaces
package database
