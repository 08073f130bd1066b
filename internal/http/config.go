package http

import (
	"github.com/mrlokans/hymnal/internal/accounts"
	"github.com/mrlokans/hymnal/internal/audit"
	"github.com/mrlokans/hymnal/internal/auth"
	"github.com/mrlokans/hymnal/internal/database"
	"github.com/mrlokans/hymnal/internal/hymnal"
	"github.com/mrlokans/hymnal/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Hymnal   *hymnal.Service
	Accounts *accounts.Service
	Audit    *audit.Service

	// Authentication
	Auth        *auth.Middleware
	RateLimiter *auth.RateLimiter // optional
	HSTSMaxAge  int

	// Uploaded files, served read-only under /media
	MediaDir       string
	MaxUploadBytes int64

	// Task queue client (optional)
	TaskClient         *tasks.Client
	AuditRetentionDays int

	// Application info
	Version string
}
