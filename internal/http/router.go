package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hymnal/internal/auth"
)

// APIPrefix is the mount point of every versioned endpoint.
const APIPrefix = "/api/v1"

// NewRouter creates and configures the HTTP router with all endpoints.
// Reads of hymns, books and mappings are public; every mutation goes
// through the access policy.
func NewRouter(cfg RouterConfig) *gin.Engine {
	useJSONFieldNames()

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.HSTSMaxAge > 0 {
		router.Use(auth.StrictTransportSecurityMiddleware(cfg.HSTSMaxAge))
	}

	if cfg.MediaDir != "" {
		router.Static("/media", cfg.MediaDir)
	}

	checks := []HealthCheck{DatabaseCheck(cfg.Database), MediaCheck(cfg.MediaDir)}
	if cfg.TaskClient != nil {
		checks = append(checks, HealthCheck{Name: "tasks", Probe: cfg.TaskClient.Ping})
	}
	health := NewHealthController(cfg.Version, checks...)
	router.GET("/health", health.Status)

	authn := cfg.Auth
	api := router.Group(APIPrefix)

	books := NewHymnBooksController(cfg.Hymnal, cfg.MaxUploadBytes)
	api.GET("/hymnbooks", books.List)
	api.POST("/hymnbooks", authn.Require(auth.ActionCreateHymnBook), books.Create)
	api.GET("/hymnbooks/:id", books.Get)
	api.PUT("/hymnbooks/:id", authn.Require(auth.ActionUpdateHymnBook), books.Update)
	api.DELETE("/hymnbooks/:id", authn.Require(auth.ActionDeleteHymnBook), books.Delete)
	api.POST("/hymnbooks/:id/thumbnail", authn.Require(auth.ActionUpdateHymnBook), books.UploadThumbnail)

	hymns := NewHymnsController(cfg.Hymnal)
	api.GET("/hymns", hymns.List)
	api.POST("/hymns", authn.Require(auth.ActionCreateHymn), hymns.Create)
	api.GET("/hymns/search", hymns.Search)
	api.GET("/hymns/search-by-title", hymns.SearchByTitle)
	api.GET("/hymns/book/:id", hymns.ListByBook)
	api.GET("/hymns/book/:id/search", hymns.SearchInBook)
	api.GET("/hymns/book/:id/slides", hymns.BookSlides)
	api.GET("/hymns/book/:id/paged", hymns.BookSlidesPaged)
	api.GET("/hymns/:id", hymns.Get)
	api.PUT("/hymns/:id", authn.Require(auth.ActionUpdateHymn), hymns.Update)
	api.DELETE("/hymns/:id", authn.Require(auth.ActionDeleteHymn), hymns.Delete)
	api.GET("/hymns/:id/slide", hymns.Slide)
	api.GET("/hymns/:id/variants", hymns.Variants)

	mappings := NewMappingsController(cfg.Hymnal)
	api.GET("/mappings", mappings.List)
	api.POST("/mappings", authn.Require(auth.ActionCreateMapping), mappings.Create)
	api.GET("/mappings/source/:id", mappings.ForHymn)
	api.GET("/mappings/:id", mappings.Get)
	api.PUT("/mappings/:id", authn.Require(auth.ActionUpdateMapping), mappings.Update)
	api.DELETE("/mappings/:id", authn.Require(auth.ActionDeleteMapping), mappings.Delete)

	users := NewUsersController(cfg.Accounts, cfg.MaxUploadBytes)
	api.POST("/users", users.Signup)
	api.GET("/users/me", authn.RequireAuth(), users.Me)
	api.GET("/users", authn.Require(auth.ActionReadUser), users.List)
	api.GET("/users/:id", authn.Require(auth.ActionReadUser), users.Get)
	api.PUT("/users/:id", authn.Require(auth.ActionUpdateUser), users.Update)
	api.DELETE("/users/:id", authn.Require(auth.ActionDeleteUser), users.Delete)
	api.POST("/users/:id/image", authn.RequireAuth(), users.UploadImage)
	api.GET("/users/:id/roles", authn.Require(auth.ActionReadRole), users.Roles)
	api.POST("/users/:id/roles/:role_id", authn.Require(auth.ActionAssignRole), users.AssignRole)
	api.DELETE("/users/:id/roles/:role_id", authn.Require(auth.ActionAssignRole), users.RevokeRole)

	authController := NewAuthController(cfg.Accounts, cfg.RateLimiter)
	api.POST("/auth/login", authController.Login)
	api.POST("/register", authn.Require(auth.ActionCreateUser), authController.Register)
	api.POST("/2fa/setup", authn.Require(auth.ActionSetup2FA), authController.Setup2FA)
	api.POST("/2fa/verify", authn.Require(auth.ActionVerify2FA), authController.Verify2FA)

	rbac := NewRBACController(cfg.Accounts)
	api.GET("/roles", authn.Require(auth.ActionReadRole), rbac.ListRoles)
	api.POST("/roles", authn.Require(auth.ActionCreateRole), rbac.CreateRole)
	api.GET("/permissions", authn.Require(auth.ActionReadRole), rbac.ListPermissions)
	api.POST("/permissions", authn.Require(auth.ActionCreatePermission), rbac.CreatePermission)
	api.POST("/roles/:id/permissions/:permission_id", authn.Require(auth.ActionAssignPermission), rbac.AssignPermission)
	api.DELETE("/roles/:id/permissions/:permission_id", authn.Require(auth.ActionAssignPermission), rbac.RevokePermission)

	auditLogs := NewAuditController(cfg.Audit)
	api.GET("/audit-logs", authn.Require(auth.ActionReadAuditLog), auditLogs.List)

	if cfg.TaskClient != nil {
		taskController := NewTasksController(cfg.TaskClient, cfg.AuditRetentionDays)
		api.POST("/tasks/cleanup-audit-logs", authn.Require(auth.ActionCleanupAuditLog), taskController.RunAuditCleanup)
		api.GET("/tasks/:id", authn.Require(auth.ActionReadAuditLog), taskController.GetTaskStatus)
	}

	return router
}
