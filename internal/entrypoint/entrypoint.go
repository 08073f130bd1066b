package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hymnal/internal/accounts"
	"github.com/mrlokans/hymnal/internal/audit"
	"github.com/mrlokans/hymnal/internal/auth"
	"github.com/mrlokans/hymnal/internal/config"
	"github.com/mrlokans/hymnal/internal/database"
	auditRepo "github.com/mrlokans/hymnal/internal/database/audit"
	"github.com/mrlokans/hymnal/internal/database/rbac"
	"github.com/mrlokans/hymnal/internal/hymnal"
	http_controllers "github.com/mrlokans/hymnal/internal/http"
	"github.com/mrlokans/hymnal/internal/scheduler"
	"github.com/mrlokans/hymnal/internal/storage"
	"github.com/mrlokans/hymnal/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds the services shared by the server and the maintenance commands.
type App struct {
	Config    *config.Config
	Database  *database.Database
	AuditRepo *auditRepo.Repository
	Audit     *audit.Service
	Blobs     *storage.LocalStore
	Tokens    *auth.TokenIssuer
	Policy    auth.Policy
	Hymnal    *hymnal.Service
	Accounts  *accounts.Service
}

// NewApp opens the database and builds the services. The caller owns the
// returned App and must Close it.
func NewApp(cfg *config.Config) (*App, error) {
	secret := cfg.Auth.SecretKey
	if secret == "" {
		log.Warn("AUTH_SECRET_KEY is not set, using the development key. Tokens will not survive a key change.")
		secret = config.DevSecretKey
	}

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	policy, err := auth.NewPolicy(cfg.Auth.Policy, rbac.NewRepository(db.DB))
	if err != nil {
		db.Close()
		return nil, err
	}

	blobs, err := storage.NewLocalStore(cfg.Media.Dir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize media storage: %w", err)
	}

	repo := auditRepo.NewRepository(db.DB)
	auditService := audit.NewService(repo)
	tokens := auth.NewTokenIssuer(secret, cfg.Auth.TokenExpiry)

	return &App{
		Config:    cfg,
		Database:  db,
		AuditRepo: repo,
		Audit:     auditService,
		Blobs:     blobs,
		Tokens:    tokens,
		Policy:    policy,
		Hymnal:    hymnal.NewService(db, auditService, blobs),
		Accounts: accounts.NewService(db, auditService, blobs, accounts.Options{
			Tokens:     tokens,
			TOTP:       auth.NewTOTP(cfg.Auth.TOTPIssuer),
			Policy:     policy,
			BcryptCost: cfg.Auth.BcryptCost,
		}),
	}, nil
}

func (a *App) Close() {
	if err := a.Database.Close(); err != nil {
		log.Error("Error closing database", "err", err)
	}
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", "err", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT; SIGKILL cannot be caught
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown", "err", err)
	}

	log.Info("Server exiting")
}

// Run builds every component from cfg and serves until a termination signal.
func Run(cfg *config.Config, version string) error {
	log.Info("Starting Hymnal", "version", version)

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Accounts.SeedPermissions(context.Background()); err != nil {
		return fmt.Errorf("failed to seed permissions: %w", err)
	}
	log.Info("Access policy", "mode", cfg.Auth.Policy)

	rateLimiter := auth.NewRateLimiter(auth.RateLimitConfigFrom(cfg.Auth))
	defer rateLimiter.Stop()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var enqueuer scheduler.TaskEnqueuer
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error("Error closing task client", "err", err)
			}
		}()

		taskClient.Register(tasks.NewCleanupAuditLogsQueue(app.AuditRepo))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
		enqueuer = taskClient
	}

	retention := scheduler.NewAuditRetentionScheduler(
		cfg.Audit.CleanupSchedule,
		cfg.Audit.RetentionDays,
		enqueuer,
		app.AuditRepo,
	)
	if err := retention.Start(context.Background()); err != nil {
		return err
	}

	if count, err := app.Accounts.Users().Count(context.Background()); err == nil && count == 0 {
		log.Warn("No users found. Run 'create-superuser' to create an administrator account.")
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:           app.Database,
		Hymnal:             app.Hymnal,
		Accounts:           app.Accounts,
		Audit:              app.Audit,
		Auth:               auth.NewMiddleware(app.Tokens, app.Accounts.Users(), app.Policy),
		RateLimiter:        rateLimiter,
		HSTSMaxAge:         cfg.HTTP.HSTSMaxAge,
		MediaDir:           cfg.Media.Dir,
		MaxUploadBytes:     cfg.Media.MaxUploadBytes,
		TaskClient:         taskClient,
		AuditRetentionDays: retentionOrDefault(cfg.Audit.RetentionDays),
		Version:            version,
	})

	onShutdown := func(ctx context.Context) {
		retention.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
	return nil
}

// retentionOrDefault is the period a manual cleanup uses when the request
// names none.
func retentionOrDefault(days int) int {
	if days > 0 {
		return days
	}
	return tasks.DefaultAuditRetentionDays
}
