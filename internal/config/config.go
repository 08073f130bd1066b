package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type PolicyMode string

const (
	PolicyFlags PolicyMode = "flags" // Staff or superuser flag gates every mutation (default)
	PolicyRBAC  PolicyMode = "rbac"  // Role -> permission lookup, flags still short-circuit
)

type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
)

type (
	Config struct {
		HTTP
		Database
		Auth
		Media
		Audit
		Tasks
		Log
		Global
	}

	HTTP struct {
		Port       int32
		Host       string
		HSTSMaxAge int // Seconds; 0 disables Strict-Transport-Security
	}
	Database struct {
		Driver DatabaseDriver
		Path   string // SQLite file path
		DSN    string // PostgreSQL connection string
		Debug  bool   // Log every SQL statement
	}
	Auth struct {
		Policy      PolicyMode
		SecretKey   string
		TokenExpiry time.Duration
		BcryptCost  int
		TOTPIssuer  string

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Media struct {
		Dir            string
		MaxUploadBytes int64
	}
	Audit struct {
		RetentionDays   int    // 0 keeps audit logs forever
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Log struct {
		Level  string
		Format string // "text" or "json"
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

// NewConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// win over it.
func NewConfig() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("hsts_max_age", 0)
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_debug", false)

	// Auth defaults
	v.SetDefault("auth_policy", string(PolicyFlags))
	v.SetDefault("auth_secret_key", "")
	v.SetDefault("auth_token_expiry", "30m")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_totp_issuer", DefaultTOTPIssuer)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	v.SetDefault("media_dir", DefaultMediaDir)
	v.SetDefault("media_max_upload_bytes", DefaultMaxUploadBytes)

	v.SetDefault("audit_retention_days", 0)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", false)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	return &Config{
		HTTP: HTTP{
			Port:       v.GetInt32("PORT"),
			Host:       v.GetString("HOST"),
			HSTSMaxAge: v.GetInt("HSTS_MAX_AGE"),
		},
		Database: Database{
			Driver: DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
			Debug:  v.GetBool("DATABASE_DEBUG"),
		},
		Auth: Auth{
			Policy:           PolicyMode(v.GetString("AUTH_POLICY")),
			SecretKey:        v.GetString("AUTH_SECRET_KEY"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			TOTPIssuer:       v.GetString("AUTH_TOTP_ISSUER"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Media: Media{
			Dir:            v.GetString("MEDIA_DIR"),
			MaxUploadBytes: v.GetInt64("MEDIA_MAX_UPLOAD_BYTES"),
		},
		Audit: Audit{
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
