package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/hymnal/internal/config"
	"github.com/mrlokans/hymnal/internal/entities"
)

type Database struct {
	DB *gorm.DB
}

// Models lists every entity managed by AutoMigrate.
func Models() []any {
	return []any{
		&entities.HymnBook{},
		&entities.Hymn{},
		&entities.Verse{},
		&entities.Chorus{},
		&entities.HymnMapping{},
		&entities.User{},
		&entities.Role{},
		&entities.Permission{},
		&entities.UserRole{},
		&entities.RolePermission{},
		&entities.AuditLog{},
	}
}

func NewDatabase(cfg config.Database) (*Database, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.Debug {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("Database initialized", "driver", driverName(cfg), "target", target(cfg))

	return &Database{DB: db}, nil
}

func dialectorFor(cfg config.Database) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return sqlite.Open(sqliteDSN(cfg.Path)), nil
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for the postgres driver")
		}
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// sqliteDSN enables foreign keys so ON DELETE CASCADE constraints hold, and
// WAL with a busy timeout so concurrent requests wait instead of failing.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
}

func driverName(cfg config.Database) string {
	if cfg.Driver == "" {
		return string(config.DriverSQLite)
	}
	return string(cfg.Driver)
}

func target(cfg config.Database) string {
	if cfg.Driver == config.DriverPostgres {
		return "postgres"
	}
	return cfg.Path
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks connectivity for health probes.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Transaction runs fn inside a transaction bound to ctx. The transaction is
// rolled back when fn returns an error or panics.
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}

// Remove deletes record according to its DeletePolicy. Soft-deletable records
// are marked and saved; everything else is removed from its table.
func Remove(tx *gorm.DB, record entities.Deletable) error {
	switch record.DeletePolicy() {
	case entities.SoftDelete:
		soft, ok := record.(entities.SoftDeletable)
		if !ok {
			return fmt.Errorf("%T declares soft delete but cannot be marked deleted", record)
		}
		soft.MarkDeleted(time.Now().UTC())
		return tx.Save(soft).Error
	default:
		return tx.Delete(record).Error
	}
}
