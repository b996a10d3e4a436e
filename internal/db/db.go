package db

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"laptop-inventory-backend/config"
	"laptop-inventory-backend/internal/model"
)

// Init opens the configured database, sizes its pool and runs migrations.
func Init(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	// Shared-cache in-memory databases fail fast with SQLITE_LOCKED
	// instead of waiting on the busy timeout.
	if cfg.Driver == "sqlite" && inMemory(cfg.DSN) {
		sqlDB.SetMaxOpenConns(1)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	log.Info("running database migrations", zap.String("driver", cfg.Driver))
	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("database initialization complete")
	return db, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres", "":
		return postgres.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(sqliteDSN(cfg.DSN)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// sqliteBusyTimeoutMS is how long a SQLite writer waits for the lock.
const sqliteBusyTimeoutMS = 5000

// sqliteDSN makes every transaction take the write lock at BEGIN and wait
// for it, so racing writers queue instead of failing mid-transaction.
func sqliteDSN(dsn string) string {
	var params []string
	if !strings.Contains(dsn, "_timeout") {
		params = append(params, fmt.Sprintf("_busy_timeout=%d", sqliteBusyTimeoutMS))
	}
	if !strings.Contains(dsn, "_txlock") {
		params = append(params, "_txlock=immediate")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

func inMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func logLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Migrate creates the schema and the partial indexes that keep at most one
// open reservation and one active assignment per laptop.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Employee{},
		&model.Laptop{},
		&model.Reservation{},
		&model.Assignment{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	ddls := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS reservations_one_open_per_laptop " +
			"ON reservations (laptop_id) WHERE status = 'Reserved'",
		"CREATE UNIQUE INDEX IF NOT EXISTS assignments_one_active_per_laptop " +
			"ON assignments (laptop_id) WHERE status = 'Active'",
	}
	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
