package database

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"project-management-api/internal/config"

	"github.com/glebarez/sqlite"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

var DB *gorm.DB

// Open connects to the SQLite file at path. Foreign keys are enforced and
// the pool is limited to a single connection since SQLite has one writer.
func Open(path string, level logger.LogLevel) (*gorm.DB, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// InitDB opens the configured database, applies pending migrations and
// installs it as the package-level connection.
func InitDB(cfg *config.Config) error {
	db, err := Open(cfg.DBPath, ParseLogLevel(cfg.DBLogLevel))
	if err != nil {
		return err
	}
	if err := Migrate(db); err != nil {
		return err
	}
	DB = db
	zap.L().Info("database connected and migrated", zap.String("path", cfg.DBPath))
	return nil
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	return DB
}

// Close releases the package-level connection, if any.
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ParseLogLevel(s string) logger.LogLevel {
	switch strings.ToLower(s) {
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

func setupGoose() error {
	goose.SetLogger(gooseLogger{})
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

func sqlHandle(db *gorm.DB) (*sql.DB, error) {
	if err := setupGoose(); err != nil {
		return nil, err
	}
	return db.DB()
}

// Migrate applies every pending migration.
func Migrate(db *gorm.DB) error {
	sqlDB, err := sqlHandle(db)
	if err != nil {
		return err
	}
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(db *gorm.DB) error {
	sqlDB, err := sqlHandle(db)
	if err != nil {
		return err
	}
	if err := goose.Down(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// MigrationStatus logs the applied state of every migration.
func MigrationStatus(db *gorm.DB) error {
	sqlDB, err := sqlHandle(db)
	if err != nil {
		return err
	}
	return goose.Status(sqlDB, "migrations")
}

// SchemaVersion returns the version of the latest applied migration.
func SchemaVersion(db *gorm.DB) (int64, error) {
	sqlDB, err := sqlHandle(db)
	if err != nil {
		return 0, err
	}
	return goose.GetDBVersion(sqlDB)
}

// gooseLogger routes migration output through zap.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	zap.S().Infof(strings.TrimSpace(format), v...)
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	zap.S().Fatalf(strings.TrimSpace(format), v...)
}
