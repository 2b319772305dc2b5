package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/iliyamo/song-sponsorship/internal/config"
	"github.com/iliyamo/song-sponsorship/internal/model"
)

const defaultPingTimeout = 5 * time.Second

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	}
}

// OpenGorm opens the catalog store selected by cfg.DBDriver.  MySQL
// reuses the pooled connection from Open; SQLite opens cfg.SQLitePath
// (":memory:" keeps everything in process).
func OpenGorm(cfg config.Config) (*gorm.DB, error) {
	switch strings.ToLower(cfg.DBDriver) {
	case "", "mysql":
		sqlDB, err := Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		return gorm.Open(gormmysql.New(gormmysql.Config{Conn: sqlDB}), gormConfig())
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// OpenSQLite opens a SQLite database at path.  The pool is limited to one
// connection so an in-memory database is shared by every query.
func OpenSQLite(path string) (*gorm.DB, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Migrate creates or upgrades the songs and sponsors tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
