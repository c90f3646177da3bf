package db

import (
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/lib/pq" // registers the "postgres" database/sql driver used by gorm below
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DBConfig struct {
	Driver string
	Host   string
	Port   string

	User     string
	Password string
	Name     string
	SSLMode  string

	// Path is the SQLite file or DSN; only used when Driver is "sqlite".
	Path string
	// Debug logs every statement.
	Debug bool
}

// GetConnection opens the database through gorm and checks it with a ping.
// Postgres goes through lib/pq; SQLite through mattn/go-sqlite3 with foreign keys on.
func GetConnection(config DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case "", "postgres":
		connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			config.Host, config.Port, config.User, config.Password, config.Name, config.SSLMode)
		dialector = postgres.New(postgres.Config{DriverName: "postgres", DSN: connStr})
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(config.Path))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}

	level := logger.Warn
	if config.Debug {
		level = logger.Info
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting sql.DB: %w", err)
	}
	if err = sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("error pinging the database: %w", err)
	}
	if config.Driver == "sqlite" {
		// A single connection keeps in-memory databases alive and serializes writers.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	log.Printf("Database connection established successfully: %s", describe(config))
	return gdb, nil
}

// Close releases the pool behind a gorm handle.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func sqliteDSN(path string) string {
	if path == "" {
		path = "inventory.db"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	if !strings.Contains(path, "_foreign_keys") && !strings.Contains(path, "_fk") {
		path += sep + "_foreign_keys=1"
		sep = "&"
	}
	if !strings.Contains(path, "_busy_timeout") {
		path += sep + "_busy_timeout=5000"
	}
	return path
}

func describe(config DBConfig) string {
	if config.Driver == "sqlite" {
		return "sqlite " + config.Path
	}
	return "postgres " + config.Name
}
