package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/russross/meddler"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

// DB is a connection pool together with the dialect it speaks.
type DB struct {
	*sql.DB

	// Driver is the database/sql driver name the pool was opened with
	Driver string

	// Meddler maps rows to structs using the driver's dialect
	Meddler *meddler.Database
}

// Open opens a pool for a postgres:// or sqlite:// url.
func Open(url string, maxOpen, maxIdle int) (*DB, error) {
	driver, dsn, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)

	return wrap(sqlDB, driver), nil
}

// NewSQLiteDB creates a new SQLite DB
func NewSQLiteDB(dbPath string) (*DB, error) {
	sqlDB, err := sql.Open(DriverSQLite, sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return wrap(sqlDB, DriverSQLite), nil
}

// Wrap adopts an already opened pool, e.g. one created by sqlmock.
func Wrap(sqlDB *sql.DB, driver string) *DB {
	return wrap(sqlDB, driver)
}

func wrap(sqlDB *sql.DB, driver string) *DB {
	d := &DB{DB: sqlDB, Driver: driver, Meddler: meddler.PostgreSQL}
	if driver == DriverSQLite {
		d.Meddler = meddler.SQLite
	}
	return d
}

// ParseURL maps a database url to a driver name and the dsn that driver expects.
func ParseURL(url string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite url without a path: %s", url)
		}
		return DriverSQLite, sqliteDSN(path), nil
	case strings.HasPrefix(url, "file:"):
		return DriverSQLite, url, nil
	default:
		return "", "", fmt.Errorf("unsupported database url scheme: %q (supported: postgres://, sqlite://)", url)
	}
}

func sqliteDSN(path string) string {
	return fmt.Sprintf(
		"file:%s?_txlock=immediate&_foreign_keys=on&_journal_mode=WAL&_busy_timeout=30000",
		path,
	)
}
