package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"todo-manager/config"
	"todo-manager/utilities"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const pingTimeout = 5 * time.Second

// Connect opens and pings the SQL database described by cfg.
func Connect(cfg config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return ConnectPostgres(cfg)
	case config.DriverPgx:
		return ConnectPgx(cfg)
	case config.DriverSQLite:
		return ConnectSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("driver %q has no SQL connection", cfg.Driver)
	}
}

// ConnectPostgres opens a connection pool through lib/pq.
func ConnectPostgres(cfg config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	utilities.LogInfo("Connected to PostgreSQL at %s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
	return db, nil
}

// ConnectPgx opens a connection pool through the pgx stdlib driver.
func ConnectPgx(cfg config.DatabaseConfig) (*sql.DB, error) {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Path:     "/" + cfg.DBName,
		RawQuery: url.Values{"sslmode": {cfg.SSLMode}}.Encode(),
	}

	db, err := open("pgx", u.String())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	utilities.LogInfo("Connected to PostgreSQL (pgx) at %s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
	return db, nil
}

// ConnectSQLite opens the SQLite database at path with foreign keys on.
// path may be ":memory:".
func ConnectSQLite(path string) (*sql.DB, error) {
	db, err := open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// ":memory:" databases live per connection.
	db.SetMaxOpenConns(1)

	utilities.LogInfo("Connected to SQLite at %s", path)
	return db, nil
}

func open(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening %s database: %w", driver, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to %s database: %w", driver, err)
	}
	return db, nil
}
