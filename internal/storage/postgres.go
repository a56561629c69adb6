package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/julianstephens/mellow/internal/constants"
	"github.com/julianstephens/mellow/internal/migration"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// NewPostgresStore returns a store on the given connection string. Tables
// live in a "mellow" schema unless search_path is set explicitly.
func NewPostgresStore(connStr string) *SQLStore {
	return &SQLStore{dialect: migration.Postgres, dsn: withSearchPath(connStr), locks: newOwnerLocks()}
}

// IsPostgresDSN reports whether value should be opened with the postgres
// backend.
func IsPostgresDSN(value string) bool {
	return strings.HasPrefix(value, "postgres://") || strings.HasPrefix(value, "postgresql://")
}

// ValidateConnString rejects malformed strings and any that embed a
// password. Passwords belong in PGPASSWORD or ~/.pgpass.
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}

	if IsPostgresDSN(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
		}
		if _, set := u.User.Password(); set {
			return ErrEmbeddedCredentials
		}
		if u.Host == "" && u.User == nil && (u.Path == "" || u.Path == "/") {
			return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
		return nil
	}

	for _, pair := range strings.Fields(connStr) {
		key, _, ok := strings.Cut(pair, "=")
		if ok && strings.EqualFold(strings.TrimSpace(key), "password") {
			return ErrEmbeddedCredentials
		}
	}
	return nil
}

func withSearchPath(connStr string) string {
	if IsPostgresDSN(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return connStr
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
		}
		return u.String()
	}

	for _, pair := range strings.Fields(connStr) {
		if key, _, ok := strings.Cut(pair, "="); ok && strings.EqualFold(key, "search_path") {
			return connStr
		}
	}
	return strings.TrimSpace(connStr) + " search_path=" + constants.AppName
}

func hasSSLMode(connStr string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for key := range u.Query() {
			if strings.EqualFold(key, "sslmode") {
				return true
			}
		}
	}
	for _, pair := range strings.Fields(connStr) {
		if key, _, ok := strings.Cut(pair, "="); ok && strings.EqualFold(key, "sslmode") {
			return true
		}
	}
	return false
}

// redactDSN drops user info from URL-style strings for display.
func redactDSN(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil || u.Scheme == "" {
		return "postgres"
	}
	u.User = nil
	return u.String()
}

func openPostgres(connStr string) (*sql.DB, error) {
	if err := ValidateConnString(connStr); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(connStr) {
			return nil, fmt.Errorf("failed to connect to database: %w (hint: try adding sslmode=disable)", err)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + pq.QuoteIdentifier(constants.AppName)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return db, nil
}
