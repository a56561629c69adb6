// Package storage persists per-owner check-in and journal logs. The JSON
// backend is the default; SQLite and PostgreSQL honour the same contract.
package storage

import (
	"path/filepath"
	"strings"
)

// New picks a backend from the store location: a postgres:// URL, a .db or
// .sqlite file, or otherwise a JSON data directory. The store still needs
// Init.
func New(location string) Provider {
	switch {
	case IsPostgresDSN(location):
		return NewPostgresStore(location)
	case IsSQLitePath(location):
		return NewSQLiteStore(location)
	default:
		return NewJSONStore(location)
	}
}

func IsSQLitePath(location string) bool {
	ext := strings.ToLower(filepath.Ext(location))
	return ext == ".db" || ext == ".sqlite" || ext == ".sqlite3"
}
