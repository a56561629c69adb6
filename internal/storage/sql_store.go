package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/mellow/internal/logger"
	"github.com/julianstephens/mellow/internal/migration"
	"github.com/julianstephens/mellow/internal/models"
	"github.com/julianstephens/mellow/migrations"
)

// SQLStore implements Provider on database/sql. SQLite and PostgreSQL share
// the queries; only placeholders and connection setup differ.
type SQLStore struct {
	dialect migration.Dialect
	dsn     string
	db      *sql.DB
	locks   *ownerLocks
}

// NewSQLiteStore returns a store backed by the database file at path.
func NewSQLiteStore(path string) *SQLStore {
	return &SQLStore{dialect: migration.SQLite, dsn: path, locks: newOwnerLocks()}
}

func (s *SQLStore) Init() error {
	var (
		db  *sql.DB
		err error
	)
	switch s.dialect {
	case migration.SQLite:
		if err := os.MkdirAll(filepath.Dir(s.dsn), 0o700); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
		db, err = sql.Open("sqlite", s.dsn+"?_pragma=busy_timeout(5000)")
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		// One writer at a time; the owner locks serialize per owner and
		// this serializes across owners.
		db.SetMaxOpenConns(1)
	case migration.Postgres:
		db, err = openPostgres(s.dsn)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported dialect %q", s.dialect)
	}

	s.db = db
	if err := s.migrate(); err != nil {
		db.Close()
		s.db = nil
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *SQLStore) migrate() error {
	sub, err := fs.Sub(migrations.FS, string(s.dialect))
	if err != nil {
		return fmt.Errorf("failed to access %s migrations: %w", s.dialect, err)
	}
	runner := migration.NewRunner(s.db, sub, s.dialect)
	_, err = runner.Apply(func(msg string) {
		logger.Info(msg, "dialect", s.dialect)
	})
	return err
}

func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLStore) Location() string {
	if s.dialect == migration.Postgres {
		return redactDSN(s.dsn)
	}
	return s.dsn
}

// DB exposes the handle for backups.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) Dialect() migration.Dialect {
	return s.dialect
}

func (s *SQLStore) q(query string) string {
	return s.dialect.Rebind(query)
}

func (s *SQLStore) ready(owner models.Owner) error {
	if s.db == nil {
		return errors.New("store not initialized")
	}
	return owner.Validate()
}

func (s *SQLStore) LoadCheckIns(owner models.Owner) ([]models.CheckIn, error) {
	if err := s.ready(owner); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(s.q(`SELECT day, mood FROM check_ins
		WHERE tenant_id = ? AND user_id = ? ORDER BY id`), owner.TenantID, owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load check-ins: %w", err)
	}
	defer rows.Close()

	entries := []models.CheckIn{}
	for rows.Next() {
		var c models.CheckIn
		if err := rows.Scan(&c.Date, &c.Mood); err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		entries = append(entries, c)
	}
	return entries, rows.Err()
}

func (s *SQLStore) AddCheckIn(owner models.Owner, entry models.CheckIn) error {
	if err := s.ready(owner); err != nil {
		return err
	}

	unlock := s.locks.lock(owner.String())
	defer unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var n int
	err = tx.QueryRow(s.q(`SELECT COUNT(*) FROM check_ins
		WHERE tenant_id = ? AND user_id = ? AND day = ?`), owner.TenantID, owner.UserID, entry.Date).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to check existing check-in: %w", err)
	}
	if n > 0 {
		return ErrAlreadyCheckedIn
	}

	if _, err := tx.Exec(s.q(`INSERT INTO check_ins (tenant_id, user_id, day, mood) VALUES (?, ?, ?, ?)`),
		owner.TenantID, owner.UserID, entry.Date, string(entry.Mood)); err != nil {
		return fmt.Errorf("failed to insert check-in: %w", err)
	}
	return tx.Commit()
}

func (s *SQLStore) LoadJournal(owner models.Owner) ([]models.JournalEntry, error) {
	if err := s.ready(owner); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(s.q(`SELECT id, created_at, content FROM journal_entries
		WHERE tenant_id = ? AND user_id = ? ORDER BY id`), owner.TenantID, owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		var e models.JournalEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Content); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLStore) AppendJournal(owner models.Owner, entry models.JournalEntry) (models.JournalEntry, error) {
	if err := s.ready(owner); err != nil {
		return models.JournalEntry{}, err
	}

	unlock := s.locks.lock(owner.String())
	defer unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var max sql.NullInt64
	if err := tx.QueryRow(s.q(`SELECT MAX(id) FROM journal_entries WHERE tenant_id = ? AND user_id = ?`),
		owner.TenantID, owner.UserID).Scan(&max); err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to read journal ids: %w", err)
	}
	entry.ID = int(max.Int64) + 1

	if _, err := tx.Exec(s.q(`INSERT INTO journal_entries (tenant_id, user_id, id, created_at, content) VALUES (?, ?, ?, ?, ?)`),
		owner.TenantID, owner.UserID, entry.ID, entry.Timestamp, entry.Content); err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to insert journal entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to commit journal entry: %w", err)
	}
	return entry, nil
}

func (s *SQLStore) FindJournal(owner models.Owner, id int) (models.JournalEntry, bool, error) {
	if err := s.ready(owner); err != nil {
		return models.JournalEntry{}, false, err
	}

	e := models.JournalEntry{ID: id}
	err := s.db.QueryRow(s.q(`SELECT created_at, content FROM journal_entries
		WHERE tenant_id = ? AND user_id = ? AND id = ?`), owner.TenantID, owner.UserID, id).Scan(&e.Timestamp, &e.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return models.JournalEntry{}, false, nil
	}
	if err != nil {
		return models.JournalEntry{}, false, fmt.Errorf("failed to find journal entry: %w", err)
	}
	return e, true, nil
}

func (s *SQLStore) RemoveJournal(owner models.Owner, id int) (bool, error) {
	if err := s.ready(owner); err != nil {
		return false, err
	}

	unlock := s.locks.lock(owner.String())
	defer unlock()

	res, err := s.db.Exec(s.q(`DELETE FROM journal_entries WHERE tenant_id = ? AND user_id = ? AND id = ?`),
		owner.TenantID, owner.UserID, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete journal entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete journal entry: %w", err)
	}
	return n > 0, nil
}

func (s *SQLStore) Owners() ([]models.Owner, error) {
	if s.db == nil {
		return nil, errors.New("store not initialized")
	}

	rows, err := s.db.Query(`SELECT tenant_id, user_id FROM check_ins
		UNION SELECT tenant_id, user_id FROM journal_entries
		ORDER BY tenant_id, user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	defer rows.Close()

	var owners []models.Owner
	for rows.Next() {
		var o models.Owner
		if err := rows.Scan(&o.TenantID, &o.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}

func (s *SQLStore) ImportCheckIns(owner models.Owner, entries []models.CheckIn) (int, error) {
	if err := s.ready(owner); err != nil {
		return 0, err
	}

	unlock := s.locks.lock(owner.String())
	defer unlock()

	return s.importRows(len(entries), `INSERT INTO check_ins (tenant_id, user_id, day, mood) VALUES (?, ?, ?, ?)
		ON CONFLICT (tenant_id, user_id, day) DO NOTHING`, func(i int) []any {
		return []any{owner.TenantID, owner.UserID, entries[i].Date, string(entries[i].Mood)}
	})
}

func (s *SQLStore) ImportJournal(owner models.Owner, entries []models.JournalEntry) (int, error) {
	if err := s.ready(owner); err != nil {
		return 0, err
	}

	unlock := s.locks.lock(owner.String())
	defer unlock()

	return s.importRows(len(entries), `INSERT INTO journal_entries (tenant_id, user_id, id, created_at, content) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id, user_id, id) DO NOTHING`, func(i int) []any {
		e := entries[i]
		return []any{owner.TenantID, owner.UserID, e.ID, e.Timestamp, e.Content}
	})
}

// importRows inserts n rows in one transaction and counts the ones that
// were not skipped by a conflict.
func (s *SQLStore) importRows(n int, query string, args func(int) []any) (int, error) {
	start := time.Now()
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(s.q(query))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare import: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := 0; i < n; i++ {
		res, err := stmt.Exec(args(i)...)
		if err != nil {
			return 0, fmt.Errorf("failed to import row %d: %w", i, err)
		}
		if c, err := res.RowsAffected(); err == nil {
			inserted += int(c)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	logger.Debug("imported rows", "rows", inserted, "of", n, "took", time.Since(start))
	return inserted, nil
}
