// Package backup snapshots the bot's data and restores it. A JSON data
// directory is archived as a zip; a SQLite database is copied with
// VACUUM INTO. Only the newest backups are kept.
package backup

import (
	"archive/zip"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/mellow/internal/constants"
	"github.com/julianstephens/mellow/internal/logger"
	"github.com/julianstephens/mellow/internal/migration"
	"github.com/julianstephens/mellow/internal/storage"
)

const timestampFormat = "20060102-150405"

// Kind is the snapshot strategy for a store.
type Kind int

const (
	KindJSONDir Kind = iota
	KindSQLite
)

func (k Kind) suffix() string {
	if k == KindSQLite {
		return ".db"
	}
	return ".zip"
}

type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

type Manager struct {
	source    string
	kind      Kind
	backupDir string
	now       func() time.Time
}

// NewManager backs up source, a data directory or a SQLite file. Backups go
// to a "backups" directory next to it.
func NewManager(source string, kind Kind) *Manager {
	source = filepath.Clean(source)
	return &Manager{
		source:    source,
		kind:      kind,
		backupDir: filepath.Join(filepath.Dir(source), constants.BackupDirName),
		now:       time.Now,
	}
}

// ForStore picks the snapshot strategy for an opened store.
func ForStore(p storage.Provider) (*Manager, error) {
	switch s := p.(type) {
	case *storage.JSONStore:
		return NewManager(s.BaseDir(), KindJSONDir), nil
	case *storage.SQLStore:
		if s.Dialect() != migration.SQLite {
			return nil, fmt.Errorf("backups are not supported for %s; use the database's own tooling", s.Dialect())
		}
		return NewManager(s.Location(), KindSQLite), nil
	}
	return nil, fmt.Errorf("backups are not supported for store %s", p.Location())
}

func (m *Manager) BackupDir() string {
	return m.backupDir
}

// CreateBackup writes a new snapshot and prunes old ones.
func (m *Manager) CreateBackup() (string, error) {
	path, err := m.create()
	if err != nil {
		return "", err
	}
	if err := m.rotate(); err != nil {
		logger.Warn("failed to rotate old backups", "error", err)
	}
	return path, nil
}

func (m *Manager) create() (string, error) {
	if _, err := os.Stat(m.source); err != nil {
		return "", fmt.Errorf("nothing to back up at %s: %w", m.source, err)
	}
	if err := os.MkdirAll(m.backupDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	path, err := m.nextName()
	if err != nil {
		return "", err
	}

	switch m.kind {
	case KindSQLite:
		err = vacuumInto(m.source, path)
	default:
		err = zipDir(m.source, path)
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to back up %s: %w", m.source, err)
	}
	logger.Info("backup created", "path", path)
	return path, nil
}

func (m *Manager) nextName() (string, error) {
	stamp := m.now().Format(timestampFormat)
	base := constants.BackupFilePrefix + stamp
	path := filepath.Join(m.backupDir, base+m.kind.suffix())
	for i := 1; fileExists(path); i++ {
		if i > 100 {
			return "", errors.New("failed to generate unique backup filename")
		}
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s-%d%s", base, i, m.kind.suffix()))
	}
	return path, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListBackups returns backups newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, m.kind.suffix()) {
			continue
		}
		ts, seq, ok := parseName(strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), m.kind.suffix()))
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:      filepath.Join(m.backupDir, name),
			Timestamp: ts.Add(time.Duration(seq) * time.Nanosecond),
			Size:      info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// parseName reads "YYYYMMDD-HHMMSS" with an optional "-N" collision
// counter, which orders same-second backups.
func parseName(s string) (time.Time, int, bool) {
	seq := 0
	if len(s) > len(timestampFormat) {
		n, err := strconv.Atoi(strings.TrimPrefix(s[len(timestampFormat):], "-"))
		if err != nil {
			return time.Time{}, 0, false
		}
		seq, s = n, s[:len(timestampFormat)]
	}
	ts, err := time.ParseInLocation(timestampFormat, s, time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	return ts, seq, true
}

func (m *Manager) rotate() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// RestoreBackup replaces the live data with the snapshot at backupPath.
// The current data is snapshotted first. The bot must be stopped.
func (m *Manager) RestoreBackup(backupPath string) error {
	if err := m.verify(backupPath); err != nil {
		return fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	if fileExists(m.source) {
		current, err := m.create()
		if err != nil {
			return fmt.Errorf("failed to back up current data before restore: %w", err)
		}
		logger.Info("saved current data before restore", "path", current)
	}

	if m.kind == KindSQLite {
		return restoreFile(backupPath, m.source)
	}
	return restoreDir(backupPath, m.source)
}

func (m *Manager) verify(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	if m.kind == KindSQLite {
		db, err := sql.Open("sqlite", path)
		if err != nil {
			return err
		}
		defer db.Close()
		var n int
		return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&n)
	}
	r, err := zip.OpenReader(path)
	if err != nil {
		return err
	}
	return r.Close()
}

func vacuumInto(dbPath, dest string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&n); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	if _, err := db.Exec("VACUUM INTO ?", dest); err != nil {
		return copyFile(dbPath, dest)
	}
	return nil
}

// zipDir archives every regular file under root with slash-separated paths
// relative to root.
func zipDir(root, dest string) error {
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || strings.HasSuffix(d.Name(), ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return out.Sync()
}

// restoreDir unpacks the archive next to target and swaps it in.
func restoreDir(archive, target string) error {
	parent := filepath.Dir(target)
	staging, err := os.MkdirTemp(parent, ".restore-*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := unzip(archive, staging); err != nil {
		return fmt.Errorf("failed to extract backup: %w", err)
	}

	old := target + ".old"
	os.RemoveAll(old)
	if fileExists(target) {
		if err := os.Rename(target, old); err != nil {
			return fmt.Errorf("failed to move current data aside: %w", err)
		}
	}
	if err := os.Rename(staging, target); err != nil {
		os.Rename(old, target)
		return fmt.Errorf("failed to restore data: %w", err)
	}
	if err := os.Chmod(target, 0o700); err != nil {
		logger.Warn("failed to set data directory permissions", "error", err)
	}
	return os.RemoveAll(old)
}

func unzip(archive, dest string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := filepath.FromSlash(f.Name)
		if !filepath.IsLocal(name) {
			return fmt.Errorf("archive entry escapes data directory: %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			continue
		}

		path := filepath.Join(dest, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return err
		}
		if err := extract(f, path); err != nil {
			return err
		}
	}
	return nil
}

func extract(f *zip.File, path string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, rc)
	return err
}

func restoreFile(backupPath, target string) error {
	tmp := target + ".restore.tmp"
	if err := copyFile(backupPath, tmp); err != nil {
		return fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to restore database: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
