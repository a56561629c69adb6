package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/julianstephens/mellow/internal/checkin"
	"github.com/julianstephens/mellow/internal/constants"
	"github.com/julianstephens/mellow/internal/logger"
	"github.com/julianstephens/mellow/internal/models"
)

// LoadStatus tells apart the three ways a log file can read as empty.
type LoadStatus int

const (
	StatusValid LoadStatus = iota
	StatusAbsent
	StatusCorrupt
)

func (s LoadStatus) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusAbsent:
		return "absent"
	case StatusCorrupt:
		return "corrupt"
	}
	return "unknown"
}

// JSONStore keeps one JSON array file per owner and log kind under a base
// directory:
//
//	<base>/CheckIns/<tenant>/<user>.json
//	<base>/Journals/<tenant>/<user>_journal.json
type JSONStore struct {
	baseDir string
	locks   *ownerLocks
}

func NewJSONStore(baseDir string) *JSONStore {
	return &JSONStore{
		baseDir: baseDir,
		locks:   newOwnerLocks(),
	}
}

func (s *JSONStore) Init() error {
	for _, dir := range []string{constants.CheckInsDirName, constants.JournalsDirName} {
		if err := os.MkdirAll(filepath.Join(s.baseDir, dir), 0o700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) Location() string {
	return s.baseDir
}

// BaseDir is the root of the data tree.
func (s *JSONStore) BaseDir() string {
	return s.baseDir
}

func (s *JSONStore) checkInPath(owner models.Owner) (string, error) {
	if err := owner.Validate(); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, constants.CheckInsDirName, owner.TenantID, owner.UserID+".json"), nil
}

func (s *JSONStore) journalPath(owner models.Owner) (string, error) {
	if err := owner.Validate(); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, constants.JournalsDirName, owner.TenantID, owner.UserID+constants.JournalFileSuffix), nil
}

// readLog decodes a JSON array file. Missing and malformed files both read
// as an empty log; the status says which. Entries that do not decode are
// dropped individually.
func readLog[T any](path string) ([]T, LoadStatus) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []T{}, StatusAbsent
		}
		logger.Warn("failed to read log", "path", path, "error", err)
		return []T{}, StatusCorrupt
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("malformed log treated as empty", "path", path, "error", err)
		return []T{}, StatusCorrupt
	}

	// A mistyped entry is skipped on its own; the rest of the log survives.
	entries := make([]T, 0, len(raw))
	for i, item := range raw {
		var entry T
		if err := json.Unmarshal(item, &entry); err != nil {
			logger.Warn("skipping malformed log entry", "path", path, "index", i, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, StatusValid
}

// writeLog replaces path atomically: the array is written to a temp file in
// the same directory, then renamed over the target.
func writeLog[T any](path string, entries []T) error {
	if entries == nil {
		entries = []T{}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to serialize log: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write log: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set log permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace log: %w", err)
	}
	return nil
}

// CheckInStatus reports how the owner's check-in file reads.
func (s *JSONStore) CheckInStatus(owner models.Owner) (LoadStatus, error) {
	path, err := s.checkInPath(owner)
	if err != nil {
		return StatusAbsent, err
	}
	_, status := readLog[models.CheckIn](path)
	return status, nil
}

// JournalStatus reports how the owner's journal file reads.
func (s *JSONStore) JournalStatus(owner models.Owner) (LoadStatus, error) {
	path, err := s.journalPath(owner)
	if err != nil {
		return StatusAbsent, err
	}
	_, status := readLog[models.JournalEntry](path)
	return status, nil
}

func (s *JSONStore) LoadCheckIns(owner models.Owner) ([]models.CheckIn, error) {
	path, err := s.checkInPath(owner)
	if err != nil {
		return nil, err
	}
	entries, _ := readLog[models.CheckIn](path)
	return entries, nil
}

func (s *JSONStore) AddCheckIn(owner models.Owner, entry models.CheckIn) error {
	path, err := s.checkInPath(owner)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(path)
	defer unlock()

	entries, _ := readLog[models.CheckIn](path)
	if checkin.HasEntryOn(entries, entry.Date) {
		return ErrAlreadyCheckedIn
	}
	return writeLog(path, append(entries, entry))
}

func (s *JSONStore) LoadJournal(owner models.Owner) ([]models.JournalEntry, error) {
	path, err := s.journalPath(owner)
	if err != nil {
		return nil, err
	}
	entries, _ := readLog[models.JournalEntry](path)
	return entries, nil
}

func (s *JSONStore) AppendJournal(owner models.Owner, entry models.JournalEntry) (models.JournalEntry, error) {
	path, err := s.journalPath(owner)
	if err != nil {
		return models.JournalEntry{}, err
	}

	unlock := s.locks.lock(path)
	defer unlock()

	entries, _ := readLog[models.JournalEntry](path)
	entry.ID = nextJournalID(entries)
	if err := writeLog(path, append(entries, entry)); err != nil {
		return models.JournalEntry{}, err
	}
	return entry, nil
}

func (s *JSONStore) FindJournal(owner models.Owner, id int) (models.JournalEntry, bool, error) {
	entries, err := s.LoadJournal(owner)
	if err != nil {
		return models.JournalEntry{}, false, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, true, nil
		}
	}
	return models.JournalEntry{}, false, nil
}

func (s *JSONStore) RemoveJournal(owner models.Owner, id int) (bool, error) {
	path, err := s.journalPath(owner)
	if err != nil {
		return false, err
	}

	unlock := s.locks.lock(path)
	defer unlock()

	entries, _ := readLog[models.JournalEntry](path)
	kept := make([]models.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return false, nil
	}
	if err := writeLog(path, kept); err != nil {
		return false, err
	}
	return true, nil
}

// Owners walks both log trees. Files whose names are not valid owner ids are
// ignored.
func (s *JSONStore) Owners() ([]models.Owner, error) {
	seen := make(map[models.Owner]bool)

	collect := func(kind, suffix string) error {
		root := filepath.Join(s.baseDir, kind)
		tenants, err := os.ReadDir(root)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", kind, err)
		}
		for _, tenant := range tenants {
			if !tenant.IsDir() {
				continue
			}
			files, err := os.ReadDir(filepath.Join(root, tenant.Name()))
			if err != nil {
				return fmt.Errorf("failed to list %s/%s: %w", kind, tenant.Name(), err)
			}
			for _, f := range files {
				if f.IsDir() || !strings.HasSuffix(f.Name(), suffix) {
					continue
				}
				owner := models.Owner{TenantID: tenant.Name(), UserID: strings.TrimSuffix(f.Name(), suffix)}
				if owner.Validate() != nil {
					continue
				}
				seen[owner] = true
			}
		}
		return nil
	}

	if err := collect(constants.JournalsDirName, constants.JournalFileSuffix); err != nil {
		return nil, err
	}
	if err := collect(constants.CheckInsDirName, ".json"); err != nil {
		return nil, err
	}

	owners := make([]models.Owner, 0, len(seen))
	for o := range seen {
		owners = append(owners, o)
	}
	sort.Slice(owners, func(i, j int) bool {
		if owners[i].TenantID != owners[j].TenantID {
			return owners[i].TenantID < owners[j].TenantID
		}
		return owners[i].UserID < owners[j].UserID
	})
	return owners, nil
}
