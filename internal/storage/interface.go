package storage

import (
	"errors"

	"github.com/julianstephens/mellow/internal/models"
)

var (
	// ErrAlreadyCheckedIn is returned by AddCheckIn when the owner already
	// has an entry for that date.
	ErrAlreadyCheckedIn = errors.New("already checked in today")
)

// Provider is a per-owner entry log store. Every mutation is a full
// load-mutate-save under the owner's lock.
type Provider interface {
	// Lifecycle
	Init() error
	Close() error

	// Check-ins, insertion ordered
	LoadCheckIns(owner models.Owner) ([]models.CheckIn, error)
	AddCheckIn(owner models.Owner, entry models.CheckIn) error

	// Journal, insertion ordered
	LoadJournal(owner models.Owner) ([]models.JournalEntry, error)
	AppendJournal(owner models.Owner, entry models.JournalEntry) (models.JournalEntry, error)
	FindJournal(owner models.Owner, id int) (models.JournalEntry, bool, error)
	RemoveJournal(owner models.Owner, id int) (bool, error)

	// Owners lists every owner with at least one log.
	Owners() ([]models.Owner, error)

	// Location describes where the data lives, for diagnostics.
	Location() string
}

// Importer accepts whole logs with their original ids. Used when moving JSON
// data into a SQL store; entries already present are skipped.
type Importer interface {
	ImportCheckIns(owner models.Owner, entries []models.CheckIn) (int, error)
	ImportJournal(owner models.Owner, entries []models.JournalEntry) (int, error)
}

// nextJournalID returns max(id)+1, or 1 for an empty log.
func nextJournalID(entries []models.JournalEntry) int {
	max := 0
	for _, e := range entries {
		if e.ID > max {
			max = e.ID
		}
	}
	return max + 1
}
