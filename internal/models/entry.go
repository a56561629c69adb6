package models

import (
	"time"

	"github.com/julianstephens/mellow/internal/constants"
)

// CheckIn is one day's mood record
type CheckIn struct {
	Date string `json:"date"` // YYYY-MM-DD format
	Mood Mood   `json:"mood"`
}

// Day parses the check-in date. Corrupt dates return an error.
func (c CheckIn) Day() (time.Time, error) {
	return time.ParseInLocation(constants.DateParseLayout, c.Date, time.Local)
}

// JournalEntry is a private free-text journal record
type JournalEntry struct {
	ID        int    `json:"id"`
	Timestamp string `json:"timestamp"` // YYYY-MM-DD HH:MM:SS, UTC
	Content   string `json:"content"`
}

// NewJournalEntry builds an entry stamped with the given instant. The ID is
// assigned by the store.
func NewJournalEntry(content string, at time.Time) JournalEntry {
	return JournalEntry{
		Timestamp: at.UTC().Format(constants.TimestampFormat),
		Content:   content,
	}
}
