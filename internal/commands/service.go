// Package commands is the command surface shared by the Discord adapter,
// the CLI and the browser. Each method validates its input, then works
// through the store.
package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/mellow/internal/checkin"
	"github.com/julianstephens/mellow/internal/constants"
	"github.com/julianstephens/mellow/internal/coping"
	"github.com/julianstephens/mellow/internal/models"
	"github.com/julianstephens/mellow/internal/storage"
)

type Service struct {
	store   storage.Provider
	catalog *coping.Catalog
	now     func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store storage.Provider, catalog *coping.Catalog, opts ...Option) *Service {
	if catalog == nil {
		catalog = coping.New(nil, nil)
	}
	s := &Service{store: store, catalog: catalog, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Store() storage.Provider {
	return s.store
}

func (s *Service) Catalog() *coping.Catalog {
	return s.catalog
}

// Now is the service clock in server local time.
func (s *Service) Now() time.Time {
	return s.now()
}

func validateDays(days int) error {
	if days < constants.MinHistoryDays || days > constants.MaxHistoryDays {
		return invalid("days", "must be between %d and %d, got %d", constants.MinHistoryDays, constants.MaxHistoryDays, days)
	}
	return nil
}

func requireGuild(owner models.Owner) error {
	if owner.IsDM() {
		return ErrGuildRequired
	}
	return nil
}

// RecordCheckIn stores today's mood. A second check-in on the same calendar
// day returns ErrAlreadyCheckedIn.
func (s *Service) RecordCheckIn(owner models.Owner, moodKey string) (models.CheckIn, error) {
	if err := requireGuild(owner); err != nil {
		return models.CheckIn{}, err
	}
	mood := models.ParseMood(moodKey)
	if !mood.Known() {
		return models.CheckIn{}, invalid("mood", "unknown mood %q", moodKey)
	}

	today := s.now()
	log, err := s.store.LoadCheckIns(owner)
	if err != nil {
		return models.CheckIn{}, err
	}
	if checkin.HasEntryForDay(log, today) {
		return models.CheckIn{}, ErrAlreadyCheckedIn
	}

	entry := models.CheckIn{Date: today.Format(constants.DateFormat), Mood: mood}
	if err := s.store.AddCheckIn(owner, entry); err != nil {
		return models.CheckIn{}, err
	}
	return entry, nil
}

// CheckInHistory returns the entries of the trailing window, oldest first.
func (s *Service) CheckInHistory(owner models.Owner, days int) ([]models.CheckIn, error) {
	if err := requireGuild(owner); err != nil {
		return nil, err
	}
	if err := validateDays(days); err != nil {
		return nil, err
	}

	log, err := s.store.LoadCheckIns(owner)
	if err != nil {
		return nil, err
	}
	return checkin.FilterByDays(log, days, s.now()), nil
}

// CheckInStats tallies the moods of the trailing window.
func (s *Service) CheckInStats(owner models.Owner, days int) (checkin.Tally, error) {
	entries, err := s.CheckInHistory(owner, days)
	if err != nil {
		return checkin.Tally{}, err
	}
	return checkin.Count(entries), nil
}

func (s *Service) CreateJournal(owner models.Owner, text string) (models.JournalEntry, error) {
	if strings.TrimSpace(text) == "" {
		return models.JournalEntry{}, invalid("content", "journal entry cannot be empty")
	}
	return s.store.AppendJournal(owner, models.NewJournalEntry(text, s.now()))
}

func (s *Service) ListJournal(owner models.Owner) ([]models.JournalEntry, error) {
	return s.store.LoadJournal(owner)
}

// ParseEntryID accepts the decimal id sent by autocomplete or typed by hand.
func ParseEntryID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id < 1 {
		return 0, invalid("entry id", "%q is not a journal id", raw)
	}
	return id, nil
}

func (s *Service) GetJournal(owner models.Owner, rawID string) (models.JournalEntry, error) {
	id, err := ParseEntryID(rawID)
	if err != nil {
		return models.JournalEntry{}, err
	}

	entries, err := s.store.LoadJournal(owner)
	if err != nil {
		return models.JournalEntry{}, err
	}
	if len(entries) == 0 {
		return models.JournalEntry{}, ErrJournalEmpty
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return models.JournalEntry{}, fmt.Errorf("%w: %d", ErrEntryNotFound, id)
}

// DeleteJournal removes the entry and returns its id.
func (s *Service) DeleteJournal(owner models.Owner, rawID string) (int, error) {
	id, err := ParseEntryID(rawID)
	if err != nil {
		return 0, err
	}

	entries, err := s.store.LoadJournal(owner)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, ErrJournalEmpty
	}

	removed, err := s.store.RemoveJournal(owner, id)
	if err != nil {
		return 0, err
	}
	if !removed {
		return 0, fmt.Errorf("%w: %d", ErrEntryNotFound, id)
	}
	return id, nil
}

// JournalIDSuggestions returns the owner's ids whose decimal form contains
// current, in log order.
func (s *Service) JournalIDSuggestions(owner models.Owner, current string) []string {
	entries, err := s.store.LoadJournal(owner)
	if err != nil {
		return []string{}
	}

	out := []string{}
	for _, e := range entries {
		id := strconv.Itoa(e.ID)
		if strings.Contains(id, current) {
			out = append(out, id)
			if len(out) == constants.MaxSuggestions {
				break
			}
		}
	}
	return out
}

func (s *Service) Cope(topic string) (models.CopingResponse, error) {
	return s.catalog.Pick(topic)
}

func (s *Service) TopicSuggestions(current string) []string {
	return s.catalog.Suggestions(current)
}
