// Package report renders check-in and journal logs as plain text and decides
// how a rendered report is delivered.
package report

import (
	"fmt"
	"strings"

	"github.com/julianstephens/mellow/internal/checkin"
	"github.com/julianstephens/mellow/internal/constants"
	"github.com/julianstephens/mellow/internal/models"
)

const (
	NoCheckIns     = "No check-ins found in this time range."
	NoJournal      = "You don't have any journal entries yet."
	JournalTitle   = "Your Journal Entries"
	JournalFooter  = "Use /myjournals <id> to view a specific entry."
	HistoryFile    = "checkin_history.txt"
	StatsFile      = "checkin_stats.txt"
	JournalFile    = "journal_entries.txt"
	unknownMood    = "unknown"
	historyIntro   = "Your check-in history is a bit long, so here it is as a file:"
	statsIntro     = "Your check-in stats are a bit long, so here they are as a file:"
	journalIntro   = "Your journal is a bit long, so here it is as a file:"
	historyHeading = "Daily Check-In History for %s (last %d day(s))"
	statsHeading   = "Daily Check-In Stats for %s (last %d day(s))"
)

func separator() string {
	return strings.Repeat("-", constants.ReportSeparatorLen)
}

// History lists one "YYYY-MM-DD: Mood" line per entry under a heading.
func History(user string, days int, entries []models.CheckIn) string {
	lines := []string{fmt.Sprintf(historyHeading, user, days), separator()}
	if len(entries) == 0 {
		lines = append(lines, NoCheckIns)
	}
	for _, e := range entries {
		mood := string(e.Mood)
		if mood == "" {
			mood = unknownMood
		}
		lines = append(lines, fmt.Sprintf("%s: %s", e.Date, models.Capitalize(mood)))
	}
	return strings.Join(lines, "\n")
}

// Stats lists every known mood with its count and a bar scaled to the
// largest count.
func Stats(user string, days int, tally checkin.Tally) string {
	lines := []string{fmt.Sprintf(statsHeading, user, days), separator()}
	if tally.Total == 0 {
		return strings.Join(append(lines, NoCheckIns), "\n")
	}

	max := tally.Max()
	lines = append(lines, fmt.Sprintf("Total check-ins: %d", tally.Total), "")
	for _, mood := range models.Moods {
		count := tally.Counts[mood]
		lines = append(lines, fmt.Sprintf("%-15s %3d %s", mood.Label(), count, checkin.Bar(count, max, constants.StatsBarWidth)))
	}
	return strings.Join(lines, "\n")
}

// JournalList renders entries with markdown headings, for rich messages.
func JournalList(entries []models.JournalEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("**ID %d — %s**\n%s\n", e.ID, e.Timestamp, e.Content))
	}
	return strings.Join(lines, "\n")
}

// JournalListPlain renders entries without markup, for files and terminals.
func JournalListPlain(entries []models.JournalEntry) string {
	lines := []string{JournalTitle, separator()}
	if len(entries) == 0 {
		lines = append(lines, NoJournal)
	}
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("ID %d — %s", e.ID, e.Timestamp), e.Content, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// JournalEntry renders a single entry for the terminal.
func JournalEntry(e models.JournalEntry) string {
	return fmt.Sprintf("Journal Entry #%d\n%s\n%s\n\nCreated at %s", e.ID, separator(), e.Content, e.Timestamp)
}
