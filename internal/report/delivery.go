package report

import (
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/mellow/internal/constants"
)

// Delivery is how a report reaches the user: inline as a titled message, or
// as a text attachment with a short note.
type Delivery struct {
	Inline bool

	// Inline
	Title string
	Body  string

	// Attachment
	Filename string
	Note     string
	Text     string
}

func fits(text string) bool {
	return utf8.RuneCountInString(text) <= constants.ReportInlineLimit
}

// headed splits a heading/separator/body report. The first line becomes the
// title and everything after the separator the body.
func headed(text, filename, note string) Delivery {
	if !fits(text) {
		return Delivery{Filename: filename, Note: note, Text: text}
	}

	lines := strings.Split(text, "\n")
	body := NoCheckIns
	if len(lines) > 2 {
		body = strings.Join(lines[2:], "\n")
	}
	return Delivery{Inline: true, Title: lines[0], Body: body}
}

func DeliverHistory(text string) Delivery {
	return headed(text, HistoryFile, historyIntro)
}

func DeliverStats(text string) Delivery {
	return headed(text, StatsFile, statsIntro)
}

// DeliverJournal inlines the markdown list when it fits and otherwise
// attaches the plain rendering.
func DeliverJournal(markdown, plain string) Delivery {
	if fits(markdown) {
		return Delivery{Inline: true, Title: JournalTitle, Body: markdown}
	}
	return Delivery{Filename: JournalFile, Note: journalIntro, Text: plain}
}
