// Package tui is a read-mostly terminal browser over one member's check-ins
// and journal.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/mellow/internal/commands"
	"github.com/julianstephens/mellow/internal/constants"
	"github.com/julianstephens/mellow/internal/models"
	textreport "github.com/julianstephens/mellow/internal/report"
	"github.com/julianstephens/mellow/internal/tui/components/journallist"
	"github.com/julianstephens/mellow/internal/tui/components/report"
)

type SessionState int

const (
	StateHistory SessionState = iota
	StateStats
	StateJournal
	StateConfirmDelete
)

// tabCount is the number of tabbed states; the rest are overlays.
const tabCount = 3

type Model struct {
	svc      *commands.Service
	owner    models.Owner
	userName string
	days     int

	state   SessionState
	keys    KeyMap
	help    help.Model
	history report.Model
	stats   report.Model
	journal journallist.Model

	entryToDelete int
	status        string
	quitting      bool
	width         int
	height        int
}

func NewModel(svc *commands.Service, owner models.Owner, userName string, days int) Model {
	if days < constants.MinHistoryDays || days > constants.MaxHistoryDays {
		days = 7
	}
	m := Model{
		svc:      svc,
		owner:    owner,
		userName: userName,
		days:     days,
		state:    StateHistory,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		history:  report.New(0, 0),
		stats:    report.New(0, 0),
		journal:  journallist.New(nil, 0, 0),
	}
	m.reload()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) State() SessionState {
	return m.state
}

func (m Model) Days() int {
	return m.days
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateHistory, StateStats:
		keys = append(keys, m.keys.More, m.keys.Fewer)
	case StateJournal:
		keys = append(keys, m.keys.Delete)
	case StateConfirmDelete:
		keys = []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case StateHistory, StateStats:
		actions = []key.Binding{m.keys.More, m.keys.Fewer}
	case StateJournal:
		actions = []key.Binding{m.keys.Delete}
	}
	return [][]key.Binding{global, navigation, actions}
}

// reload re-reads every pane from the store.
func (m *Model) reload() {
	m.status = ""

	entries, err := m.svc.CheckInHistory(m.owner, m.days)
	if err != nil {
		m.history.SetContent(err.Error())
	} else {
		m.history.SetContent(textreport.History(m.userName, m.days, entries))
	}

	tally, err := m.svc.CheckInStats(m.owner, m.days)
	if err != nil {
		m.stats.SetContent(err.Error())
	} else {
		m.stats.SetContent(textreport.Stats(m.userName, m.days, tally))
	}

	journal, err := m.svc.ListJournal(m.owner)
	if err != nil {
		m.status = "⚠ " + err.Error()
		journal = nil
	}
	m.journal.SetEntries(journal)
}
