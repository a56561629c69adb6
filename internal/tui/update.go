package tui

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/mellow/internal/commands"
	"github.com/julianstephens/mellow/internal/constants"
	"github.com/julianstephens/mellow/internal/tui/components/journallist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == StateConfirmDelete {
		if k, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(k, m.keys.Confirm):
				m.deleteEntry(m.entryToDelete)
				m.state = StateJournal
			case key.Matches(k, m.keys.Cancel), key.Matches(k, m.keys.Quit):
				m.state = StateJournal
			}
			m.entryToDelete = 0
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		// Tabs and help take about four lines.
		paneHeight := msg.Height - 4

		h, v := docStyle.GetFrameSize()
		m.history.SetSize(msg.Width-h, paneHeight-v)
		m.stats.SetSize(msg.Width-h, paneHeight-v)
		m.journal.SetSize(msg.Width-h, paneHeight-v)
		return m, nil

	case journallist.DeleteEntryMsg:
		m.entryToDelete = msg.ID
		m.state = StateConfirmDelete
		return m, nil

	case tea.KeyMsg:
		if m.state == StateJournal && m.journal.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.reload()
			return m, nil
		case m.state != StateJournal && key.Matches(msg, m.keys.More):
			m.setDays(m.days + 1)
			return m, nil
		case m.state != StateJournal && key.Matches(msg, m.keys.Fewer):
			m.setDays(m.days - 1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateHistory:
		m.history, cmd = m.history.Update(msg)
	case StateStats:
		m.stats, cmd = m.stats.Update(msg)
	case StateJournal:
		m.journal, cmd = m.journal.Update(msg)
	}
	return m, cmd
}

func (m *Model) setDays(days int) {
	if days < constants.MinHistoryDays || days > constants.MaxHistoryDays {
		return
	}
	m.days = days
	m.reload()
}

func (m *Model) deleteEntry(id int) {
	_, err := m.svc.DeleteJournal(m.owner, strconv.Itoa(id))
	m.reload()
	switch {
	case err == nil:
		m.status = fmt.Sprintf("Removed journal entry %d", id)
	case errors.Is(err, commands.ErrEntryNotFound), errors.Is(err, commands.ErrJournalEmpty):
		m.status = fmt.Sprintf("⚠ Journal entry %d no longer exists", id)
	default:
		m.status = "⚠ " + err.Error()
	}
}
