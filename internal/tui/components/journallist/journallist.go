// Package journallist lists journal entries for selection.
package journallist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/mellow/internal/models"
)

// DeleteEntryMsg asks the parent to confirm deleting an entry.
type DeleteEntryMsg struct {
	ID int
}

type Item struct {
	Entry models.JournalEntry
}

func (i Item) Title() string {
	return fmt.Sprintf("ID %d — %s", i.Entry.ID, i.Entry.Timestamp)
}

// Description is the first line of the entry.
func (i Item) Description() string {
	first, _, _ := strings.Cut(i.Entry.Content, "\n")
	return first
}

func (i Item) FilterValue() string { return i.Entry.Content }

type Model struct {
	list   list.Model
	delete key.Binding
}

func New(entries []models.JournalEntry, width, height int) Model {
	l := list.New(toItems(entries), list.NewDefaultDelegate(), width, height)
	l.Title = "Journal"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	del := key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{del} }
	return Model{list: l, delete: del}
}

func toItems(entries []models.JournalEntry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = Item{Entry: e}
	}
	return items
}

func (m *Model) SetEntries(entries []models.JournalEntry) {
	m.list.SetItems(toItems(entries))
}

func (m Model) Len() int {
	return len(m.list.Items())
}

// Selected returns the highlighted entry.
func (m Model) Selected() (models.JournalEntry, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Entry, ok
}

// Filtering reports whether the filter prompt has focus.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && !m.Filtering() && key.Matches(k, m.delete) {
		if e, ok := m.Selected(); ok {
			return m, func() tea.Msg { return DeleteEntryMsg{ID: e.ID} }
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Len() == 0 && !m.Filtering() {
		return "\n  You don't have any journal entries yet."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
