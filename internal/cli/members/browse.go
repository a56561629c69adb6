package members

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/mellow/internal/cli"
	"github.com/julianstephens/mellow/internal/tui"
)

type BrowseCmd struct {
	cli.OwnerFlags `embed:""`
	Days int `help:"Initial history window (1-30)." default:"7"`
}

func (c *BrowseCmd) Run(ctx *cli.Context) error {
	owner, err := c.Owner()
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(ctx.Service, owner, c.DisplayName(), c.Days), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}
