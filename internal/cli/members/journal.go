package members

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/mellow/internal/cli"
	"github.com/julianstephens/mellow/internal/commands"
	"github.com/julianstephens/mellow/internal/report"
)

type JournalAddCmd struct {
	cli.OwnerFlags `embed:""`
	Text string `arg:"" optional:"" help:"Entry text. Opens an editor prompt when omitted."`
}

func (c *JournalAddCmd) Run(ctx *cli.Context) error {
	owner, err := c.Owner()
	if err != nil {
		return err
	}

	text := c.Text
	if text == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewText().
					Title("Journal entry").
					Description("Only you can see this.").
					Value(&text),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive form error: %w", err)
		}
	}

	entry, err := ctx.Service.CreateJournal(owner, text)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Journal entry saved (ID %d)\n", entry.ID)
	return nil
}

type JournalListCmd struct {
	cli.OwnerFlags `embed:""`
}

func (c *JournalListCmd) Run(ctx *cli.Context) error {
	owner, err := c.Owner()
	if err != nil {
		return err
	}
	entries, err := ctx.Service.ListJournal(owner)
	if err != nil {
		return err
	}
	ctx.Println(report.JournalListPlain(entries))
	return nil
}

type JournalShowCmd struct {
	cli.OwnerFlags `embed:""`
	ID string `arg:"" help:"Journal entry ID."`
}

func (c *JournalShowCmd) Run(ctx *cli.Context) error {
	owner, err := c.Owner()
	if err != nil {
		return err
	}
	entry, err := ctx.Service.GetJournal(owner, c.ID)
	if errors.Is(err, commands.ErrJournalEmpty) {
		return errors.New(report.NoJournal)
	}
	if err != nil {
		return err
	}
	ctx.Println(report.JournalEntry(entry))
	return nil
}

type JournalRemoveCmd struct {
	cli.OwnerFlags `embed:""`
	ID  string `arg:"" help:"Journal entry ID."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *JournalRemoveCmd) Run(ctx *cli.Context) error {
	owner, err := c.Owner()
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Delete journal entry %s?", c.ID)).
					Affirmative("Delete").
					Negative("Keep").
					Value(&confirmed),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive form error: %w", err)
		}
		if !confirmed {
			ctx.Println("Nothing removed.")
			return nil
		}
	}

	id, err := ctx.Service.DeleteJournal(owner, c.ID)
	if errors.Is(err, commands.ErrJournalEmpty) {
		return errors.New("you don't have any journal entries to remove")
	}
	if err != nil {
		return err
	}
	ctx.Printf("✓ Journal entry %d removed\n", id)
	return nil
}
