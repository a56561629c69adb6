// Package members holds the terminal versions of the bot's slash commands,
// acting on an explicit --guild/--user.
package members

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/mellow/internal/cli"
	"github.com/julianstephens/mellow/internal/commands"
	"github.com/julianstephens/mellow/internal/models"
	"github.com/julianstephens/mellow/internal/report"
)

type CheckinRecordCmd struct {
	cli.OwnerFlags `embed:""`
	Mood string `arg:"" optional:"" help:"Mood key: happy, stressed, sad, neutral or motivated. Prompts when omitted."`
}

func (c *CheckinRecordCmd) Run(ctx *cli.Context) error {
	owner, err := c.Owner()
	if err != nil {
		return err
	}

	mood := c.Mood
	if mood == "" {
		if mood, err = promptMood(); err != nil {
			return err
		}
	}

	entry, err := ctx.Service.RecordCheckIn(owner, mood)
	if errors.Is(err, commands.ErrAlreadyCheckedIn) {
		ctx.Println("You’ve already checked in today. Try again tomorrow. 💙")
		return nil
	}
	if err != nil {
		return err
	}

	ctx.Printf("✓ Daily check-in logged for %s: %s\n", entry.Date, entry.Mood.Label())
	return nil
}

func promptMood() (string, error) {
	opts := make([]huh.Option[string], 0, len(models.Moods))
	for _, m := range models.Moods {
		opts = append(opts, huh.NewOption(m.Label(), string(m)))
	}

	var mood string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How are you feeling today?").
				Options(opts...).
				Value(&mood),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("interactive form error: %w", err)
	}
	return mood, nil
}

type CheckinHistoryCmd struct {
	cli.OwnerFlags `embed:""`
	Days int `help:"Number of days to look back (1-30)." default:"7"`
}

func (c *CheckinHistoryCmd) Run(ctx *cli.Context) error {
	owner, err := c.Owner()
	if err != nil {
		return err
	}
	entries, err := ctx.Service.CheckInHistory(owner, c.Days)
	if err != nil {
		return err
	}
	ctx.Println(report.History(c.DisplayName(), c.Days, entries))
	return nil
}

type CheckinStatsCmd struct {
	cli.OwnerFlags `embed:""`
	Days int `help:"Number of days to look back (1-30)." default:"7"`
}

func (c *CheckinStatsCmd) Run(ctx *cli.Context) error {
	owner, err := c.Owner()
	if err != nil {
		return err
	}
	tally, err := ctx.Service.CheckInStats(owner, c.Days)
	if err != nil {
		return err
	}
	ctx.Println(report.Stats(c.DisplayName(), c.Days, tally))
	return nil
}
