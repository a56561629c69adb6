package members

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/mellow/internal/cli"
)

type CopeCmd struct {
	Topic string `arg:"" optional:"" help:"Coping topic. Prompts with the catalog when omitted."`
}

func (c *CopeCmd) Run(ctx *cli.Context) error {
	topic := c.Topic
	if topic == "" {
		topics := ctx.Service.Catalog().Topics()
		if len(topics) == 0 {
			return errors.New("the coping catalog is empty")
		}
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("What are you feeling?").
					Options(huh.NewOptions(topics...)...).
					Value(&topic),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive form error: %w", err)
		}
	}

	resp, err := ctx.Service.Cope(topic)
	if err != nil {
		return err
	}

	ctx.Println(resp.Title)
	ctx.Println()
	ctx.Println(resp.Description)
	ctx.Println()
	ctx.Printf("More support: %s <%s>\n", resp.LinkText, resp.LinkURL)
	return nil
}
