package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/mellow/internal/cli"
	"github.com/julianstephens/mellow/internal/keyring"
)

// TokenSetCmd stores the bot token in the OS keyring.
type TokenSetCmd struct {
	Token string `arg:"" optional:"" help:"Bot token. Prompts without echo when omitted."`
}

func (cmd *TokenSetCmd) Run(ctx *cli.Context) error {
	token := cmd.Token
	if token == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Bot token").
					EchoMode(huh.EchoModePassword).
					Value(&token),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive form error: %w", err)
		}
	}

	if err := keyring.SetToken(strings.TrimSpace(token)); err != nil {
		return err
	}
	ctx.Println("✓ Bot token stored in the OS keyring")
	ctx.Println("  serve uses it whenever TOKEN is not set")
	return nil
}

type TokenDeleteCmd struct{}

func (cmd *TokenDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteToken(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no bot token found in keyring")
		}
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	ctx.Println("✓ Bot token deleted from OS keyring")
	return nil
}

type TokenStatusCmd struct{}

func (cmd *TokenStatusCmd) Run(ctx *cli.Context) error {
	if ctx.Config.Token != "" {
		ctx.Println("✓ TOKEN is set in the environment")
	}
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		if ctx.Config.Token == "" {
			return errors.New("keyring unavailable")
		}
		return nil
	}

	ctx.Println("✓ OS keyring is available")
	if _, err := keyring.GetToken(); err == nil {
		ctx.Println("✓ Bot token is stored in keyring")
	} else if errors.Is(err, keyring.ErrNotFound) {
		ctx.Println("ℹ No bot token stored in keyring")
	}
	return nil
}
