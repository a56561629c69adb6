package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/mellow/internal/cli"
	"github.com/julianstephens/mellow/internal/cli/backups"
	"github.com/julianstephens/mellow/internal/cli/members"
	"github.com/julianstephens/mellow/internal/cli/system"
	"github.com/julianstephens/mellow/internal/commands"
	"github.com/julianstephens/mellow/internal/config"
	"github.com/julianstephens/mellow/internal/constants"
	"github.com/julianstephens/mellow/internal/coping"
	"github.com/julianstephens/mellow/internal/errors"
	"github.com/julianstephens/mellow/internal/logger"
	"github.com/julianstephens/mellow/internal/storage"
)

var CLI struct {
	Version   kong.VersionFlag
	Env       string `help:"Dotenv file to load before reading the environment." type:"path" default:".env"`
	Store     string `help:"Data directory, SQLite file or postgres:// URL. Overrides MELLOW_STORE." placeholder:"LOCATION"`
	CopingMap string `help:"Coping catalog JSON. Overrides MELLOW_COPING_MAP." type:"path"`
	LogDir    string `help:"Log directory. Overrides MELLOW_LOG_DIR." type:"path"`
	OpsAddr   string `help:"Address for /health and /metrics. Overrides MELLOW_OPS_ADDR."`
	NoOps     bool   `help:"Disable the health and metrics server."`
	DevGuild  string `help:"Register slash commands in this guild only. Overrides MELLOW_DEV_GUILD." placeholder:"ID"`
	Debug     bool   `help:"Enable debug logging."`

	Serve   system.ServeCmd `cmd:"" help:"Connect to Discord and answer slash commands."`
	Checkin struct {
		Record  members.CheckinRecordCmd  `cmd:"" help:"Record today's mood."`
		History members.CheckinHistoryCmd `cmd:"" help:"Show recent check-ins."`
		Stats   members.CheckinStatsCmd   `cmd:"" help:"Show mood counts for recent days."`
	} `cmd:"" help:"Mood check-ins."`
	Journal struct {
		Add    members.JournalAddCmd    `cmd:"" help:"Write a journal entry."`
		List   members.JournalListCmd   `cmd:"" help:"List journal entries."`
		Show   members.JournalShowCmd   `cmd:"" help:"Show one journal entry."`
		Remove members.JournalRemoveCmd `cmd:"" help:"Delete a journal entry."`
	} `cmd:"" help:"Private journal."`
	Cope   members.CopeCmd   `cmd:"" help:"Get a coping suggestion."`
	Browse members.BrowseCmd `cmd:"" help:"Browse a member's logs in the terminal."`
	Doctor system.DoctorCmd  `cmd:"" help:"Run diagnostics on the store and setup."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a backup of the store."`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore the store from a backup."`
	} `cmd:"" help:"Manage backups."`
	Migrate struct {
		Import system.MigrateImportCmd `cmd:"" help:"Import JSON logs into a SQL store."`
		Status system.MigrateStatusCmd `cmd:"" help:"Show the SQL schema version."`
	} `cmd:"" help:"SQL store migrations."`
	Token struct {
		Set    system.TokenSetCmd    `cmd:"" help:"Store the bot token in the OS keyring."`
		Delete system.TokenDeleteCmd `cmd:"" help:"Delete the bot token from the OS keyring."`
		Status system.TokenStatusCmd `cmd:"" help:"Show where the bot token comes from."`
	} `cmd:"" help:"Manage the bot token."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Discord mood check-in, journal and coping companion"),
		kong.UsageOnError(),
		kong.Vars{"version": constants.Version},
	)

	if err := config.LoadDotEnv(CLI.Env); err != nil {
		errors.Fatal(err)
	}
	cfg, err := config.Load()
	if err != nil {
		errors.Fatal(err)
	}
	applyFlags(cfg)

	if err := logger.Init(logger.Config{
		Debug:   cfg.Debug,
		Console: ctx.Command() == "serve",
		LogDir:  cfg.LogDir,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	if storage.IsPostgresDSN(cfg.Store) {
		if err := storage.ValidateConnString(cfg.Store); err != nil {
			errors.Fatal(err)
		}
	}
	store := storage.New(cfg.Store)
	if err := store.Init(); err != nil {
		errors.Fatal(fmt.Errorf("failed to open store %s: %w", store.Location(), err))
	}
	defer store.Close()

	appCtx := &cli.Context{
		Config:  cfg,
		Store:   store,
		Service: commands.NewService(store, coping.Load(cfg.CopingMap)),
		Out:     os.Stdout,
	}

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		errors.Fatal(err)
	}
}

// applyFlags lets explicit flags win over the environment.
func applyFlags(cfg *config.Config) {
	if CLI.Store != "" {
		cfg.Store = CLI.Store
	}
	if CLI.CopingMap != "" {
		cfg.CopingMap = CLI.CopingMap
	}
	if CLI.LogDir != "" {
		cfg.LogDir = CLI.LogDir
	}
	if CLI.OpsAddr != "" {
		cfg.OpsAddr = CLI.OpsAddr
	}
	if CLI.NoOps {
		cfg.OpsAddr = ""
	}
	if CLI.DevGuild != "" {
		cfg.DevGuild = CLI.DevGuild
	}
	if CLI.Debug {
		cfg.Debug = true
	}
}
