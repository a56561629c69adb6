package system

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/julianstephens/mellow/internal/cli"
	"github.com/julianstephens/mellow/internal/migration"
	"github.com/julianstephens/mellow/internal/storage"
	"github.com/julianstephens/mellow/migrations"
)

// MigrateImportCmd copies every JSON log into the configured SQL store.
// Rows already present are left alone, so it can be re-run.
type MigrateImportCmd struct {
	From string `help:"JSON data directory to import from." default:"Data" type:"path"`
}

func (c *MigrateImportCmd) Run(ctx *cli.Context) error {
	importer, ok := ctx.Store.(storage.Importer)
	if !ok {
		return errors.New("migrate import needs a SQLite or PostgreSQL store; set --store")
	}
	if info, err := os.Stat(c.From); err != nil || !info.IsDir() {
		return fmt.Errorf("no JSON data directory at %s", c.From)
	}

	src := storage.NewJSONStore(c.From)
	owners, err := src.Owners()
	if err != nil {
		return fmt.Errorf("failed to list owners: %w", err)
	}

	var checkIns, journal int
	for _, o := range owners {
		log, err := src.LoadCheckIns(o)
		if err != nil {
			return err
		}
		n, err := importer.ImportCheckIns(o, log)
		if err != nil {
			return fmt.Errorf("failed to import check-ins for %s: %w", o, err)
		}
		checkIns += n

		entries, err := src.LoadJournal(o)
		if err != nil {
			return err
		}
		n, err = importer.ImportJournal(o, entries)
		if err != nil {
			return fmt.Errorf("failed to import journal for %s: %w", o, err)
		}
		journal += n
	}

	ctx.Printf("✓ Imported %d check-in(s) and %d journal entr(ies) for %d owner(s) into %s\n",
		checkIns, journal, len(owners), ctx.Store.Location())
	return nil
}

// MigrateStatusCmd shows the schema version of a SQL store.
type MigrateStatusCmd struct{}

func (c *MigrateStatusCmd) Run(ctx *cli.Context) error {
	s, ok := ctx.Store.(*storage.SQLStore)
	if !ok {
		ctx.Println("The JSON store has no schema.")
		return nil
	}

	sub, err := fs.Sub(migrations.FS, string(s.Dialect()))
	if err != nil {
		return err
	}
	runner := migration.NewRunner(s.DB(), sub, s.Dialect())
	current, err := runner.CurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	latest, err := runner.LatestVersion()
	if err != nil {
		return err
	}

	ctx.Printf("Schema version: %d (latest %d, %s)\n", current, latest, s.Dialect())
	if err := runner.Validate(); err != nil {
		return err
	}
	return nil
}
