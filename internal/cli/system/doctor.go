package system

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/mellow/internal/backup"
	"github.com/julianstephens/mellow/internal/cli"
	"github.com/julianstephens/mellow/internal/lockfile"
	"github.com/julianstephens/mellow/internal/models"
	"github.com/julianstephens/mellow/internal/storage"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(ctx *cli.Context) error
	// warn marks checks whose failure does not fail the command.
	warn bool
	// needsStore skips the check when the store is unreachable.
	needsStore bool
}

var doctorChecks = []check{
	{name: "Log files readable", run: checkLogFiles, needsStore: true},
	{name: "Duplicate check-in dates", run: checkDuplicateDates, needsStore: true, warn: true},
	{name: "Duplicate journal IDs", run: checkDuplicateIDs, needsStore: true},
	{name: "Coping catalog", run: checkCatalog, warn: true},
	{name: "Clock/timezone", run: func(*cli.Context) error { return checkClockTimezone(time.Now()) }},
	{name: "Backups present", run: checkBackupsPresent, warn: true},
	{name: "Bot instance", run: checkInstance, warn: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	storeReachable := true
	if err := StoreCheck(ctx.Store)(); err != nil {
		ctx.Printf("❌ Store reachable (%s): FAIL\n", ctx.Store.Location())
		ctx.Printf("   Error: %v\n", err)
		hasError = true
		storeReachable = false
	} else {
		ctx.Printf("✓ Store reachable (%s): OK\n", ctx.Store.Location())
	}

	for _, c := range doctorChecks {
		if c.needsStore && !storeReachable {
			ctx.Printf("⊘ %s: SKIPPED (store not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warn:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		return errors.New("diagnostics found problems")
	}
	ctx.Println("All checks passed.")
	return nil
}

// checkLogFiles reports log files that exist but do not parse. The bot
// treats them as empty, so the next write would discard their content.
func checkLogFiles(ctx *cli.Context) error {
	s, ok := ctx.Store.(*storage.JSONStore)
	if !ok {
		return nil
	}
	owners, err := s.Owners()
	if err != nil {
		return fmt.Errorf("failed to list owners: %w", err)
	}

	var corrupt []string
	for _, o := range owners {
		if st, err := s.CheckInStatus(o); err == nil && st == storage.StatusCorrupt {
			corrupt = append(corrupt, o.String()+" check-ins")
		}
		if st, err := s.JournalStatus(o); err == nil && st == storage.StatusCorrupt {
			corrupt = append(corrupt, o.String()+" journal")
		}
	}
	if len(corrupt) > 0 {
		return fmt.Errorf("%d corrupt log file(s): %s", len(corrupt), strings.Join(corrupt, ", "))
	}
	return nil
}

func checkDuplicateDates(ctx *cli.Context) error {
	return forEachOwner(ctx.Store, func(o models.Owner) (string, error) {
		log, err := ctx.Store.LoadCheckIns(o)
		if err != nil {
			return "", err
		}
		seen := map[string]int{}
		for _, e := range log {
			seen[e.Date]++
		}
		var dups []string
		for date, n := range seen {
			if n > 1 {
				dups = append(dups, date)
			}
		}
		if len(dups) == 0 {
			return "", nil
		}
		sort.Strings(dups)
		return fmt.Sprintf("%s has more than one check-in on %s", o, strings.Join(dups, ", ")), nil
	})
}

func checkDuplicateIDs(ctx *cli.Context) error {
	return forEachOwner(ctx.Store, func(o models.Owner) (string, error) {
		entries, err := ctx.Store.LoadJournal(o)
		if err != nil {
			return "", err
		}
		seen := map[int]bool{}
		for _, e := range entries {
			if seen[e.ID] {
				return fmt.Sprintf("%s has duplicate journal id %d", o, e.ID), nil
			}
			seen[e.ID] = true
		}
		return "", nil
	})
}

// forEachOwner collects the problems fn reports across all owners.
func forEachOwner(p storage.Provider, fn func(models.Owner) (string, error)) error {
	owners, err := p.Owners()
	if err != nil {
		return fmt.Errorf("failed to list owners: %w", err)
	}
	var problems []string
	for _, o := range owners {
		problem, err := fn(o)
		if err != nil {
			return err
		}
		if problem != "" {
			problems = append(problems, problem)
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func checkCatalog(ctx *cli.Context) error {
	if ctx.Service.Catalog().Len() == 0 {
		return fmt.Errorf("no coping topics loaded from %s; /cope will answer every topic as unknown", ctx.Config.CopingMap)
	}
	return nil
}

func checkClockTimezone(now time.Time) error {
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, err := backup.ForStore(ctx.Store)
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return errors.New("no backups found - consider creating one with 'mellow backup create'")
	}
	return nil
}

func checkInstance(ctx *cli.Context) error {
	h, err := lockfile.Inspect(ctx.LockPath())
	if errors.Is(err, fs.ErrNotExist) {
		return errors.New("the bot is not running")
	}
	if err != nil {
		return fmt.Errorf("unreadable lockfile: %w", err)
	}
	if !h.Alive {
		return fmt.Errorf("stale lockfile from pid %d", h.PID)
	}
	return nil
}
