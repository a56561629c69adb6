package system

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/mellow/internal/cli"
	"github.com/julianstephens/mellow/internal/commands"
	"github.com/julianstephens/mellow/internal/config"
	"github.com/julianstephens/mellow/internal/coping"
	"github.com/julianstephens/mellow/internal/keyring"
	"github.com/julianstephens/mellow/internal/models"
	"github.com/julianstephens/mellow/internal/storage"
)

var alice = models.NewOwner("1001", "42")

func setupTestContext(t *testing.T, store storage.Provider, location string) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	catalog := coping.New(map[string]models.CopingTopic{
		"stress": {Responses: []models.CopingResponse{{Title: "Pause"}}},
	}, nil)
	out := &bytes.Buffer{}
	return &cli.Context{
		Config:  &config.Config{Store: location, CopingMap: "Maps/Coping.json"},
		Store:   store,
		Service: commands.NewService(store, catalog),
		Out:     out,
	}, out
}

func setupJSONContext(t *testing.T) (*cli.Context, *storage.JSONStore, *bytes.Buffer) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "Data")
	store := storage.NewJSONStore(dir)
	ctx, out := setupTestContext(t, store, dir)
	return ctx, store, out
}

func TestDoctorHealthyStore(t *testing.T) {
	ctx, store, out := setupJSONContext(t)
	if err := store.AddCheckIn(alice, models.CheckIn{Date: "2025-06-15", Mood: models.MoodHappy}); err != nil {
		t.Fatal(err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed on a healthy store: %v\n%s", err, out.String())
	}
	for _, want := range []string{"✓ Store reachable", "✓ Log files readable: OK", "⚠ Backups present: WARNING", "⚠ Bot instance: WARNING"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestDoctorCorruptLog(t *testing.T) {
	ctx, store, out := setupJSONContext(t)
	if err := store.AddCheckIn(alice, models.CheckIn{Date: "2025-06-15", Mood: models.MoodHappy}); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(store.BaseDir(), "CheckIns", "1001", "42.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Fatal("expected doctor to fail on a corrupt log")
	}
	if !strings.Contains(out.String(), "1001/42 check-ins") {
		t.Errorf("expected the corrupt file to be named:\n%s", out.String())
	}
}

func TestDoctorDuplicateDatesWarnOnly(t *testing.T) {
	ctx, store, out := setupJSONContext(t)
	dir := filepath.Join(store.BaseDir(), "CheckIns", "1001")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	dup := `[{"date": "2025-06-15", "mood": "happy"}, {"date": "2025-06-15", "mood": "sad"}]`
	if err := os.WriteFile(filepath.Join(dir, "42.json"), []byte(dup), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("duplicate dates should only warn: %v", err)
	}
	if !strings.Contains(out.String(), "more than one check-in on 2025-06-15") {
		t.Errorf("expected duplicate warning:\n%s", out.String())
	}
}

func TestDoctorMissingStore(t *testing.T) {
	ctx, store, out := setupJSONContext(t)
	if err := os.RemoveAll(store.BaseDir()); err != nil {
		t.Fatal(err)
	}
	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Fatal("expected failure when the data directory is gone")
	}
	if !strings.Contains(out.String(), "SKIPPED (store not reachable)") {
		t.Errorf("expected store checks to be skipped:\n%s", out.String())
	}
}

func TestCheckClockTimezone(t *testing.T) {
	if err := checkClockTimezone(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := checkClockTimezone(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)); err == nil {
		t.Error("expected error for 1970")
	}
}

func TestMigrateImport(t *testing.T) {
	src := storage.NewJSONStore(filepath.Join(t.TempDir(), "Data"))
	if err := src.Init(); err != nil {
		t.Fatal(err)
	}
	if err := src.AddCheckIn(alice, models.CheckIn{Date: "2025-06-14", Mood: models.MoodSad}); err != nil {
		t.Fatal(err)
	}
	for _, text := range []string{"one", "two"} {
		if _, err := src.AppendJournal(alice, models.JournalEntry{Timestamp: "2025-06-14 10:00:00", Content: text}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := src.RemoveJournal(alice, 1); err != nil {
		t.Fatal(err)
	}

	dbPath := filepath.Join(t.TempDir(), "mellow.db")
	dst := storage.NewSQLiteStore(dbPath)
	ctx, out := setupTestContext(t, dst, dbPath)

	cmd := &MigrateImportCmd{From: src.BaseDir()}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out.String(), "Imported 1 check-in(s) and 1 journal") {
		t.Errorf("unexpected output %q", out.String())
	}

	entries, err := dst.LoadJournal(alice)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ID != 2 || entries[0].Content != "two" {
		t.Errorf("expected ids to be preserved, got %+v", entries)
	}

	out.Reset()
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if !strings.Contains(out.String(), "Imported 0 check-in(s) and 0 journal") {
		t.Errorf("expected re-import to skip existing rows, got %q", out.String())
	}

	out.Reset()
	if err := (&MigrateStatusCmd{}).Run(ctx); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "Schema version: 2 (latest 2, sqlite)") {
		t.Errorf("unexpected status %q", out.String())
	}
}

func TestMigrateImportNeedsSQLStore(t *testing.T) {
	ctx, _, _ := setupJSONContext(t)
	if err := (&MigrateImportCmd{From: t.TempDir()}).Run(ctx); err == nil {
		t.Error("expected an error importing into a JSON store")
	}
}

func TestTokenCommands(t *testing.T) {
	gokeyring.MockInit()
	_ = keyring.DeleteToken()
	ctx, _, out := setupJSONContext(t)

	if err := (&TokenSetCmd{Token: " abc "}).Run(ctx); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if got, _ := keyring.GetToken(); got != "abc" {
		t.Errorf("expected trimmed token, got %q", got)
	}

	out.Reset()
	if err := (&TokenStatusCmd{}).Run(ctx); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out.String(), "Bot token is stored in keyring") {
		t.Errorf("unexpected status %q", out.String())
	}

	if err := (&TokenDeleteCmd{}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := (&TokenDeleteCmd{}).Run(ctx); err == nil {
		t.Error("expected error deleting a missing token")
	}
}

func TestStoreCheck(t *testing.T) {
	ctx, store, _ := setupJSONContext(t)
	check := StoreCheck(ctx.Store)
	if err := check(); err != nil {
		t.Fatalf("expected healthy store, got %v", err)
	}
	os.RemoveAll(store.BaseDir())
	if err := check(); err == nil {
		t.Error("expected error after removing the data directory")
	}
}
