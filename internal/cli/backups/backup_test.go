package backups

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/mellow/internal/cli"
	"github.com/julianstephens/mellow/internal/config"
	"github.com/julianstephens/mellow/internal/models"
	"github.com/julianstephens/mellow/internal/storage"
)

var alice = models.NewOwner("1001", "42")

func setupTestContext(t *testing.T) (*cli.Context, *storage.JSONStore, *bytes.Buffer) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "Data")
	store := storage.NewJSONStore(dir)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	out := &bytes.Buffer{}
	return &cli.Context{Config: &config.Config{Store: dir}, Store: store, Out: out}, store, out
}

func TestBackupCreateListRestore(t *testing.T) {
	ctx, store, out := setupTestContext(t)

	if _, err := store.AppendJournal(alice, models.JournalEntry{Timestamp: "2025-06-15 08:00:00", Content: "keep me"}); err != nil {
		t.Fatal(err)
	}
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Backup created: mellow-") {
		t.Errorf("unexpected create output %q", out.String())
	}
	name := strings.TrimSpace(strings.TrimPrefix(out.String(), "✓ Backup created: "))

	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), name) || !strings.Contains(out.String(), "1 total") {
		t.Errorf("unexpected list output %q", out.String())
	}

	if _, err := store.AppendJournal(alice, models.JournalEntry{Timestamp: "2025-06-15 09:00:00", Content: "lose me"}); err != nil {
		t.Fatal(err)
	}
	if err := (&BackupRestoreCmd{BackupFile: name, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	entries, err := store.LoadJournal(alice)
	if err != nil {
		t.Fatalf("LoadJournal failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Content != "keep me" {
		t.Errorf("expected restored journal, got %+v", entries)
	}
}

func TestBackupListEmpty(t *testing.T) {
	ctx, _, out := setupTestContext(t)
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "No backups found.") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRestoreMissingFile(t *testing.T) {
	ctx, _, _ := setupTestContext(t)
	err := (&BackupRestoreCmd{BackupFile: "mellow-19990101-000000.zip", Yes: true}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}
