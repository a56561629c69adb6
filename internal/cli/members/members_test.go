package members

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/mellow/internal/cli"
	"github.com/julianstephens/mellow/internal/commands"
	"github.com/julianstephens/mellow/internal/config"
	"github.com/julianstephens/mellow/internal/coping"
	"github.com/julianstephens/mellow/internal/models"
	"github.com/julianstephens/mellow/internal/storage"
)

var alice = cli.OwnerFlags{Guild: "1001", User: "42", Name: "alice"}

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "Data")
	store := storage.NewJSONStore(dir)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	catalog := coping.New(map[string]models.CopingTopic{
		"sleep": {Responses: []models.CopingResponse{{Title: "Wind down", Description: "Dim the lights.", LinkURL: "https://example.org"}}},
	}, nil)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := commands.NewService(store, catalog, commands.WithClock(func() time.Time { return now }))

	out := &bytes.Buffer{}
	return &cli.Context{
		Config:  &config.Config{Store: dir},
		Store:   store,
		Service: svc,
		Out:     out,
	}, out
}

func TestCheckinRecordAndHistory(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&CheckinRecordCmd{OwnerFlags: alice, Mood: "neutral"}).Run(ctx); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if !strings.Contains(out.String(), "2025-06-15: 😐 Neutral") {
		t.Errorf("unexpected output %q", out.String())
	}

	out.Reset()
	if err := (&CheckinRecordCmd{OwnerFlags: alice, Mood: "happy"}).Run(ctx); err != nil {
		t.Fatalf("second record should not fail: %v", err)
	}
	if !strings.Contains(out.String(), "already checked in") {
		t.Errorf("expected already-checked-in message, got %q", out.String())
	}

	out.Reset()
	if err := (&CheckinHistoryCmd{OwnerFlags: alice, Days: 7}).Run(ctx); err != nil {
		t.Fatalf("history failed: %v", err)
	}
	want := "Daily Check-In History for alice (last 7 day(s))\n" + strings.Repeat("-", 40) + "\n2025-06-15: Neutral\n"
	if out.String() != want {
		t.Errorf("history output:\n%q\nwant:\n%q", out.String(), want)
	}
}

func TestCheckinStatsValidation(t *testing.T) {
	ctx, _ := setupTestContext(t)

	err := (&CheckinStatsCmd{OwnerFlags: alice, Days: 0}).Run(ctx)
	if !commands.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}

	err = (&CheckinStatsCmd{OwnerFlags: cli.OwnerFlags{User: "42"}, Days: 7}).Run(ctx)
	if !errors.Is(err, commands.ErrGuildRequired) {
		t.Errorf("expected guild error, got %v", err)
	}
}

func TestInvalidOwner(t *testing.T) {
	ctx, _ := setupTestContext(t)
	err := (&JournalListCmd{OwnerFlags: cli.OwnerFlags{Guild: "../etc", User: "42"}}).Run(ctx)
	if err == nil {
		t.Error("expected invalid owner to be rejected")
	}
}

func TestJournalCommands(t *testing.T) {
	ctx, out := setupTestContext(t)

	for _, text := range []string{"first", "second"} {
		if err := (&JournalAddCmd{OwnerFlags: alice, Text: text}).Run(ctx); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}
	if !strings.Contains(out.String(), "(ID 2)") {
		t.Errorf("expected second id, got %q", out.String())
	}

	out.Reset()
	if err := (&JournalShowCmd{OwnerFlags: alice, ID: "2"}).Run(ctx); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "Journal Entry #2") || !strings.Contains(out.String(), "second") {
		t.Errorf("unexpected show output %q", out.String())
	}

	if err := (&JournalRemoveCmd{OwnerFlags: alice, ID: "1", Yes: true}).Run(ctx); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := (&JournalShowCmd{OwnerFlags: alice, ID: "1"}).Run(ctx); !errors.Is(err, commands.ErrEntryNotFound) {
		t.Errorf("expected not found after removal, got %v", err)
	}

	out.Reset()
	if err := (&JournalListCmd{OwnerFlags: alice}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.Contains(out.String(), "first") || !strings.Contains(out.String(), "ID 2 — ") {
		t.Errorf("unexpected list output %q", out.String())
	}
}

func TestJournalRemoveEmpty(t *testing.T) {
	ctx, _ := setupTestContext(t)
	err := (&JournalRemoveCmd{OwnerFlags: alice, ID: "1", Yes: true}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "don't have any journal entries") {
		t.Errorf("expected empty-journal error, got %v", err)
	}
}

func TestCope(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&CopeCmd{Topic: "Sleep"}).Run(ctx); err != nil {
		t.Fatalf("cope failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "Wind down\n") || !strings.Contains(out.String(), "Learn more <https://example.org>") {
		t.Errorf("unexpected cope output %q", out.String())
	}

	if err := (&CopeCmd{Topic: "boredom"}).Run(ctx); !errors.Is(err, commands.ErrUnknownTopic) {
		t.Errorf("expected unknown topic, got %v", err)
	}
}
