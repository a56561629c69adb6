package coping

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/julianstephens/mellow/internal/models"
)

type fixedPicker int

func (f fixedPicker) IntN(n int) int { return int(f) % n }

func sampleTopics() map[string]models.CopingTopic {
	return map[string]models.CopingTopic{
		"anxiety": {Responses: []models.CopingResponse{
			{Title: "Box Breathing", Description: "In 4, hold 4, out 4, hold 4.", Color: "5DADE2", LinkText: "NHS", LinkURL: "https://example.org/breathe"},
			{Description: "Name five things you can see."},
		}},
		"Stress": {Responses: []models.CopingResponse{{Title: "Walk"}}},
		"empty":  {},
	}
}

func TestPickUsesPicker(t *testing.T) {
	c := New(sampleTopics(), fixedPicker(1))

	r, err := c.Pick("  ANXIETY ")
	if err != nil {
		t.Fatalf("Pick failed: %v", err)
	}
	if r.Description != "Name five things you can see." {
		t.Errorf("expected second response, got %+v", r)
	}
	if r.Title != DefaultTitle || r.LinkText != DefaultLinkText || r.Color != DefaultColor {
		t.Errorf("expected defaults filled in, got %+v", r)
	}
}

func TestPickIsUniformOverResponses(t *testing.T) {
	c := New(sampleTopics(), nil)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		r, err := c.Pick("anxiety")
		if err != nil {
			t.Fatalf("Pick failed: %v", err)
		}
		seen[r.Title] = true
	}
	if len(seen) != 2 {
		t.Errorf("expected both responses to be picked, saw %v", seen)
	}
}

func TestPickErrors(t *testing.T) {
	c := New(sampleTopics(), nil)

	if _, err := c.Pick("grief"); !errors.Is(err, ErrUnknownTopic) {
		t.Errorf("expected ErrUnknownTopic, got %v", err)
	}
	if _, err := c.Pick("empty"); !errors.Is(err, ErrNoResponses) {
		t.Errorf("expected ErrNoResponses, got %v", err)
	}
	if _, err := c.Pick("stress"); err != nil {
		t.Errorf("expected catalog keys to be lower-cased, got %v", err)
	}
}

func TestSuggestions(t *testing.T) {
	c := New(sampleTopics(), nil)

	got := c.Suggestions("Y")
	want := []string{"anxiety", "empty"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}

	if all := c.Suggestions(""); len(all) != 3 {
		t.Errorf("expected every topic for empty input, got %v", all)
	}
}

func TestSuggestionsCapped(t *testing.T) {
	topics := map[string]models.CopingTopic{}
	for i := 0; i < 40; i++ {
		topics["topic"+strconv.Itoa(i)] = models.CopingTopic{}
	}
	if got := New(topics, nil).Suggestions("topic"); len(got) != 25 {
		t.Errorf("expected 25 suggestions, got %d", len(got))
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Coping.json")
	doc := `{"sleep": {"responses": [{"title": "Wind down", "description": "Dim the lights.", "color": "A569BD", "link_text": "Sleep tips", "link_url": "https://example.org/sleep"}]}}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	c := Load(path)
	if c.Len() != 1 {
		t.Fatalf("expected one topic, got %d", c.Len())
	}
	r, err := c.Pick("sleep")
	if err != nil {
		t.Fatalf("Pick failed: %v", err)
	}
	if r.LinkURL != "https://example.org/sleep" || r.LinkText != "Sleep tips" {
		t.Errorf("unexpected response %+v", r)
	}
}

func TestLoadFailureYieldsEmptyCatalog(t *testing.T) {
	dir := t.TempDir()
	if c := Load(filepath.Join(dir, "missing.json")); c.Len() != 0 {
		t.Errorf("expected empty catalog for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{not json"), 0o600)
	if c := Load(bad); c.Len() != 0 {
		t.Errorf("expected empty catalog for malformed file")
	}
}

func TestParseColor(t *testing.T) {
	tests := map[string]int{
		"85C1E9":  0x85C1E9,
		"#ff0000": 0xFF0000,
		"000000":  0,
		"zzz":     0x85C1E9,
		"":        0x85C1E9,
	}
	for in, want := range tests {
		if got := ParseColor(in); got != want {
			t.Errorf("ParseColor(%q) = %#x, want %#x", in, got, want)
		}
	}
}

func TestShippedCatalogParses(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "Maps", "Coping.json"))
	if err != nil {
		t.Fatalf("failed to read shipped catalog: %v", err)
	}
	topics, err := Parse(data)
	if err != nil {
		t.Fatalf("shipped catalog does not parse: %v", err)
	}
	for name, topic := range topics {
		if len(topic.Responses) == 0 {
			t.Errorf("topic %s has no responses", name)
		}
	}
}
