// Package coping loads the read-only catalog of coping exercises and picks
// from it.
package coping

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/julianstephens/mellow/internal/constants"
	"github.com/julianstephens/mellow/internal/logger"
	"github.com/julianstephens/mellow/internal/models"
)

const (
	DefaultTitle    = "Coping Exercise"
	DefaultLinkText = "Learn more"
	DefaultColor    = "85C1E9"
)

var (
	ErrUnknownTopic = errors.New("unknown coping topic")
	ErrNoResponses  = errors.New("no responses available for topic")
)

// Picker chooses an index in [0, n). *rand.Rand satisfies it.
type Picker interface {
	IntN(n int) int
}

type globalPicker struct{}

func (globalPicker) IntN(n int) int { return rand.IntN(n) }

// Catalog maps a lower-case topic to its exercises.
type Catalog struct {
	topics map[string]models.CopingTopic
	picker Picker
}

// New builds a catalog from already-decoded topics. Topic keys are
// lower-cased so lookups match the normalised user input.
func New(topics map[string]models.CopingTopic, picker Picker) *Catalog {
	if picker == nil {
		picker = globalPicker{}
	}
	c := &Catalog{topics: make(map[string]models.CopingTopic, len(topics)), picker: picker}
	for k, v := range topics {
		c.topics[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return c
}

// Parse decodes a catalog document.
func Parse(data []byte) (map[string]models.CopingTopic, error) {
	var topics map[string]models.CopingTopic
	if err := json.Unmarshal(data, &topics); err != nil {
		return nil, fmt.Errorf("failed to parse coping catalog: %w", err)
	}
	return topics, nil
}

// Load reads the catalog at path. A missing or malformed file logs a
// warning and yields an empty catalog, so the bot still starts.
func Load(path string) *Catalog {
	if path == "" {
		path = constants.DefaultCopingMap
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to load coping catalog", "path", path, "error", err)
		return New(nil, nil)
	}
	topics, err := Parse(data)
	if err != nil {
		logger.Warn("failed to load coping catalog", "path", path, "error", err)
		return New(nil, nil)
	}

	logger.Info("loaded coping catalog", "path", path, "topics", len(topics))
	return New(topics, nil)
}

func (c *Catalog) Len() int {
	return len(c.topics)
}

// Topics returns every topic, sorted.
func (c *Catalog) Topics() []string {
	out := make([]string, 0, len(c.topics))
	for t := range c.topics {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Pick returns a uniformly random exercise for topic with defaults filled in.
func (c *Catalog) Pick(topic string) (models.CopingResponse, error) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	t, ok := c.topics[topic]
	if !ok {
		return models.CopingResponse{}, fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
	}
	if len(t.Responses) == 0 {
		return models.CopingResponse{}, fmt.Errorf("%w: %q", ErrNoResponses, topic)
	}
	return withDefaults(t.Responses[c.picker.IntN(len(t.Responses))]), nil
}

// Suggestions returns sorted topics containing current, capped for
// autocomplete.
func (c *Catalog) Suggestions(current string) []string {
	current = strings.ToLower(current)
	out := []string{}
	for _, t := range c.Topics() {
		if strings.Contains(t, current) {
			out = append(out, t)
			if len(out) == constants.MaxSuggestions {
				break
			}
		}
	}
	return out
}

func withDefaults(r models.CopingResponse) models.CopingResponse {
	if r.Title == "" {
		r.Title = DefaultTitle
	}
	if r.LinkText == "" {
		r.LinkText = DefaultLinkText
	}
	if r.Color == "" {
		r.Color = DefaultColor
	}
	return r
}

// ParseColor turns a hex string such as "85C1E9" or "#85c1e9" into an RGB
// integer. Invalid input falls back to the default colour.
func ParseColor(hex string) int {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	v, err := strconv.ParseInt(hex, 16, 32)
	if err != nil || v < 0 || v > 0xFFFFFF {
		v, _ = strconv.ParseInt(DefaultColor, 16, 32)
	}
	return int(v)
}
