package checkin

import (
	"strings"

	"github.com/julianstephens/mellow/internal/models"
)

// Tally is the per-mood count over a set of check-ins. Counts always holds
// every known mood; entries with an unknown mood are left out of Total.
type Tally struct {
	Counts map[models.Mood]int
	Total  int
}

// Max returns the largest per-mood count.
func (t Tally) Max() int {
	max := 0
	for _, c := range t.Counts {
		if c > max {
			max = c
		}
	}
	return max
}

// Count tallies entries against the known moods, case-insensitively.
func Count(entries []models.CheckIn) Tally {
	t := Tally{Counts: make(map[models.Mood]int, len(models.Moods))}
	for _, m := range models.Moods {
		t.Counts[m] = 0
	}

	for _, entry := range entries {
		mood := models.ParseMood(string(entry.Mood))
		if !mood.Known() {
			continue
		}
		t.Counts[mood]++
		t.Total++
	}
	return t
}

// Bar renders value against max as a fixed-width bar. A non-positive max
// renders an empty string.
func Bar(value, max, width int) string {
	if max <= 0 {
		return ""
	}
	filled := int(float64(value) / float64(max) * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
