package checkin

import (
	"sort"
	"time"

	"github.com/julianstephens/mellow/internal/constants"
	"github.com/julianstephens/mellow/internal/models"
)

// Cutoff returns the earliest calendar day included in a trailing window of
// days ending today.
func Cutoff(today time.Time, days int) time.Time {
	y, m, d := today.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, today.Location()).AddDate(0, 0, -(days - 1))
}

// FilterByDays returns the entries dated on or after the cutoff, oldest
// first. Entries with an unparsable date are dropped. There is no upper
// bound, so future-dated entries are kept.
func FilterByDays(log []models.CheckIn, days int, today time.Time) []models.CheckIn {
	if len(log) == 0 {
		return []models.CheckIn{}
	}

	cutoff := Cutoff(today, days)

	type dated struct {
		day   time.Time
		entry models.CheckIn
	}
	kept := make([]dated, 0, len(log))
	for _, entry := range log {
		day, err := time.ParseInLocation(constants.DateParseLayout, entry.Date, today.Location())
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			continue
		}
		kept = append(kept, dated{
			day:   day,
			entry: models.CheckIn{Date: day.Format(constants.DateFormat), Mood: entry.Mood},
		})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].day.Before(kept[j].day)
	})

	filtered := make([]models.CheckIn, len(kept))
	for i, d := range kept {
		filtered[i] = d.entry
	}
	return filtered
}
