// Package checkin holds the pure rules over a check-in log: the daily guard,
// the trailing-window filter and the mood aggregation.
package checkin

import (
	"time"

	"github.com/julianstephens/mellow/internal/constants"
	"github.com/julianstephens/mellow/internal/models"
)

// HasEntryForDay reports whether the log already holds a check-in dated on
// the calendar day of today.
func HasEntryForDay(log []models.CheckIn, today time.Time) bool {
	return HasEntryOn(log, today.Format(constants.DateFormat))
}

// HasEntryOn reports whether any entry carries exactly the given date string.
func HasEntryOn(log []models.CheckIn, date string) bool {
	for _, entry := range log {
		if entry.Date == date {
			return true
		}
	}
	return false
}
