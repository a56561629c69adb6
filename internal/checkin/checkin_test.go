package checkin

import (
	"testing"
	"time"

	"github.com/julianstephens/mellow/internal/constants"
	"github.com/julianstephens/mellow/internal/models"
)

var testToday = time.Date(2025, 6, 15, 14, 30, 0, 0, time.Local)

func daysAgo(n int) string {
	return testToday.AddDate(0, 0, -n).Format(constants.DateFormat)
}

func TestHasEntryForDay(t *testing.T) {
	log := []models.CheckIn{
		{Date: daysAgo(1), Mood: models.MoodSad},
	}
	if HasEntryForDay(log, testToday) {
		t.Error("expected no entry for today")
	}

	log = append(log, models.CheckIn{Date: daysAgo(0), Mood: models.MoodHappy})
	if !HasEntryForDay(log, testToday) {
		t.Error("expected entry for today")
	}

	if HasEntryForDay(nil, testToday) {
		t.Error("expected empty log to have no entry")
	}
}

func TestFilterByDaysWindowAndOrder(t *testing.T) {
	// Scenario: entries dated 10, 5 and 1 days ago, queried for 7 days
	log := []models.CheckIn{
		{Date: daysAgo(1), Mood: models.MoodHappy},
		{Date: daysAgo(10), Mood: models.MoodSad},
		{Date: daysAgo(5), Mood: models.MoodNeutral},
	}

	got := FilterByDays(log, 7, testToday)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(got), got)
	}
	if got[0].Date != daysAgo(5) || got[1].Date != daysAgo(1) {
		t.Errorf("expected oldest first, got %+v", got)
	}
	if got[0].Mood != models.MoodNeutral {
		t.Errorf("expected mood to be carried through, got %q", got[0].Mood)
	}
}

func TestFilterByDaysBoundaries(t *testing.T) {
	log := []models.CheckIn{
		{Date: daysAgo(6), Mood: models.MoodHappy},
		{Date: daysAgo(7), Mood: models.MoodHappy},
		{Date: daysAgo(0), Mood: models.MoodSad},
		{Date: daysAgo(-3), Mood: models.MoodStressed},
	}

	got := FilterByDays(log, 7, testToday)
	want := []string{daysAgo(6), daysAgo(0), daysAgo(-3)}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].Date != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], got[i].Date)
		}
	}
}

func TestFilterByDaysSingleDay(t *testing.T) {
	log := []models.CheckIn{
		{Date: daysAgo(1), Mood: models.MoodHappy},
		{Date: daysAgo(0), Mood: models.MoodSad},
	}

	got := FilterByDays(log, 1, testToday)
	if len(got) != 1 || got[0].Date != daysAgo(0) {
		t.Errorf("expected only today's entry, got %+v", got)
	}
}

func TestFilterByDaysDropsCorruptDates(t *testing.T) {
	log := []models.CheckIn{
		{Date: "not-a-date", Mood: models.MoodHappy},
		{Date: "", Mood: models.MoodHappy},
		{Date: "2025/06/15", Mood: models.MoodHappy},
		{Date: daysAgo(2), Mood: models.MoodSad},
	}

	got := FilterByDays(log, 30, testToday)
	if len(got) != 1 {
		t.Fatalf("expected corrupt dates to be dropped, got %+v", got)
	}
}

func TestFilterByDaysAcceptsUnpaddedDates(t *testing.T) {
	log := []models.CheckIn{
		{Date: "2025-6-9", Mood: models.MoodHappy},
		{Date: "2025-06-1", Mood: models.MoodSad},
	}

	got := FilterByDays(log, 30, testToday)
	if len(got) != 2 {
		t.Fatalf("expected both entries, got %+v", got)
	}
	if got[0].Date != "2025-06-01" || got[1].Date != "2025-06-09" {
		t.Errorf("expected normalized ascending dates, got %+v", got)
	}
}

func TestFilterByDaysOnlyWithinWindow(t *testing.T) {
	var log []models.CheckIn
	for i := 0; i < 40; i++ {
		log = append(log, models.CheckIn{Date: daysAgo(i), Mood: models.MoodHappy})
	}

	for _, days := range []int{1, 7, 14, 30} {
		got := FilterByDays(log, days, testToday)
		if len(got) != days {
			t.Errorf("days=%d: expected %d entries, got %d", days, days, len(got))
		}
		cutoff := Cutoff(testToday, days)
		for i, e := range got {
			d, err := e.Day()
			if err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}
			if d.Before(cutoff) {
				t.Errorf("days=%d: entry %s before cutoff", days, e.Date)
			}
			if i > 0 && got[i-1].Date > e.Date {
				t.Errorf("days=%d: entries not ascending", days)
			}
		}
	}
}

func TestFilterByDaysEmpty(t *testing.T) {
	got := FilterByDays(nil, 7, testToday)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestCountScenarioD(t *testing.T) {
	entries := []models.CheckIn{
		{Mood: "happy"}, {Mood: "HAPPY"}, {Mood: "Happy"},
		{Mood: "sad"},
		{Mood: "furious"}, {Mood: "unknown"},
	}

	tally := Count(entries)
	if tally.Total != 4 {
		t.Errorf("expected total 4, got %d", tally.Total)
	}
	if tally.Counts[models.MoodHappy] != 3 || tally.Counts[models.MoodSad] != 1 {
		t.Errorf("unexpected counts: %+v", tally.Counts)
	}
	if len(tally.Counts) != len(models.Moods) {
		t.Errorf("expected exactly %d categories, got %d", len(models.Moods), len(tally.Counts))
	}
	for _, m := range []models.Mood{models.MoodStressed, models.MoodNeutral, models.MoodMotivated} {
		if c, ok := tally.Counts[m]; !ok || c != 0 {
			t.Errorf("expected %s present with 0, got %d (present=%v)", m, c, ok)
		}
	}
	if tally.Max() != 3 {
		t.Errorf("expected max 3, got %d", tally.Max())
	}
}

func TestCountEmpty(t *testing.T) {
	tally := Count(nil)
	if tally.Total != 0 || tally.Max() != 0 {
		t.Errorf("expected zero tally, got %+v", tally)
	}
	if len(tally.Counts) != len(models.Moods) {
		t.Errorf("expected every mood present, got %+v", tally.Counts)
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		value, max, width int
		want              string
	}{
		{3, 3, 15, "███████████████"},
		{1, 5, 15, "███░░░░░░░░░░░░"},
		{0, 3, 15, "░░░░░░░░░░░░░░░"},
		{2, 3, 10, "██████░░░░"},
		{5, 0, 10, ""},
		{5, -1, 10, ""},
		{9, 3, 4, "████"},
		{-2, 3, 4, "░░░░"},
	}

	for _, tt := range tests {
		if got := Bar(tt.value, tt.max, tt.width); got != tt.want {
			t.Errorf("Bar(%d, %d, %d) = %q, want %q", tt.value, tt.max, tt.width, got, tt.want)
		}
	}
}
