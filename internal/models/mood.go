package models

import "strings"

// Mood is a check-in category key as stored on disk. Values outside the
// declared set are representable so that unknown moods can be counted out.
type Mood string

const (
	MoodHappy     Mood = "happy"
	MoodStressed  Mood = "stressed"
	MoodSad       Mood = "sad"
	MoodNeutral   Mood = "neutral"
	MoodMotivated Mood = "motivated"
)

// Moods lists every known mood in display order.
var Moods = []Mood{MoodHappy, MoodStressed, MoodSad, MoodNeutral, MoodMotivated}

var moodLabels = map[Mood]string{
	MoodHappy:     "😊 Happy",
	MoodStressed:  "😟 Stressed",
	MoodSad:       "😔 Sad",
	MoodNeutral:   "😐 Neutral",
	MoodMotivated: "🔥 Motivated",
}

// ParseMood lower-cases and trims a raw key. The result may not be Known.
func ParseMood(s string) Mood {
	return Mood(strings.ToLower(strings.TrimSpace(s)))
}

// Known reports whether m is one of the declared moods.
func (m Mood) Known() bool {
	_, ok := moodLabels[m]
	return ok
}

// Label returns the emoji label for a known mood, or the capitalized key otherwise.
func (m Mood) Label() string {
	if label, ok := moodLabels[m]; ok {
		return label
	}
	return Capitalize(string(m))
}

// Capitalize upper-cases the first character and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
