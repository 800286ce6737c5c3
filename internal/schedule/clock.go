package schedule

import (
	"fmt"
	"strings"
	"time"
)

const (
	minutesPerDay = 24 * 60
	noon          = 12 * 60
)

// ParseClock converts a wall-clock string into minutes after midnight.
// Both "15:04" and "15:04:05" are accepted; anything else reports ok=false.
func ParseClock(s string) (minutes int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeClock validates s and returns it in "HH:MM" form. An empty input
// is valid and returns "".
func NormalizeClock(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	m, ok := ParseClock(s)
	if !ok {
		return "", fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	return FormatClock(m), nil
}
