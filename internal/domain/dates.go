package domain

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseSince parses a caller-supplied history cutoff. It accepts the
// relative tokens "today", "yesterday" and "last week", plus anything
// dateparse understands (RFC3339, YYYY-MM-DD, natural month-day-year forms).
func ParseSince(raw string, ref time.Time, loc *time.Location) (time.Time, bool) {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == "" {
		return time.Time{}, false
	}

	if t, ok := resolveRelative(token, ref, loc); ok {
		return t, true
	}

	t, err := dateparse.ParseIn(token, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func resolveRelative(token string, ref time.Time, loc *time.Location) (time.Time, bool) {
	ref = dateOnly(ref.In(loc))

	switch token {
	case "today":
		return ref, true
	case "yesterday":
		return ref.AddDate(0, 0, -1), true
	case "last week":
		return ref.AddDate(0, 0, -7), true
	}
	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
