package agent

import (
	"strings"
	"time"
)

// dateLayouts are tried in order when normalizing a free-text due date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
}

// parseDate attempts a generic parse of a free-text date. The second
// return reports whether parsing succeeded; callers decide whether a
// failure is silent (create_item) or fatal (reschedule).
func parseDate(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	switch strings.ToLower(s) {
	case "today", "tonight":
		y, m, d := now.Date()
		return time.Date(y, m, d, 23, 59, 0, 0, time.UTC), true
	case "tomorrow":
		y, m, d := now.AddDate(0, 0, 1).Date()
		return time.Date(y, m, d, 23, 59, 0, 0, time.UTC), true
	case "next week":
		y, m, d := now.AddDate(0, 0, 7).Date()
		return time.Date(y, m, d, 23, 59, 0, 0, time.UTC), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
