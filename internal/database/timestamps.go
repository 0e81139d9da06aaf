package database

import "time"

// TimeLayout is the stored timestamp format. Values are UTC so that
// lexical order matches chronological order.
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime converts t to the stored timestamp format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// FormatDisplay formats a stored timestamp for human-readable display,
// e.g. "Mar 05, 2024 10:30 UTC". Unparseable values are returned as-is.
func FormatDisplay(stored string) string {
	t, err := time.Parse(TimeLayout, stored)
	if err != nil {
		return stored
	}
	return t.Format("Jan 02, 2006 15:04 UTC")
}
