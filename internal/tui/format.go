package tui

import (
	"fmt"
	"time"
)

// sqliteTime is the format of lists.created_at/updated_at (datetime('now')).
const sqliteTime = "2006-01-02 15:04:05"

// relTime renders a DB timestamp the way the home page shows "last updated":
// coarse buckets, no minutes-ago precision theater.
func relTime(raw string, now time.Time) string {
	t, err := time.ParseInLocation(sqliteTime, raw, time.UTC)
	if err != nil {
		return raw
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
