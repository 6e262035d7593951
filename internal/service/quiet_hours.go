package service

import (
	"time"

	"cargahub/messaging-service/internal/models"
)

// clockTime renders t as a zero-padded "HH:MM" string in t's location.
func clockTime(t time.Time) string {
	return t.Format("15:04")
}

// inQuietHours compares the local clock time with the configured bounds as
// HH:MM strings: current >= start OR current <= end.
//
// For an overnight window (start > end) this is the intended wrap-around
// check. For start <= end it is true at every time of day. Kept as is until
// the product decides what a same-day window should mean.
func inQuietHours(q models.QuietHours, now time.Time) bool {
	if !q.Enabled {
		return false
	}
	current := clockTime(now)
	return current >= q.Start || current <= q.End
}
