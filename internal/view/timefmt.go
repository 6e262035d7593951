package view

import (
	"fmt"
	"time"
)

// Locale holds the words and layouts used for chat time labels.
type Locale struct {
	Yesterday      string
	Weekdays       [7]string
	TimeLayout     string
	DayMonthLayout string
}

var (
	English = Locale{
		Yesterday:      "Yesterday",
		Weekdays:       [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
		TimeLayout:     "3:04 PM",
		DayMonthLayout: "Jan 2",
	}
	Portuguese = Locale{
		Yesterday:      "Ontem",
		Weekdays:       [7]string{"dom", "seg", "ter", "qua", "qui", "sex", "sáb"},
		TimeLayout:     "15:04",
		DayMonthLayout: "02/01",
	}
)

// LocaleFor maps a language tag to a known locale, defaulting to English.
func LocaleFor(tag string) Locale {
	switch tag {
	case "pt", "pt-BR", "pt_BR":
		return Portuguese
	}
	return English
}

// calendarDaysBetween counts midnights crossed going from a to b, both taken
// in loc. It is negative when a falls on a later date than b.
func calendarDaysBetween(a, b time.Time, loc *time.Location) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	// UTC dates avoid DST-length days skewing the division.
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// FormatChatTime labels t relative to now: the time of day on the same
// calendar date, the locale's "yesterday" word one date earlier, a short
// weekday within the last 7 dates, and day/month beyond that.
func FormatChatTime(t, now time.Time, loc *time.Location, locale Locale) string {
	local := t.In(loc)
	days := calendarDaysBetween(t, now, loc)
	switch {
	case days <= 0:
		return local.Format(locale.TimeLayout)
	case days == 1:
		return locale.Yesterday
	case days < 7:
		return locale.Weekdays[local.Weekday()]
	default:
		return local.Format(locale.DayMonthLayout)
	}
}

// FormatRelative renders the age of t as "now", "<N>m", "<N>h" or "<N>d".
func FormatRelative(t, now time.Time) string {
	age := now.Sub(t)
	switch {
	case age < time.Minute:
		return "now"
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age/time.Minute))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh", int(age/time.Hour))
	default:
		return fmt.Sprintf("%dd", int(age/(24*time.Hour)))
	}
}
