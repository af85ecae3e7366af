// Package dateparse turns natural language date input into canonical
// ISO-8601 dates. List ordering relies on lexical comparison of date
// strings, so every date leaving this package is zero-padded
// YYYY-MM-DD.
package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

var (
	inDaysPattern  = regexp.MustCompile(`^in (\d+) days?$`)
	inWeeksPattern = regexp.MustCompile(`^in (\d+) weeks?$`)
)

// Parse resolves input relative to the current time.
// Supported forms:
//   - today, tomorrow, yesterday
//   - monday, tue, ... (nearest future occurrence, never today)
//   - next monday, ... (the occurrence after this week's)
//   - next week, next month
//   - eow (Friday), eom (last day of month)
//   - +N (N days from now)
//   - in N days, in N weeks
//   - YYYY-MM-DD (validated and canonicalized)
func Parse(input string) (string, error) {
	return ParseFrom(input, time.Now())
}

// ParseFrom resolves input relative to a reference time.
func ParseFrom(input string, now time.Time) (string, error) {
	raw := input
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "", fmt.Errorf("empty date")
	}

	switch input {
	case "today":
		return iso(now), nil
	case "tomorrow":
		return iso(now.AddDate(0, 0, 1)), nil
	case "yesterday":
		return iso(now.AddDate(0, 0, -1)), nil
	case "next week", "nextweek":
		return iso(now.AddDate(0, 0, 7)), nil
	case "next month", "nextmonth":
		return iso(now.AddDate(0, 1, 0)), nil
	case "end of week", "eow":
		return iso(nextWeekday(now, time.Friday, false)), nil
	case "end of month", "eom":
		return iso(lastOfMonth(now)), nil
	}

	if day, ok := weekdayName(strings.TrimPrefix(input, "next ")); ok {
		return iso(nextWeekday(now, day, strings.HasPrefix(input, "next "))), nil
	}

	if rest, ok := strings.CutPrefix(input, "+"); ok {
		if days, err := strconv.Atoi(rest); err == nil {
			return iso(now.AddDate(0, 0, days)), nil
		}
	}

	if m := inDaysPattern.FindStringSubmatch(input); m != nil {
		days, _ := strconv.Atoi(m[1])
		return iso(now.AddDate(0, 0, days)), nil
	}
	if m := inWeeksPattern.FindStringSubmatch(input); m != nil {
		weeks, _ := strconv.Atoi(m[1])
		return iso(now.AddDate(0, 0, weeks*7)), nil
	}

	// Calendar date. time.Parse with the canonical layout rejects
	// unpadded forms like 2024-1-5 and impossible dates like 2024-02-30.
	if t, err := time.Parse(isoLayout, input); err == nil {
		return iso(t), nil
	}

	return "", fmt.Errorf("unrecognized date %q", raw)
}

// Today returns the current calendar date in canonical form.
func Today() string {
	return iso(time.Now())
}

// IsValid reports whether the input parses to a date.
func IsValid(input string) bool {
	_, err := Parse(input)
	return err == nil
}

func iso(t time.Time) string {
	return t.Format(isoLayout)
}

func weekdayName(input string) (time.Weekday, bool) {
	switch input {
	case "sunday", "sun":
		return time.Sunday, true
	case "monday", "mon":
		return time.Monday, true
	case "tuesday", "tue":
		return time.Tuesday, true
	case "wednesday", "wed":
		return time.Wednesday, true
	case "thursday", "thu":
		return time.Thursday, true
	case "friday", "fri":
		return time.Friday, true
	case "saturday", "sat":
		return time.Saturday, true
	}
	return 0, false
}

// nextWeekday returns the next occurrence of target. A bare weekday
// name on that same weekday means next week, and "next <day>" skips
// one further week unless today already is that day.
func nextWeekday(now time.Time, target time.Weekday, forceNext bool) time.Time {
	daysUntil := int(target - now.Weekday())
	sameDay := daysUntil == 0
	if daysUntil <= 0 {
		daysUntil += 7
	}
	if forceNext && !sameDay {
		daysUntil += 7
	}
	return now.AddDate(0, 0, daysUntil)
}

func lastOfMonth(now time.Time) time.Time {
	year, month, _ := now.Date()
	return time.Date(year, month+1, 1, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
}
