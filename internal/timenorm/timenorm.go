// Package timenorm converts loosely typed date and time strings into canonical forms.
// Every function is pure and reports malformed input through its ok result.
package timenorm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the length of a calendar day in minutes.
const MinutesPerDay = 24 * 60

var (
	timePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::\d{2})?$`)
	datePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
)

// ParseTimeToMinutes parses H:MM or HH:MM (trailing :SS ignored) into minutes since midnight.
func ParseTimeToMinutes(raw string) (int, bool) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// FormatMinutes renders minutes since midnight as zero-padded HH:MM.
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeTime returns raw as canonical HH:MM.
func NormalizeTime(raw string) (string, bool) {
	minutes, ok := ParseTimeToMinutes(raw)
	if !ok {
		return "", false
	}
	return FormatMinutes(minutes), true
}

// NormalizeDate accepts exactly YYYY-MM-DD and rejects dates that do not exist
// in the calendar (2024-02-30 is rejected rather than rolled into March).
func NormalizeDate(raw string) (string, bool) {
	y, mo, d, ok := parseDate(raw)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, mo, d), true
}

// DateKey returns year*10000 + month*100 + day for ordering and range checks.
func DateKey(raw string) (int, bool) {
	y, mo, d, ok := parseDate(raw)
	if !ok {
		return 0, false
	}
	return y*10000 + mo*100 + d, true
}

// Weekday returns 0 (Sunday) through 6 (Saturday) using UTC calendar arithmetic.
func Weekday(raw string) (int, bool) {
	y, mo, d, ok := parseDate(raw)
	if !ok {
		return 0, false
	}
	return int(time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC).Weekday()), true
}

func parseDate(raw string) (year, month, day int, ok bool) {
	m := datePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, 0, 0, false
	}
	year, _ = strconv.Atoi(m[1])
	month, _ = strconv.Atoi(m[2])
	day, _ = strconv.Atoi(m[3])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return 0, 0, 0, false
	}
	return year, month, day, true
}
