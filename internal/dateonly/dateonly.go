// Package dateonly validates and normalizes calendar dates written as
// YYYY-MM-DD with no time of day or zone.
package dateonly

import (
	"regexp"
	"strconv"
	"time"
)

// Layout is the canonical date-only form.
const Layout = "2006-01-02"

var pattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsValid reports whether value is canonical and names a real calendar day.
// Components are rebuilt with time.Date and compared, so overflow such as
// 2023-02-30 rolling into March is rejected.
func IsValid(value string) bool {
	if !pattern.MatchString(value) {
		return false
	}
	y, _ := strconv.Atoi(value[0:4])
	m, _ := strconv.Atoi(value[5:7])
	d, _ := strconv.Atoi(value[8:10])
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return t.Year() == y && int(t.Month()) == m && t.Day() == d
}

// On returns the local calendar date of t in canonical form.
func On(t time.Time) string {
	return t.Local().Format(Layout)
}

// Today returns the current local calendar date.
func Today() string {
	return On(time.Now())
}

// IsOverdue reports whether due is strictly before today.
func IsOverdue(due string) bool {
	return IsOverdueOn(due, Today())
}

// IsOverdueOn is IsOverdue against an explicit today. The canonical form is
// zero padded and big endian, so string order is chronological order.
func IsOverdueOn(due, today string) bool {
	if due == "" || !IsValid(due) {
		return false
	}
	return due < today
}

// Sanitize returns input if it is valid and "" (no date) otherwise.
func Sanitize(input string) string {
	if IsValid(input) {
		return input
	}
	return ""
}

// Parse decodes a valid value as UTC midnight.
func Parse(value string) (time.Time, bool) {
	if !IsValid(value) {
		return time.Time{}, false
	}
	t, err := time.Parse(Layout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
