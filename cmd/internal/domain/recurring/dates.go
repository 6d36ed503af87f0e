package recurring

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths moves a calendar date n months, clamping the day to the last day
// of the target month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(target.Year(), target.Month()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, 0, 0, 0, 0, time.UTC)
}

// EndOfYear returns December 31 of the given year.
func EndOfYear(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// MonthLabel formats a date as "<mes> <yyyy>", e.g. "febrero 2025".
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", monthNames[t.Month()-1], t.Year())
}

// BaseConcept returns the series name of an instance concept, i.e. the text
// before the first " - " separator.
func BaseConcept(concept string) string {
	base, _, _ := strings.Cut(concept, " - ")
	return strings.TrimSpace(base)
}

// StripMonthLabel removes a trailing " - <mes> <yyyy>" instance label, so
// "Impuesto - IVA - marzo 2025" becomes "Impuesto - IVA". Concepts without a
// label are returned unchanged.
func StripMonthLabel(concept string) string {
	idx := strings.LastIndex(concept, " - ")
	if idx < 0 {
		return concept
	}

	month, year, ok := strings.Cut(strings.TrimSpace(concept[idx+3:]), " ")
	if !ok || len(year) != 4 || !isMonthName(month) {
		return concept
	}
	if _, err := strconv.Atoi(year); err != nil {
		return concept
	}
	return strings.TrimSpace(concept[:idx])
}

func isMonthName(s string) bool {
	for _, name := range monthNames {
		if name == s {
			return true
		}
	}
	return false
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
