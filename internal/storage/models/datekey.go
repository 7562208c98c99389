package models

import (
	"fmt"
	"time"
)

// dateKeyLayout is the canonical encoding of a calendar day. Keys are
// fixed-width so they compare correctly as strings.
const dateKeyLayout = "2006-01-02"

// DateKey identifies a single calendar day, e.g. "2024-06-10".
type DateKey string

// NewDateKey builds a key from calendar components. Out-of-range components
// are normalized the way time.Date normalizes them.
func NewDateKey(year int, month time.Month, day int) DateKey {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return DateKey(t.Format(dateKeyLayout))
}

// DateKeyOf returns the key for the day containing t, in t's location.
func DateKeyOf(t time.Time) DateKey {
	return DateKey(t.Format(dateKeyLayout))
}

// ParseDateKey validates and canonicalizes a key string.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(dateKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date key %q: %w", s, err)
	}
	return DateKey(t.Format(dateKeyLayout)), nil
}

// Time returns midnight of the key's day in the given location.
func (k DateKey) Time(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateKeyLayout, string(k), loc)
}

// Date splits the key into calendar components.
func (k DateKey) Date() (year int, month time.Month, day int) {
	t, _ := time.Parse(dateKeyLayout, string(k))
	return t.Date()
}

// AddMonths moves the key by delta months, clamping the day so that e.g.
// 2024-01-31 plus one month lands on 2024-02-29 rather than rolling over.
func (k DateKey) AddMonths(delta int) DateKey {
	year, month, day := k.Date()
	first := time.Date(year, month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return NewDateKey(first.Year(), first.Month(), day)
}

func (k DateKey) String() string {
	return string(k)
}
