package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

const dateLayout = "2006-01-02"

// DateKey identifies a day as YYYY-MM-DD with no timezone.
type DateKey string

// ParseDateKey validates s as a calendar date.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil || t.Format(dateLayout) != s {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateKey(s), nil
}

// DateKeyOf returns the local calendar day of t.
func DateKeyOf(t time.Time) DateKey {
	return DateKey(t.Format(dateLayout))
}

// Today returns the calendar day of now in its own location.
func Today(now time.Time) DateKey {
	return DateKeyOf(now)
}

func (d DateKey) IsValid() bool {
	_, err := ParseDateKey(string(d))
	return err == nil
}

// Time returns midnight UTC of the day. Invalid keys return the zero time.
func (d DateKey) Time() time.Time {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d DateKey) AddDays(n int) DateKey {
	return DateKeyOf(d.Time().AddDate(0, 0, n))
}

func (d DateKey) String() string {
	return string(d)
}

// Display renders the day as "Jan 2, 2006".
func (d DateKey) Display() string {
	t := d.Time()
	if t.IsZero() {
		return string(d)
	}
	return t.Format("Jan 2, 2006")
}

// Weekday is the English day name, e.g. "Monday".
func (d DateKey) Weekday() string {
	t := d.Time()
	if t.IsZero() {
		return ""
	}
	return t.Weekday().String()
}
