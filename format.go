package moonclock

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrOutOfRange is returned by the formatters for input outside the valid
// calendar, clock or illumination range.
var ErrOutOfRange = errors.New("moonclock: value out of range")

var weekdays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Calendar is a broken-down local time. Mon counts from 0 and Year from
// 1900, the layout of C's struct tm.
type Calendar struct {
	Hour, Min, Sec int
	Weekday        int
	MDay, Mon      int
	Year           int
}

// Breakdown converts an epoch timestamp to a Calendar in loc (UTC if nil).
func Breakdown(epoch int64, loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	t := time.Unix(epoch, 0).In(loc)
	return Calendar{
		Hour:    t.Hour(),
		Min:     t.Minute(),
		Sec:     t.Second(),
		Weekday: int(t.Weekday()),
		MDay:    t.Day(),
		Mon:     int(t.Month()) - 1,
		Year:    t.Year() - 1900,
	}
}

func checkRange(name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s %d not in [%d, %d]", ErrOutOfRange, name, v, lo, hi)
	}
	return nil
}

func checkClock(h, m, s int) error {
	return errors.Join(
		checkRange("hour", h, 0, 23),
		checkRange("minute", m, 0, 59),
		checkRange("second", s, 0, 60), // leap second
	)
}

// FormatClock returns "HH:MM:SS".
func FormatClock(h, m, s int) (string, error) {
	if err := checkClock(h, m, s); err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s), nil
}

// FormatDate returns "Www DD/MM/YYYY" from a 0-based weekday and month and
// a year counted from 1900.
func FormatDate(weekday, mday, mon, year int) (string, error) {
	err := errors.Join(
		checkRange("weekday", weekday, 0, 6),
		checkRange("day", mday, 1, 31),
		checkRange("month", mon, 0, 11),
		checkRange("year", year+1900, 0, 9999),
	)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %02d/%02d/%04d", weekdays[weekday], mday, mon+1, year+1900), nil
}

// FormatLastSync returns "NTP sync: HH:MM".
func FormatLastSync(h, m int) (string, error) {
	if err := checkClock(h, m, 0); err != nil {
		return "", err
	}
	return fmt.Sprintf("NTP sync: %02d:%02d", h, m), nil
}

// FormatMoonIllumination returns "Moon lit: P.P%" for precision 1 or
// "Moon lit: P.PP%" for precision 2.
func FormatMoonIllumination(fraction float64, precision int) (string, error) {
	if err := checkRange("precision", precision, 1, 2); err != nil {
		return "", err
	}
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return "", fmt.Errorf("%w: illumination %v not in [0, 1]", ErrOutOfRange, fraction)
	}
	return fmt.Sprintf("Moon lit: %.*f%%", precision, fraction*100), nil
}

// FormatNextFullMoon returns "Full moon: DD/MM" from a 0-based month.
func FormatNextFullMoon(mday, mon int) (string, error) {
	err := errors.Join(
		checkRange("day", mday, 1, 31),
		checkRange("month", mon, 0, 11),
	)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Full moon: %02d/%02d", mday, mon+1), nil
}
