// Package timegrid models a day as a discrete grid of time slots and
// converts between "HH:MM" wall-clock strings and minutes since midnight.
package timegrid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the number of minutes in a day.
const MinutesPerDay = 24 * 60

// EndOfDay is the exclusive end of the day. It is only valid as an end time.
const EndOfDay = "24:00"

var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("malformed time")

	// ErrOutsideDay is returned when a computed time falls outside the day.
	ErrOutsideDay = errors.New("time outside the day")
)

// ParseError reports a time string that is not HH:MM or HH:MM:SS.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed time %q: %s", e.Input, e.Reason)
}

// Unwrap lets errors.Is(err, ErrParse) match.
func (e *ParseError) Unwrap() error {
	return ErrParse
}

// TimeToMinutes converts "HH:MM" or "HH:MM:SS" to minutes since midnight.
// Seconds are validated and then dropped.
func TimeToMinutes(t string) (int, error) {
	parts := strings.Split(t, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, &ParseError{Input: t, Reason: "expected HH:MM"}
	}

	hours, err := parseField(parts[0], 23)
	if err != nil {
		return 0, &ParseError{Input: t, Reason: "hour " + err.Error()}
	}
	mins, err := parseField(parts[1], 59)
	if err != nil {
		return 0, &ParseError{Input: t, Reason: "minute " + err.Error()}
	}
	if len(parts) == 3 {
		if _, err := parseField(parts[2], 59); err != nil {
			return 0, &ParseError{Input: t, Reason: "second " + err.Error()}
		}
	}

	return hours*60 + mins, nil
}

// EndToMinutes parses the exclusive end of an interval. It accepts
// everything TimeToMinutes does plus "24:00", which is 1440.
func EndToMinutes(t string) (int, error) {
	if t == EndOfDay || t == EndOfDay+":00" {
		return MinutesPerDay, nil
	}
	return TimeToMinutes(t)
}

// parseField parses a two-digit clock field in [0, limit].
func parseField(s string, limit int) (int, error) {
	if len(s) != 2 {
		return 0, errors.New("must have two digits")
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("must be numeric")
	}
	if n > limit {
		return 0, fmt.Errorf("out of range (max %d)", limit)
	}
	return n, nil
}

// MustTimeToMinutes is like TimeToMinutes but panics on malformed input.
// Only use it with literals.
func MustTimeToMinutes(t string) int {
	m, err := TimeToMinutes(t)
	if err != nil {
		panic(err)
	}
	return m
}

// MinutesToTime converts minutes since midnight to "HH:MM" format.
// Values outside the day are clamped to 00:00 and 23:59.
func MinutesToTime(m int) string {
	if m < 0 {
		m = 0
	}
	if m >= MinutesPerDay {
		m = MinutesPerDay - 1
	}
	return clock(m)
}

// EndTime formats the exclusive end of an interval. The end must lie in
// (00:00, 24:00]; anything else wrapped past midnight.
func EndTime(m int) (string, error) {
	if m <= 0 || m > MinutesPerDay {
		return "", fmt.Errorf("%w: end at minute %d", ErrOutsideDay, m)
	}
	return clock(m), nil
}

// clock formats minutes without clamping, so 1440 renders as "24:00".
func clock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// SnapToTimeSlot rounds a time down to the start of its slot.
func SnapToTimeSlot(t string, intervalMinutes int) (string, error) {
	if intervalMinutes <= 0 {
		return "", &ConfigurationError{Field: "interval_minutes", Reason: "must be positive"}
	}
	m, err := TimeToMinutes(t)
	if err != nil {
		return "", err
	}
	return MinutesToTime(m - m%intervalMinutes), nil
}

// Label renders minutes since midnight as a 12-hour label such as "2:30 PM".
// The end-of-day boundary (1440) renders as "12:00 AM".
func Label(m int) string {
	m %= MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	hour, minute := m/60, m%60

	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, suffix)
}

// Duration returns end minus start in minutes.
func Duration(start, end string) (int, error) {
	s, err := TimeToMinutes(start)
	if err != nil {
		return 0, err
	}
	e, err := EndToMinutes(end)
	if err != nil {
		return 0, err
	}
	return e - s, nil
}

// AddMinutes returns the end of an interval starting at t and lasting
// delta minutes. Results past "24:00" or before the start of the day fail
// with ErrOutsideDay.
func AddMinutes(t string, delta int) (string, error) {
	m, err := TimeToMinutes(t)
	if err != nil {
		return "", err
	}
	if m+delta < 0 {
		return "", fmt.Errorf("%w: %s%+dm", ErrOutsideDay, t, delta)
	}
	end, err := EndTime(m + delta)
	if err != nil {
		return "", fmt.Errorf("%w: %s%+dm", ErrOutsideDay, t, delta)
	}
	return end, nil
}
