package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// MalformedTimeError is returned when a value is not a valid "HH:MM" clock time.
type MalformedTimeError struct {
	Field string
	Value string
}

func (e *MalformedTimeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed time in %s: %q is not HH:MM", e.Field, e.Value)
	}
	return fmt.Sprintf("malformed time: %q is not HH:MM", e.Value)
}

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(field, value string) (int, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, &MalformedTimeError{Field: field, Value: value}
	}

	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	if hours > 23 || minutes > 59 {
		return 0, &MalformedTimeError{Field: field, Value: value}
	}
	return hours*60 + minutes, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
