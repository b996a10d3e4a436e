package parse

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the plain calendar-date format used by the front-end forms.
const DateLayout = "2006-01-02"

// Date parses a calendar date ("2024-03-01") or an RFC 3339 timestamp and
// returns it in UTC.
func Date(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %q", raw)
}

// OptionalDate is like Date but maps an empty string to nil.
func OptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := Date(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
