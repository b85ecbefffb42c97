package params

import (
	"fmt"
	"strconv"
	"time"
)

// Date parses a query date in RFC3339 or plain YYYY-MM-DD form.
// Empty input yields nil.
func Date(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t, err = time.Parse("2006-01-02", value)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid date: %s", value)
	}
	return &t, nil
}

// Limit parses a positive limit with a fallback for empty or invalid input.
func Limit(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Int parses an integer, zero when absent or malformed.
func Int(value string) int {
	n, _ := strconv.Atoi(value)
	return n
}
