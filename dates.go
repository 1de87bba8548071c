package main

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// parseDate normalizes a request date string into a calendar date. Only the
// YYYY-MM-DD layout is accepted; anything else is a client error.
func parseDate(input string) (time.Time, error) {
	t, err := time.Parse(dateLayout, input)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, input)
	}
	return t, nil
}

// parseMonth parses a YYYY-MM path segment and returns the first day of that
// month and the first day of the next one, for half-open range queries.
func parseMonth(input string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", input)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month format, expected YYYY-MM: %q", input)
	}
	return start, start.AddDate(0, 1, 0), nil
}
