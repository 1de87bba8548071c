package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("valid date parses to calendar date", func(t *testing.T) {
		d, err := parseDate("2024-01-15")

		require.NoError(t, err)
		assert.Equal(t, 2024, d.Year())
		assert.Equal(t, time.January, d.Month())
		assert.Equal(t, 15, d.Day())
	})

	t.Run("leap day is accepted", func(t *testing.T) {
		d, err := parseDate("2024-02-29")

		require.NoError(t, err)
		assert.Equal(t, 29, d.Day())
	})

	t.Run("empty string is rejected", func(t *testing.T) {
		_, err := parseDate("")

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidDate))
	})

	t.Run("wrong layout is rejected", func(t *testing.T) {
		for _, input := range []string{"15/01/2024", "2024-1-15", "Jan 15 2024", "2024-01-15T00:00:00Z"} {
			_, err := parseDate(input)
			assert.ErrorIs(t, err, ErrInvalidDate, "input %q", input)
		}
	})

	t.Run("impossible calendar date is rejected", func(t *testing.T) {
		_, err := parseDate("2023-02-30")

		assert.ErrorIs(t, err, ErrInvalidDate)
	})
}

func TestParseMonth(t *testing.T) {
	t.Run("valid month yields half-open range", func(t *testing.T) {
		start, end, err := parseMonth("2024-01")

		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("december rolls into next year", func(t *testing.T) {
		start, end, err := parseMonth("2023-12")

		require.NoError(t, err)
		assert.Equal(t, 2023, start.Year())
		assert.Equal(t, 2024, end.Year())
		assert.Equal(t, time.January, end.Month())
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		for _, input := range []string{"", "2024", "2024-13", "01-2024", "2024-01-15"} {
			_, _, err := parseMonth(input)
			assert.Error(t, err, "input %q", input)
		}
	})
}
