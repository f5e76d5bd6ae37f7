package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewName(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		n, err := NewName("Morning run")
		require.NoError(t, err)
		assert.Equal(t, "Morning run", n.String())
	})

	t.Run("trims whitespace", func(t *testing.T) {
		n, err := NewName("  Meditate  ")
		require.NoError(t, err)
		assert.Equal(t, "Meditate", n.String())
	})

	t.Run("empty", func(t *testing.T) {
		_, err := NewName("   ")
		assert.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := NewName(strings.Repeat("x", 121))
		assert.ErrorIs(t, err, ErrNameTooLong)

		_, err = NewName(strings.Repeat("x", 120))
		assert.NoError(t, err)
	})
}

func TestParseReminderTime(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		rt, err := ParseReminderTime("07:30")
		require.NoError(t, err)
		assert.Equal(t, "07:30", rt.String())
	})

	t.Run("midnight", func(t *testing.T) {
		rt, err := ParseReminderTime("00:00")
		require.NoError(t, err)
		assert.Equal(t, "00:00", rt.String())
	})

	t.Run("invalid", func(t *testing.T) {
		for _, s := range []string{"25:00", "7:30pm", "07:61", "0730", ""} {
			_, err := ParseReminderTime(s)
			assert.ErrorIs(t, err, ErrInvalidReminderTime, "input %q", s)
		}
	})
}

func TestReminderTimeAt(t *testing.T) {
	auckland, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)

	rt, err := ParseReminderTime("07:00")
	require.NoError(t, err)

	d := Date{Year: 2025, Month: time.March, Day: 11}
	at := rt.At(d, auckland)

	assert.Equal(t, time.Date(2025, 3, 11, 7, 0, 0, 0, auckland), at)
	// NZDT is UTC+13 on this date.
	assert.Equal(t, time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC), at.UTC())
}
