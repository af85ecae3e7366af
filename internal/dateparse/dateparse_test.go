package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday.
var ref = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func TestParseFrom(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"today", "2024-01-10"},
		{"tomorrow", "2024-01-11"},
		{"yesterday", "2024-01-09"},
		{"next week", "2024-01-17"},
		{"next month", "2024-02-10"},
		{"eow", "2024-01-12"},
		{"eom", "2024-01-31"},
		{"friday", "2024-01-12"},
		{"fri", "2024-01-12"},
		{"monday", "2024-01-15"},
		{"wednesday", "2024-01-17"}, // same weekday means next week
		{"next friday", "2024-01-19"},
		{"next wednesday", "2024-01-17"},
		{"+3", "2024-01-13"},
		{"+0", "2024-01-10"},
		{"in 5 days", "2024-01-15"},
		{"in 1 day", "2024-01-11"},
		{"in 2 weeks", "2024-01-24"},
		{"2024-03-05", "2024-03-05"},
		{"  Today ", "2024-01-10"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFrom(tt.input, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFromRejects(t *testing.T) {
	for _, input := range []string{
		"",
		"someday",
		"2024-1-5",    // unpadded
		"2024-02-30",  // impossible date
		"01/10/2024",  // wrong format
		"+threedays",  // garbage suffix
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseFrom(input, ref)
			assert.Error(t, err)
		})
	}
}

func TestEndOfMonthLeapYear(t *testing.T) {
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	got, err := ParseFrom("eom", feb)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("today"))
	assert.True(t, IsValid("2024-06-01"))
	assert.False(t, IsValid("not a date"))
}
