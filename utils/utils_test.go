package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type DurationTestCase struct {
	input    time.Duration
	expected string
}

func TestFormatDuration(t *testing.T) {
	tests := []DurationTestCase{
		{0 * time.Second, "00:00"},
		{45 * time.Second, "00:45"},
		{3*time.Minute + 45*time.Second, "03:45"},
		{1*time.Hour + 23*time.Minute + 45*time.Second, "01:23:45"},
		{48*time.Hour + 30*time.Minute + 15*time.Second, "48:30:15"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatDuration(tt.input))
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "unbounded", Truncate("unbounded", 0))
	assert.Equal(t, "héllo...", Truncate("héllo wörld", 8))
}
