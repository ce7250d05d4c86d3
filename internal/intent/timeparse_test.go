package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var parseNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)

func TestParseWhenAbsolute(t *testing.T) {
	due, rest, ok := parseWhen("call mom at 8 pm", parseNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 14, 20, 0, 0, 0, time.Local), due)
	assert.Equal(t, "call mom", rest)

	due, _, ok = parseWhen("take medicine at 14:30", parseNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 14, 14, 30, 0, 0, time.Local), due)
}

func TestParseWhenRollsOverPastTimes(t *testing.T) {
	// 8 am has passed at the 10:00 reference clock.
	due, _, ok := parseWhen("water the plants at 8 am", parseNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 15, 8, 0, 0, 0, time.Local), due)

	// Midnight crossing: 11 pm today is still ahead.
	due, _, ok = parseWhen("sleep at 11 pm", parseNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 14, 23, 0, 0, 0, time.Local), due)
}

func TestParseWhenMeridiemEdgeCases(t *testing.T) {
	// 12 pm is noon, 12 am is midnight (tomorrow, since it has passed).
	due, _, ok := parseWhen("lunch at 12 pm", parseNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local), due)

	due, _, ok = parseWhen("backup at 12 am", parseNow)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local), due)
}

func TestParseWhenRelative(t *testing.T) {
	due, rest, ok := parseWhen("stretch in 10 minutes", parseNow)
	require.True(t, ok)
	assert.Equal(t, parseNow.Add(10*time.Minute), due)
	assert.Equal(t, "stretch", rest)

	due, _, ok = parseWhen("check the oven in 1 hour", parseNow)
	require.True(t, ok)
	assert.Equal(t, parseNow.Add(time.Hour), due)
}

func TestParseWhenRejectsNonsense(t *testing.T) {
	cases := []string{
		"call mom",
		"call mom at 25",
		"call mom at 13 pm",
		"call mom at 8:75 pm",
		"call mom in 0 minutes",
		"call mom soonish",
	}
	for _, text := range cases {
		_, _, ok := parseWhen(text, parseNow)
		assert.False(t, ok, "expected %q to fail", text)
	}
}
