package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/nexis/internal/config"
	"github.com/pbaille/nexis/internal/domain"
)

func testConfig() *config.Config {
	return &config.Config{
		Apps:      map[string]string{"firefox": "firefox", "vs code": "code", "calculator": "gnome-calculator"},
		Processes: map[string]string{"firefox": "firefox", "spotify": "spotify"},
	}
}

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := New(testConfig())
	require.NoError(t, err)
	// Saturday 2026-03-14 10:00 local, fixed for reminder assertions.
	c.now = func() time.Time {
		return time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
	}
	return c
}

func TestClassifyKinds(t *testing.T) {
	c := newTestClassifier(t)

	cases := []struct {
		text string
		kind domain.Kind
	}{
		{"hello", domain.KindGreeting},
		{"what's up", domain.KindGreeting},
		{"how are you?", domain.KindGreeting},
		{"What time is it?", domain.KindTimeQuery},
		{"what's today's date", domain.KindDateQuery},
		{"what day is it", domain.KindDateQuery},
		{"tell me a joke", domain.KindJoke},
		{"lock the screen", domain.KindSystemControl},
		{"volume up", domain.KindSystemControl},
		{"take a screenshot", domain.KindSystemControl},
		{"shut down the computer", domain.KindSystemControl},
		{"list reminders", domain.KindListReminders},
		{"what do you remember", domain.KindRecallMemory},
		{"clear memory", domain.KindClearMemory},
		{"help", domain.KindHelp},
		{"exit", domain.KindExit},
		{"bye", domain.KindExit},
		{"asdkjasd", domain.KindUnknown},
	}

	for _, tc := range cases {
		got := c.Classify(tc.text)
		assert.Equal(t, tc.kind, got.Kind, "utterance %q", tc.text)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := newTestClassifier(t)
	first := c.Classify("remind me to call mom at 8 pm")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.Classify("remind me to call mom at 8 pm"))
	}
}

func TestClassifyReminderAbsolute(t *testing.T) {
	c := newTestClassifier(t)

	got := c.Classify("remind me to call mom at 8 pm")
	require.Equal(t, domain.KindSetReminder, got.Kind)
	assert.Equal(t, "call mom", got.Message)
	assert.Equal(t, time.Date(2026, 3, 14, 20, 0, 0, 0, time.Local), got.DueAt)
}

func TestClassifyReminderRollsOverToTomorrow(t *testing.T) {
	c := newTestClassifier(t)

	// 8 am is already past at the fixed 10:00 clock.
	got := c.Classify("remind me to take medicine at 8 am")
	require.Equal(t, domain.KindSetReminder, got.Kind)
	assert.Equal(t, time.Date(2026, 3, 15, 8, 0, 0, 0, time.Local), got.DueAt)
}

func TestClassifyReminderRelative(t *testing.T) {
	c := newTestClassifier(t)

	got := c.Classify("remind me to stretch in 10 minutes")
	require.Equal(t, domain.KindSetReminder, got.Kind)
	assert.Equal(t, "stretch", got.Message)
	assert.Equal(t, time.Date(2026, 3, 14, 10, 10, 0, 0, time.Local), got.DueAt)
}

func TestClassifyReminderWithoutTimeFallsThrough(t *testing.T) {
	c := newTestClassifier(t)

	// No parsable time expression: the reminder rule must not match.
	got := c.Classify("remind me to call mom")
	assert.Equal(t, domain.KindUnknown, got.Kind)
	assert.Equal(t, "remind me to call mom", got.Raw)
}

func TestClassifyNote(t *testing.T) {
	c := newTestClassifier(t)

	got := c.Classify("remember that my wifi password is abc")
	require.Equal(t, domain.KindRememberNote, got.Kind)
	assert.Equal(t, "my wifi password is abc", got.Message)
}

func TestClassifyCalculate(t *testing.T) {
	c := newTestClassifier(t)

	got := c.Classify("calculate 25 * 4 + 10")
	require.Equal(t, domain.KindCalculate, got.Kind)
	assert.Equal(t, "25 * 4 + 10", got.Expression)

	got = c.Classify("5 / 0")
	require.Equal(t, domain.KindCalculate, got.Kind)
	assert.Equal(t, "5 / 0", got.Expression)

	// Non-numeric tail is a knowledge query, not a broken calculation.
	got = c.Classify("what is a black hole")
	assert.Equal(t, domain.KindKnowledge, got.Kind)
	assert.Equal(t, "a black hole", got.Topic)
}

func TestClassifyApps(t *testing.T) {
	c := newTestClassifier(t)

	got := c.Classify("open firefox")
	require.Equal(t, domain.KindOpenApp, got.Kind)
	assert.Equal(t, "firefox", got.App)

	// Longest configured name wins.
	got = c.Classify("open vs code")
	assert.Equal(t, "vs code", got.App)

	// Unconfigured names still produce the intent; the dispatcher reports
	// the resolution failure.
	got = c.Classify("open blender")
	require.Equal(t, domain.KindOpenApp, got.Kind)
	assert.Equal(t, "blender", got.App)

	got = c.Classify("close spotify")
	require.Equal(t, domain.KindCloseApp, got.Kind)
	assert.Equal(t, "spotify", got.App)
}

func TestClassifySearch(t *testing.T) {
	c := newTestClassifier(t)

	got := c.Classify("search for go tutorials")
	require.Equal(t, domain.KindWebSearch, got.Kind)
	assert.Equal(t, "go tutorials", got.Query)
}

func TestUnknownKeepsRawText(t *testing.T) {
	c := newTestClassifier(t)

	got := c.Classify("Flibber the jabberwock")
	require.Equal(t, domain.KindUnknown, got.Kind)
	assert.Equal(t, "Flibber the jabberwock", got.Raw)
}

func TestNewRejectsNothing(t *testing.T) {
	// The built-in rule list must pass its own shadow check.
	_, err := New(testConfig())
	assert.NoError(t, err)
}
