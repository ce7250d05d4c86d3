package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nexis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNoteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.AddNote(ctx, "wifi password is abc")
	require.NoError(t, err)
	_, err = s.AddNote(ctx, "keys are in the drawer")
	require.NoError(t, err)

	notes, err := s.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "wifi password is abc", notes[0].Text)
	assert.Equal(t, "keys are in the drawer", notes[1].Text)

	require.NoError(t, s.ClearNotes(ctx))

	notes, err = s.ListNotes(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestReminderLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()

	past, err := s.AddReminder(ctx, "call mom", now.Add(-time.Minute))
	require.NoError(t, err)
	_, err = s.AddReminder(ctx, "take medicine", now.Add(time.Hour))
	require.NoError(t, err)

	pending, err := s.ListPendingReminders(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "call mom", pending[0].Message, "pending list is due_at ascending")

	due, err := s.DueReminders(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, past.ID, due[0].ID)

	require.NoError(t, s.MarkFired(ctx, past.ID))

	due, err = s.DueReminders(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, due)

	pending, err = s.ListPendingReminders(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "take medicine", pending[0].Message)
}

func TestMarkFiredIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	r, err := s.AddReminder(ctx, "stretch", time.Now().Add(-time.Second))
	require.NoError(t, err)

	require.NoError(t, s.MarkFired(ctx, r.ID))
	require.NoError(t, s.MarkFired(ctx, r.ID))

	due, err := s.DueReminders(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.AddNote(ctx, "note")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := s.AddReminder(ctx, "reminder", time.Now().Add(time.Minute))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	notes, err := s.ListNotes(ctx)
	require.NoError(t, err)
	assert.Len(t, notes, 10)

	pending, err := s.ListPendingReminders(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 10)
}
