package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/nexis/internal/domain"
)

//go:embed schema.sql
var schema string

// Store owns the notes and reminders tables. Safe for concurrent use from
// the interaction loop and the reminder scheduler: WAL journal mode plus a
// busy timeout serialize writers, readers see a consistent snapshot.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddNote stores a new fact and returns it.
func (s *Store) AddNote(ctx context.Context, text string) (*domain.Note, error) {
	now := time.Now()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notes (text, created_at) VALUES (?, ?)",
		text, now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}

	return &domain.Note{Text: text, CreatedAt: now}, nil
}

// ListNotes returns every stored note in insertion order.
func (s *Store) ListNotes(ctx context.Context) ([]domain.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT text, created_at FROM notes ORDER BY rowid ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		var created int64
		if err := rows.Scan(&n.Text, &created); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		n.CreatedAt = time.Unix(created, 0)
		notes = append(notes, n)
	}

	return notes, rows.Err()
}

// ClearNotes deletes all notes. Reminders are not affected.
func (s *Store) ClearNotes(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM notes"); err != nil {
		return fmt.Errorf("clear notes: %w", err)
	}
	return nil
}

// AddReminder schedules a new reminder and returns it.
func (s *Store) AddReminder(ctx context.Context, message string, dueAt time.Time) (*domain.Reminder, error) {
	now := time.Now()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO reminders (message, due_at, fired, created_at) VALUES (?, ?, 0, ?)",
		message, dueAt.Unix(), now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert reminder: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reminder id: %w", err)
	}

	return &domain.Reminder{
		ID:        id,
		Message:   message,
		DueAt:     dueAt,
		CreatedAt: now,
	}, nil
}

// ListPendingReminders returns all unfired reminders ordered by due time.
func (s *Store) ListPendingReminders(ctx context.Context) ([]domain.Reminder, error) {
	return s.queryReminders(ctx,
		"SELECT id, message, due_at, fired, created_at FROM reminders WHERE fired = 0 ORDER BY due_at ASC",
	)
}

// DueReminders returns unfired reminders whose due time is at or before now.
func (s *Store) DueReminders(ctx context.Context, now time.Time) ([]domain.Reminder, error) {
	return s.queryReminders(ctx,
		"SELECT id, message, due_at, fired, created_at FROM reminders WHERE fired = 0 AND due_at <= ? ORDER BY due_at ASC",
		now.Unix(),
	)
}

// MarkFired flags a reminder as delivered. Idempotent: marking an already
// fired reminder is a no-op.
func (s *Store) MarkFired(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE reminders SET fired = 1 WHERE id = ? AND fired = 0", id,
	); err != nil {
		return fmt.Errorf("mark fired: %w", err)
	}
	return nil
}

func (s *Store) queryReminders(ctx context.Context, query string, args ...any) ([]domain.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []domain.Reminder
	for rows.Next() {
		var r domain.Reminder
		var due, created int64
		var fired int
		if err := rows.Scan(&r.ID, &r.Message, &due, &fired, &created); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		r.DueAt = time.Unix(due, 0)
		r.CreatedAt = time.Unix(created, 0)
		r.Fired = fired != 0
		reminders = append(reminders, r)
	}

	return reminders, rows.Err()
}
