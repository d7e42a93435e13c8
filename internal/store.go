package internal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS threads (
	id TEXT PRIMARY KEY,
	url TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	harvested_at TEXT NOT NULL,
	outcome TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS messages (
	thread_id TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	author TEXT NOT NULL,
	text TEXT NOT NULL,
	timestamp TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (thread_id, position)
);`

// ErrThreadNotFound is returned when a thread ID is not in the archive
var ErrThreadNotFound = errors.New("thread not found")

// ThreadSummary is a thread listing entry without message bodies
type ThreadSummary struct {
	ID           string
	URL          string
	Title        string
	HarvestedAt  time.Time
	Outcome      Outcome
	MessageCount int
}

// Store archives harvested threads in SQLite
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore opens (creating if needed) the archive at path
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &StoreError{Path: path, Op: "open", Err: err}
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, &StoreError{Path: path, Op: "open", Err: fmt.Errorf("failed to open database: %w", err)}
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StoreError{Path: path, Op: "open", Err: fmt.Errorf("database ping failed: %w", err)}
	}

	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, &StoreError{Path: path, Op: "open", Err: fmt.Errorf("failed to create schema: %w", err)}
	}

	LogDebug("Opened thread archive %s", path)
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveThread writes t, replacing any archived thread with the same ID
func (s *Store) SaveThread(t *Thread) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &StoreError{Path: s.path, Op: "save", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE thread_id = ?", t.ID); err != nil {
		return &StoreError{Path: s.path, Op: "save", Err: err}
	}
	_, err = tx.Exec(
		`INSERT OR REPLACE INTO threads (id, url, title, harvested_at, outcome) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.URL, t.Title, t.HarvestedAt.UTC().Format(time.RFC3339Nano), string(t.Outcome),
	)
	if err != nil {
		return &StoreError{Path: s.path, Op: "save", Err: err}
	}

	stmt, err := tx.Prepare("INSERT INTO messages (thread_id, position, author, text, timestamp) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return &StoreError{Path: s.path, Op: "save", Err: err}
	}
	defer stmt.Close()
	for i, msg := range t.Messages {
		if _, err := stmt.Exec(t.ID, i, msg.Author, msg.Text, msg.Timestamp); err != nil {
			return &StoreError{Path: s.path, Op: "save", Err: fmt.Errorf("message %d: %w", i, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StoreError{Path: s.path, Op: "save", Err: err}
	}
	LogDebug("Saved thread %s (%d messages)", t.ID, len(t.Messages))
	return nil
}

// ListThreads returns every archived thread, newest first
func (s *Store) ListThreads() ([]ThreadSummary, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.url, t.title, t.harvested_at, t.outcome, COUNT(m.position)
		FROM threads t LEFT JOIN messages m ON m.thread_id = t.id
		GROUP BY t.id
		ORDER BY t.harvested_at DESC, t.id`)
	if err != nil {
		return nil, &StoreError{Path: s.path, Op: "list", Err: fmt.Errorf("query failed: %w", err)}
	}
	defer rows.Close()

	var summaries []ThreadSummary
	for rows.Next() {
		var sum ThreadSummary
		var harvestedAt, outcome string
		if err := rows.Scan(&sum.ID, &sum.URL, &sum.Title, &harvestedAt, &outcome, &sum.MessageCount); err != nil {
			return nil, &StoreError{Path: s.path, Op: "list", Err: fmt.Errorf("scan failed: %w", err)}
		}
		sum.HarvestedAt = parseStoredTime(harvestedAt)
		sum.Outcome = Outcome(outcome)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Path: s.path, Op: "list", Err: fmt.Errorf("rows iteration error: %w", err)}
	}
	return summaries, nil
}

// LoadThread reads one thread with its messages. The error wraps
// ErrThreadNotFound when id is unknown.
func (s *Store) LoadThread(id string) (*Thread, error) {
	t := &Thread{ID: id}
	var harvestedAt, outcome string
	err := s.db.QueryRow("SELECT url, title, harvested_at, outcome FROM threads WHERE id = ?", id).
		Scan(&t.URL, &t.Title, &harvestedAt, &outcome)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &StoreError{Path: s.path, Op: "load", Err: fmt.Errorf("%w: %s", ErrThreadNotFound, id)}
	}
	if err != nil {
		return nil, &StoreError{Path: s.path, Op: "load", Err: err}
	}
	t.HarvestedAt = parseStoredTime(harvestedAt)
	t.Outcome = Outcome(outcome)

	rows, err := s.db.Query("SELECT author, text, timestamp FROM messages WHERE thread_id = ? ORDER BY position", id)
	if err != nil {
		return nil, &StoreError{Path: s.path, Op: "load", Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.Author, &msg.Text, &msg.Timestamp); err != nil {
			return nil, &StoreError{Path: s.path, Op: "load", Err: err}
		}
		t.Messages = append(t.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Path: s.path, Op: "load", Err: err}
	}
	return t, nil
}

// LoadAllThreads reads every archived thread, newest first
func (s *Store) LoadAllThreads() ([]*Thread, error) {
	summaries, err := s.ListThreads()
	if err != nil {
		return nil, err
	}
	threads := make([]*Thread, 0, len(summaries))
	for _, sum := range summaries {
		t, err := s.LoadThread(sum.ID)
		if err != nil {
			return nil, err
		}
		threads = append(threads, t)
	}
	return threads, nil
}

// DeleteThread removes a thread and its messages
func (s *Store) DeleteThread(id string) error {
	res, err := s.db.Exec("DELETE FROM threads WHERE id = ?", id)
	if err != nil {
		return &StoreError{Path: s.path, Op: "delete", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &StoreError{Path: s.path, Op: "delete", Err: fmt.Errorf("%w: %s", ErrThreadNotFound, id)}
	}
	return nil
}

func parseStoredTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		LogDebug("Unparseable harvest time %q: %v", s, err)
		return time.Time{}
	}
	return t
}
