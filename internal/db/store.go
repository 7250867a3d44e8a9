package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id TEXT PRIMARY KEY,
	orderId TEXT NOT NULL,
	fileName TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	text TEXT NOT NULL,
	createdAt REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS checkins (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	recitedPages TEXT NOT NULL,
	reciteDuration INTEGER NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	createdAt REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transcriptions_created ON transcriptions(createdAt);
CREATE INDEX IF NOT EXISTS idx_checkins_created ON checkins(createdAt);
`

// Store is the history database.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "recite", "history.sqlite")
}

// Open opens or creates the database at path with WAL and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveTranscription inserts t, assigning ID and CreatedAt when empty.
func (s *Store) SaveTranscription(t Transcription) (Transcription, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO transcriptions (id, orderId, fileName, source, text, createdAt)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.ID, t.OrderID, t.FileName, t.Source, t.Text, unixFromTime(t.CreatedAt))
	if err != nil {
		return Transcription{}, fmt.Errorf("insert transcription: %w", err)
	}
	return t, nil
}

// RecentTranscriptions returns up to limit transcriptions, newest first.
func (s *Store) RecentTranscriptions(limit int) ([]Transcription, error) {
	rows, err := s.db.Query(`
		SELECT id, orderId, fileName, source, text, createdAt
		FROM transcriptions
		ORDER BY createdAt DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transcriptions: %w", err)
	}
	defer rows.Close()

	var out []Transcription
	for rows.Next() {
		var t Transcription
		var createdAt float64
		if err := rows.Scan(&t.ID, &t.OrderID, &t.FileName, &t.Source, &t.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transcription: %w", err)
		}
		t.CreatedAt = timeFromUnix(createdAt)
		out = append(out, t)
	}
	return out, rows.Err()
}

// SaveCheckIn inserts c, assigning ID and CreatedAt when empty.
func (s *Store) SaveCheckIn(c CheckIn) (CheckIn, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO checkins (id, username, recitedPages, reciteDuration, message, createdAt)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.Username, c.RecitedPages, c.ReciteDuration, c.Message, unixFromTime(c.CreatedAt))
	if err != nil {
		return CheckIn{}, fmt.Errorf("insert check-in: %w", err)
	}
	return c, nil
}

// RecentCheckIns returns up to limit check-ins, newest first.
func (s *Store) RecentCheckIns(limit int) ([]CheckIn, error) {
	rows, err := s.db.Query(`
		SELECT id, username, recitedPages, reciteDuration, message, createdAt
		FROM checkins
		ORDER BY createdAt DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query check-ins: %w", err)
	}
	defer rows.Close()

	var out []CheckIn
	for rows.Next() {
		var c CheckIn
		var createdAt float64
		if err := rows.Scan(&c.ID, &c.Username, &c.RecitedPages, &c.ReciteDuration, &c.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan check-in: %w", err)
		}
		c.CreatedAt = timeFromUnix(createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

// TotalRecitedSeconds sums reciteDuration over all check-ins by username.
func (s *Store) TotalRecitedSeconds(username string) (int, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(`
		SELECT SUM(reciteDuration) FROM checkins WHERE username = ?
	`, username).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum check-ins: %w", err)
	}
	return int(total.Int64), nil
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
