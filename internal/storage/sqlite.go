// Package storage persists mediation cases, their timelines, and the audit
// log of adaptation requests in a cgo-free SQLite database.
package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database with methods for cases, timeline events,
// and adaptation audit records.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used
// by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "accord.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies embedded SQL migration files that haven't been run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

// AppliedMigrations returns the applied schema versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// parseMigrationVersion extracts the numeric prefix from a migration
// filename like "001_init.sql".
func parseMigrationVersion(name string) (int, error) {
	base := strings.TrimSuffix(name, ".sql")
	idx := strings.Index(base, "_")
	if idx <= 0 {
		return 0, fmt.Errorf("migration %q has no numeric prefix", name)
	}
	v, err := strconv.Atoi(base[:idx])
	if err != nil {
		return 0, fmt.Errorf("migration %q has invalid version: %w", name, err)
	}
	return v, nil
}

// --- Cases ---

func (s *Store) CreateCase(c Case) error {
	status := c.Status
	if status == "" {
		status = "open"
	}
	parties := c.Parties
	if parties == "" {
		parties = "[]"
	}
	_, err := s.db.Exec(`
		INSERT INTO mediation_cases (id, title, status, parties, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, status, parties,
		c.CreatedAt.UTC().Format(time.RFC3339), c.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetCase(id string) (Case, error) {
	var c Case
	var createdAt, updatedAt string
	err := s.db.QueryRow(`
		SELECT id, title, status, parties, created_at, updated_at
		FROM mediation_cases WHERE id = ?`, id,
	).Scan(&c.ID, &c.Title, &c.Status, &c.Parties, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return Case{}, ErrNotFound
	}
	if err != nil {
		return Case{}, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return Case{}, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Case{}, err
	}
	return c, nil
}

// ListCases returns cases filtered by status ("" lists all), newest first.
func (s *Store) ListCases(status string, limit int) ([]Case, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, title, status, parties, created_at, updated_at
		FROM mediation_cases`
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Case
	for rows.Next() {
		var c Case
		var createdAt, updatedAt string
		if err := rows.Scan(&c.ID, &c.Title, &c.Status, &c.Parties, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

func (s *Store) UpdateCaseStatus(id, status string, at time.Time) error {
	res, err := s.db.Exec(`UPDATE mediation_cases SET status = ?, updated_at = ? WHERE id = ?`,
		status, at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Timeline events ---

func (s *Store) AppendEvent(ev TimelineEvent) error {
	metadata := ev.Metadata
	if metadata == "" {
		metadata = "{}"
	}
	if _, err := s.GetCase(ev.CaseID); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		INSERT INTO timeline_events (id, case_id, ts, type, content, party, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.CaseID, ev.Timestamp.UTC().Format(time.RFC3339), ev.Type, ev.Content, ev.Party, metadata,
	)
	return err
}

// RecentEvents returns the last n events for a case in chronological order.
func (s *Store) RecentEvents(caseID string, n int) ([]TimelineEvent, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := s.db.Query(`
		SELECT id, case_id, ts, type, content, party, metadata
		FROM timeline_events WHERE case_id = ?
		ORDER BY ts DESC, rowid DESC LIMIT ?`, caseID, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	// Reverse into chronological order.
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

// ListEvents returns all events for a case in chronological order.
func (s *Store) ListEvents(caseID string) ([]TimelineEvent, error) {
	rows, err := s.db.Query(`
		SELECT id, case_id, ts, type, content, party, metadata
		FROM timeline_events WHERE case_id = ?
		ORDER BY ts ASC, rowid ASC`, caseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// LastAssessment returns the most recent escalation-assessment event for a
// case, or ErrNotFound if none has been recorded yet.
func (s *Store) LastAssessment(caseID string) (TimelineEvent, error) {
	row := s.db.QueryRow(`
		SELECT id, case_id, ts, type, content, party, metadata
		FROM timeline_events
		WHERE case_id = ? AND json_extract(metadata, '$.type') = 'escalation_assessment'
		ORDER BY ts DESC, rowid DESC LIMIT 1`, caseID,
	)
	var ev TimelineEvent
	var ts string
	err := row.Scan(&ev.ID, &ev.CaseID, &ts, &ev.Type, &ev.Content, &ev.Party, &ev.Metadata)
	if err == sql.ErrNoRows {
		return TimelineEvent{}, ErrNotFound
	}
	if err != nil {
		return TimelineEvent{}, err
	}
	if ev.Timestamp, err = parseTime(ts); err != nil {
		return TimelineEvent{}, err
	}
	return ev, nil
}

func scanEvents(rows *sql.Rows) ([]TimelineEvent, error) {
	var events []TimelineEvent
	for rows.Next() {
		var ev TimelineEvent
		var ts string
		if err := rows.Scan(&ev.ID, &ev.CaseID, &ts, &ev.Type, &ev.Content, &ev.Party, &ev.Metadata); err != nil {
			return nil, err
		}
		t, err := parseTime(ts)
		if err != nil {
			return nil, err
		}
		ev.Timestamp = t
		events = append(events, ev)
	}
	return events, rows.Err()
}

// --- Adaptation audit records ---

func (s *Store) SaveAdaptation(rec AdaptationRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO adaptations (id, query_id, background, legal_category, request_json, result_json, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.QueryID, rec.Background, rec.LegalCategory,
		rec.RequestJSON, rec.ResultJSON, rec.Confidence,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetAdaptation(id string) (AdaptationRecord, error) {
	var rec AdaptationRecord
	var createdAt string
	err := s.db.QueryRow(`
		SELECT id, query_id, background, legal_category, request_json, result_json, confidence, created_at
		FROM adaptations WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.QueryID, &rec.Background, &rec.LegalCategory,
		&rec.RequestJSON, &rec.ResultJSON, &rec.Confidence, &createdAt)
	if err == sql.ErrNoRows {
		return AdaptationRecord{}, ErrNotFound
	}
	if err != nil {
		return AdaptationRecord{}, err
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return AdaptationRecord{}, err
	}
	return rec, nil
}

func (s *Store) ListAdaptations(limit int) ([]AdaptationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, query_id, background, legal_category, request_json, result_json, confidence, created_at
		FROM adaptations ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []AdaptationRecord
	for rows.Next() {
		var rec AdaptationRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.QueryID, &rec.Background, &rec.LegalCategory,
			&rec.RequestJSON, &rec.ResultJSON, &rec.Confidence, &createdAt); err != nil {
			return nil, err
		}
		if rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp: %w", err)
	}
	return t, nil
}
