// Package store persists sessions, events and commands in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pbooth01/cli2ansible/internal/domain"
	"github.com/pbooth01/cli2ansible/internal/ports"
)

// SQLiteStore implements ports.SessionRepository on a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			name TEXT,
			status TEXT,
			created_at TEXT,
			updated_at TEXT,
			duration REAL,
			metadata TEXT
		);
		CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			session_id TEXT,
			timestamp REAL,
			kind TEXT,
			data TEXT,
			sequence INTEGER,
			version INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, sequence);
		CREATE TABLE IF NOT EXISTS commands (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT,
			raw TEXT,
			normalized TEXT,
			cwd TEXT,
			user TEXT,
			sudo INTEGER,
			timestamp REAL,
			exit_code INTEGER,
			output TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_commands_session ON commands(session_id, timestamp);
	`)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// CreateSession inserts a new session row.
func (s *SQLiteStore) CreateSession(ctx context.Context, session domain.Session) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	metadata, err := json.Marshal(session.Metadata)
	if err != nil {
		return domain.Session{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO sessions
		(id, name, status, created_at, updated_at, duration, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID.String(),
		session.Name,
		string(session.Status),
		session.CreatedAt.Format(time.RFC3339Nano),
		session.UpdatedAt.Format(time.RFC3339Nano),
		session.Duration,
		string(metadata),
	)
	if err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// GetSession retrieves a session or domain.ErrSessionNotFound.
func (s *SQLiteStore) GetSession(ctx context.Context, id uuid.UUID) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, status, created_at, updated_at, duration, metadata
		FROM sessions WHERE id = ?`, id.String())
	session, err := scanSession(row)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.Session{}, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	return session, err
}

// UpdateSession persists session mutations, bumping updated_at.
func (s *SQLiteStore) UpdateSession(ctx context.Context, session domain.Session) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.UpdatedAt = time.Now().UTC()
	metadata, err := json.Marshal(session.Metadata)
	if err != nil {
		return domain.Session{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE sessions
		SET name = ?, status = ?, updated_at = ?, duration = ?, metadata = ?
		WHERE id = ?`,
		session.Name,
		string(session.Status),
		session.UpdatedAt.Format(time.RFC3339Nano),
		session.Duration,
		string(metadata),
		session.ID.String(),
	)
	if err != nil {
		return domain.Session{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Session{}, fmt.Errorf("session %s: %w", session.ID, domain.ErrSessionNotFound)
	}
	return session, nil
}

// SaveEvents inserts events in one transaction.
func (s *SQLiteStore) SaveEvents(ctx context.Context, events []domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO events
		(id, session_id, timestamp, kind, data, sequence, version)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.ExecContext(ctx,
			ev.ID.String(),
			ev.SessionID.String(),
			ev.Timestamp,
			string(ev.Kind),
			ev.Data,
			ev.Sequence,
			ev.Version,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListEvents returns the session's events ordered by sequence.
func (s *SQLiteStore) ListEvents(ctx context.Context, sessionID uuid.UUID) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, session_id, timestamp, kind, data, sequence, version
		FROM events WHERE session_id = ? ORDER BY sequence`, sessionID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// GetEvent retrieves an event or domain.ErrEventNotFound.
func (s *SQLiteStore) GetEvent(ctx context.Context, id uuid.UUID) (domain.Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, session_id, timestamp, kind, data, sequence, version
		FROM events WHERE id = ?`, id.String())
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Event{}, fmt.Errorf("event %s: %w", id, domain.ErrEventNotFound)
	}
	return ev, err
}

// UpdateEvent applies an optimistic-concurrency update: the row is only
// written when the stored version matches expectedVersion, and the store
// increments the version atomically. A stale version yields
// domain.ErrVersionConflict; a missing row yields domain.ErrEventNotFound.
func (s *SQLiteStore) UpdateEvent(ctx context.Context, event domain.Event, expectedVersion int) (domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `UPDATE events
		SET timestamp = ?, kind = ?, data = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		event.Timestamp,
		string(event.Kind),
		event.Data,
		event.ID.String(),
		expectedVersion,
	)
	if err != nil {
		return domain.Event{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Event{}, err
	}
	if n == 0 {
		var current int
		row := s.db.QueryRowContext(ctx, `SELECT version FROM events WHERE id = ?`, event.ID.String())
		if scanErr := row.Scan(&current); scanErr != nil {
			if errors.Is(scanErr, sql.ErrNoRows) {
				return domain.Event{}, fmt.Errorf("event %s: %w", event.ID, domain.ErrEventNotFound)
			}
			return domain.Event{}, scanErr
		}
		return domain.Event{}, fmt.Errorf("expected version %d, current is %d: %w", expectedVersion, current, domain.ErrVersionConflict)
	}
	event.Version = expectedVersion + 1
	return event, nil
}

// SaveCommands inserts derived commands in one transaction.
func (s *SQLiteStore) SaveCommands(ctx context.Context, commands []domain.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO commands
		(session_id, raw, normalized, cwd, user, sudo, timestamp, exit_code, output)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, cmd := range commands {
		var exitCode any
		if cmd.ExitCode != nil {
			exitCode = *cmd.ExitCode
		}
		if _, err := stmt.ExecContext(ctx,
			cmd.SessionID.String(),
			cmd.Raw,
			cmd.Normalized,
			cmd.Cwd,
			cmd.User,
			boolToInt(cmd.Sudo),
			cmd.Timestamp,
			exitCode,
			cmd.Output,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListCommands returns the session's commands in insertion order.
func (s *SQLiteStore) ListCommands(ctx context.Context, sessionID uuid.UUID) ([]domain.Command, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id, raw, normalized, cwd, user, sudo, timestamp, exit_code, output
		FROM commands WHERE session_id = ? ORDER BY id`, sessionID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var commands []domain.Command
	for rows.Next() {
		var (
			cmd       domain.Command
			sessionID string
			sudo      int
			exitCode  sql.NullInt64
		)
		if err := rows.Scan(&sessionID, &cmd.Raw, &cmd.Normalized, &cmd.Cwd, &cmd.User, &sudo, &cmd.Timestamp, &exitCode, &cmd.Output); err != nil {
			return nil, err
		}
		if id, err := uuid.Parse(sessionID); err == nil {
			cmd.SessionID = id
		}
		cmd.Sudo = sudo == 1
		if exitCode.Valid {
			code := int(exitCode.Int64)
			cmd.ExitCode = &code
		}
		commands = append(commands, cmd)
	}
	return commands, rows.Err()
}

// DeleteCommands removes all derived commands for a session.
func (s *SQLiteStore) DeleteCommands(ctx context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM commands WHERE session_id = ?`, sessionID.String())
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (domain.Session, error) {
	var (
		session              domain.Session
		id                   string
		status               string
		createdAt, updatedAt string
		metadata             string
	)
	err := row.Scan(&id, &session.Name, &status, &createdAt, &updatedAt, &session.Duration, &metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	if session.ID, err = uuid.Parse(id); err != nil {
		return domain.Session{}, err
	}
	session.Status = domain.SessionStatus(status)
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		session.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		session.UpdatedAt = t
	}
	if err := json.Unmarshal([]byte(metadata), &session.Metadata); err != nil {
		session.Metadata = map[string]any{}
	}
	return session, nil
}

func scanEvent(row rowScanner) (domain.Event, error) {
	var (
		ev         domain.Event
		id, sessID string
		kind       string
	)
	if err := row.Scan(&id, &sessID, &ev.Timestamp, &kind, &ev.Data, &ev.Sequence, &ev.Version); err != nil {
		return domain.Event{}, err
	}
	var err error
	if ev.ID, err = uuid.Parse(id); err != nil {
		return domain.Event{}, err
	}
	if ev.SessionID, err = uuid.Parse(sessID); err != nil {
		return domain.Event{}, err
	}
	ev.Kind = domain.EventKind(kind)
	return ev, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.SessionRepository = (*SQLiteStore)(nil)
