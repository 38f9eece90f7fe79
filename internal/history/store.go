// Package history persists reload sessions to a local SQLite database so a
// developer can inspect what reloaded, in what order, and what failed.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"pyreload/internal/logging"
	"pyreload/internal/reload"
)

// Store provides persistence for reload sessions. It implements
// reload.Recorder.
type Store struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// OpenStore opens or creates the history database at <dir>/history.db.
func OpenStore(dir string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	dbPath := filepath.Join(dir, "history.db")
	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	store := &Store{conn: conn, logger: logger, dbPath: dbPath}

	if !dbExists {
		logger.Info("Creating history database", map[string]interface{}{
			"path": dbPath,
		})
		if err := store.initializeSchema(); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to initialize history schema: %w", err)
		}
	}

	return store, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			root TEXT NOT NULL,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			executed INTEGER NOT NULL,
			cycles INTEGER NOT NULL,
			status TEXT NOT NULL,
			failed TEXT,
			error TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at DESC);
		CREATE INDEX IF NOT EXISTS idx_sessions_root ON sessions(root);

		CREATE TABLE IF NOT EXISTS session_modules (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			module TEXT NOT NULL,
			PRIMARY KEY (session_id, position)
		);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Record inserts a completed session and its ordered module list.
func (s *Store) Record(session reload.Session) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO sessions (id, root, started_at, duration_ms, executed, cycles, status, failed, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.ID,
		session.Root,
		session.StartedAt.UTC().Format(time.RFC3339),
		session.Duration.Milliseconds(),
		session.Executed,
		session.Cycles,
		session.Status,
		nullString(session.Failed),
		nullString(session.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}

	for i, module := range session.Modules {
		if _, err := tx.Exec(`
			INSERT INTO session_modules (session_id, position, module)
			VALUES (?, ?, ?)
		`, session.ID, i, module); err != nil {
			return fmt.Errorf("failed to record session module: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}

	s.logger.Debug("Recorded reload session", map[string]interface{}{
		"session": session.ID,
		"root":    session.Root,
		"status":  session.Status,
	})
	return nil
}

// Get retrieves one session by ID, or nil if absent.
func (s *Store) Get(id string) (*reload.Session, error) {
	row := s.conn.QueryRow(`
		SELECT id, root, started_at, duration_ms, executed, cycles, status, failed, error
		FROM sessions WHERE id = ?
	`, id)

	session, err := scanSession(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	if err := s.loadModules(session); err != nil {
		return nil, err
	}
	return session, nil
}

// List retrieves the most recent sessions, newest first.
func (s *Store) List(limit int) ([]reload.Session, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	rows, err := s.conn.Query(`
		SELECT id, root, started_at, duration_ms, executed, cycles, status, failed, error
		FROM sessions
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []reload.Session
	for rows.Next() {
		session, err := scanSession(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		if err := s.loadModules(session); err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// Prune removes sessions older than the given retention period and returns
// how many were deleted.
func (s *Store) Prune(retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention).Format(time.RFC3339)
	result, err := s.conn.Exec(`DELETE FROM sessions WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return result.RowsAffected()
}

func (s *Store) loadModules(session *reload.Session) error {
	rows, err := s.conn.Query(`
		SELECT module FROM session_modules
		WHERE session_id = ?
		ORDER BY position ASC
	`, session.ID)
	if err != nil {
		return fmt.Errorf("failed to load session modules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var module string
		if err := rows.Scan(&module); err != nil {
			return err
		}
		session.Modules = append(session.Modules, module)
	}
	return rows.Err()
}

func scanSession(scan func(dest ...interface{}) error) (*reload.Session, error) {
	var session reload.Session
	var startedAt string
	var durationMS int64
	var failed, errMsg sql.NullString

	err := scan(
		&session.ID,
		&session.Root,
		&startedAt,
		&durationMS,
		&session.Executed,
		&session.Cycles,
		&session.Status,
		&failed,
		&errMsg,
	)
	if err != nil {
		return nil, err
	}

	session.Failed = failed.String
	session.Error = errMsg.String
	session.Duration = time.Duration(durationMS) * time.Millisecond
	if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
		session.StartedAt = t
	}
	return &session, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
