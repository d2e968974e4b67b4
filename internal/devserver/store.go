// Package devserver is a local stand-in for the platform's REST API, backed
// by SQLite. It serves metadata search, program lifecycle, the user
// configuration bag and the ETL adapter listing.
package devserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"metagrip/internal/domain"
	"metagrip/internal/metadata"
)

// ErrNotFound is returned for unknown programs
var ErrNotFound = errors.New("not found")

// ErrConflict is returned for lifecycle calls that do not apply to the
// program's current state
var ErrConflict = errors.New("conflict")

const schema = `
CREATE TABLE IF NOT EXISTS entities (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	kind          TEXT NOT NULL,
	namespace     TEXT NOT NULL,
	name          TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	tags          TEXT NOT NULL DEFAULT '[]',
	creation_time INTEGER NOT NULL DEFAULT 0,
	raw           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entities_ns_kind ON entities(namespace, kind);

CREATE TABLE IF NOT EXISTS programs (
	namespace    TEXT NOT NULL,
	app          TEXT NOT NULL,
	program_type TEXT NOT NULL,
	program      TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'STOPPED',
	changed_at   INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (namespace, app, program_type, program)
);

CREATE TABLE IF NOT EXISTS preferences (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS adapters (
	namespace   TEXT NOT NULL,
	name        TEXT NOT NULL,
	template    TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (namespace, name)
);
`

// Store is the devserver database handle
type Store struct {
	db         *sql.DB
	startDelay time.Duration
	now        func() time.Time
}

// StoreOption customises a Store
type StoreOption func(*Store)

// WithStartDelay sets how long a started program reports STARTING
func WithStartDelay(d time.Duration) StoreOption {
	return func(s *Store) { s.startDelay = d }
}

// WithClock replaces the time source
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// Open opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func Open(path string, opts ...StoreOption) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("devserver: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("devserver: open: %w", err)
	}
	if path == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	for _, stmt := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 10000",
		schema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("devserver: %w", err)
		}
	}

	s := &Store{db: db, startDelay: 2 * time.Second, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Empty reports whether no entity has been stored yet
func (s *Store) Empty(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entities`).Scan(&n); err != nil {
		return false, err
	}
	return n == 0, nil
}

// PutEntity stores a raw entity and, for programs, registers it as stopped
func (s *Store) PutEntity(ctx context.Context, raw metadata.RawEntity) error {
	e, err := metadata.Parse(raw)
	if err != nil {
		return err
	}
	body, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	tags, err := json.Marshal(e.Tags)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO entities (kind, namespace, name, description, tags, creation_time, raw)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		metadata.EntityKind(e.Type), e.Namespace, e.ID, e.Description, string(tags),
		e.CreationTime.UnixMilli(), string(body)); err != nil {
		return fmt.Errorf("failed to insert entity %s: %w", e.ID, err)
	}

	if e.IsProgram() {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO programs (namespace, app, program_type, program) VALUES (?, ?, ?, ?)`,
			e.Namespace, e.Application, domain.ProgramTypeToAPI(e.ProgramType), e.ID); err != nil {
			return fmt.Errorf("failed to register program %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// storedEntity is a row loaded for search
type storedEntity struct {
	Name         string
	Description  string
	Tags         []string
	CreationTime int64
	Raw          metadata.RawEntity
}

// entities loads the namespace's entities of the given wire kinds
func (s *Store) entities(ctx context.Context, namespace string, kinds []string) ([]storedEntity, error) {
	query := `SELECT name, description, tags, creation_time, raw FROM entities WHERE namespace = ?`
	args := []any{namespace}
	if len(kinds) > 0 {
		query += ` AND kind IN (?` + strings.Repeat(",?", len(kinds)-1) + `)`
		for _, k := range kinds {
			args = append(args, k)
		}
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storedEntity
	for rows.Next() {
		var (
			e         storedEntity
			tags, raw string
		)
		if err := rows.Scan(&e.Name, &e.Description, &tags, &e.CreationTime, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
			return nil, fmt.Errorf("corrupt tags for %s: %w", e.Name, err)
		}
		if err := json.Unmarshal([]byte(raw), &e.Raw); err != nil {
			return nil, fmt.Errorf("corrupt entity %s: %w", e.Name, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ProgramStatus returns a program's status. STARTING settles to RUNNING
// once the start delay has passed.
func (s *Store) ProgramStatus(ctx context.Context, ref domain.ProgramRef) (domain.ProgramStatus, error) {
	var (
		status  string
		changed int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT status, changed_at FROM programs WHERE namespace = ? AND app = ? AND program_type = ? AND program = ?`,
		ref.Namespace, ref.AppID, ref.ProgramType, ref.ProgramID).Scan(&status, &changed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("program %s: %w", ref.ProgramID, ErrNotFound)
	}
	if err != nil {
		return "", err
	}

	if domain.ProgramStatus(status) == domain.StatusStarting &&
		s.now().Sub(time.UnixMilli(changed)) >= s.startDelay {
		if err := s.setStatus(ctx, ref, domain.StatusRunning); err != nil {
			return "", err
		}
		return domain.StatusRunning, nil
	}
	return domain.ProgramStatus(status), nil
}

// Transition applies a start or stop
func (s *Store) Transition(ctx context.Context, ref domain.ProgramRef, action domain.ProgramAction) error {
	current, err := s.ProgramStatus(ctx, ref)
	if err != nil {
		return err
	}

	switch action {
	case domain.ActionStart:
		if current.IsActive() {
			return fmt.Errorf("program %s is already running: %w", ref.ProgramID, ErrConflict)
		}
		next := domain.StatusStarting
		if s.startDelay <= 0 {
			next = domain.StatusRunning
		}
		return s.setStatus(ctx, ref, next)
	case domain.ActionStop:
		if !current.IsActive() {
			return fmt.Errorf("program %s is not running: %w", ref.ProgramID, ErrConflict)
		}
		return s.setStatus(ctx, ref, domain.StatusStopped)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func (s *Store) setStatus(ctx context.Context, ref domain.ProgramRef, status domain.ProgramStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE programs SET status = ?, changed_at = ?
		 WHERE namespace = ? AND app = ? AND program_type = ? AND program = ?`,
		string(status), s.now().UnixMilli(),
		ref.Namespace, ref.AppID, ref.ProgramType, ref.ProgramID)
	return err
}

// Preferences returns the user configuration bag
func (s *Store) Preferences(ctx context.Context) (map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM preferences ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	props := map[string]any{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			return nil, fmt.Errorf("corrupt preference %s: %w", key, err)
		}
		props[key] = v
	}
	return props, rows.Err()
}

// ReplacePreferences overwrites the bag
func (s *Store) ReplacePreferences(ctx context.Context, props map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM preferences`); err != nil {
		return err
	}
	for k, v := range props {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("preference %s: %w", k, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO preferences (key, value) VALUES (?, ?)`, k, string(data)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Adapter is a published ETL application
type Adapter struct {
	Namespace   string `yaml:"namespace"`
	Name        string `yaml:"name"`
	Template    string `yaml:"template"`
	Description string `yaml:"description"`
	Status      string `yaml:"status"`
}

// PutAdapter stores an adapter
func (s *Store) PutAdapter(ctx context.Context, a Adapter) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO adapters (namespace, name, template, description, status) VALUES (?, ?, ?, ?, ?)`,
		a.Namespace, a.Name, a.Template, a.Description, a.Status)
	return err
}

// Adapters lists a namespace's adapters, optionally for one template
func (s *Store) Adapters(ctx context.Context, namespace, template string) ([]Adapter, error) {
	query := `SELECT namespace, name, template, description, status FROM adapters WHERE namespace = ?`
	args := []any{namespace}
	if template != "" {
		query += ` AND template = ?`
		args = append(args, template)
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Adapter{}
	for rows.Next() {
		var a Adapter
		if err := rows.Scan(&a.Namespace, &a.Name, &a.Template, &a.Description, &a.Status); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
