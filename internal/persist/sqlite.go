package persist

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	lperrors "github.com/grovetools/linkpicker/errors"
	"github.com/grovetools/linkpicker/pkg/hotkey"
	"github.com/grovetools/linkpicker/pkg/models"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLite stores the persisted slices in a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and if needed creates) the database at dbPath.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, lperrors.PersistFailed(lperrors.ErrCodePersistBackend, BackendSQLite, fmt.Errorf("create db directory: %w", err))
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, lperrors.PersistFailed(lperrors.ErrCodePersistBackend, BackendSQLite, fmt.Errorf("open database: %w", err))
	}
	// One writer; the store serializes saves anyway.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, lperrors.PersistFailed(lperrors.ErrCodePersistBackend, BackendSQLite, fmt.Errorf("migrate: %w", err))
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema, err := migrationsFS.ReadFile("migrations/001_initial.sql")
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("exec migration: %w", err)
	}
	return nil
}

// Load reads every persisted slice. An empty database is a first run.
func (s *SQLite) Load(ctx context.Context) (models.Persisted, error) {
	var (
		p        models.Persisted
		firstRun int
	)
	err := s.db.QueryRowContext(ctx, `SELECT favourite, first_run FROM prefs WHERE id = 1`).Scan(&p.Favourite, &firstRun)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultPersisted(), nil
	}
	if err != nil {
		return models.Persisted{}, lperrors.PersistFailed(lperrors.ErrCodePersistLoad, BackendSQLite, fmt.Errorf("query prefs: %w", err))
	}
	p.FirstRun = firstRun != 0

	rows, err := s.db.QueryContext(ctx, `SELECT target_id FROM hidden_targets ORDER BY target_id`)
	if err != nil {
		return models.Persisted{}, lperrors.PersistFailed(lperrors.ErrCodePersistLoad, BackendSQLite, fmt.Errorf("query hidden targets: %w", err))
	}
	p.Hidden = []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return models.Persisted{}, lperrors.PersistFailed(lperrors.ErrCodePersistLoad, BackendSQLite, fmt.Errorf("scan hidden target: %w", err))
		}
		p.Hidden = append(p.Hidden, id)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `SELECT target_id, key FROM hotkeys`)
	if err != nil {
		return models.Persisted{}, lperrors.PersistFailed(lperrors.ErrCodePersistLoad, BackendSQLite, fmt.Errorf("query hotkeys: %w", err))
	}
	defer rows.Close()
	p.Hotkeys = hotkey.Table{}
	for rows.Next() {
		var id, key string
		if err := rows.Scan(&id, &key); err != nil {
			return models.Persisted{}, lperrors.PersistFailed(lperrors.ErrCodePersistLoad, BackendSQLite, fmt.Errorf("scan hotkey: %w", err))
		}
		p.Hotkeys[id] = key
	}
	if err := rows.Err(); err != nil {
		return models.Persisted{}, lperrors.PersistFailed(lperrors.ErrCodePersistLoad, BackendSQLite, err)
	}

	first := p.FirstRun
	p = normalize(p)
	p.FirstRun = first
	return p, nil
}

// Save replaces the stored slices in one transaction.
func (s *SQLite) Save(ctx context.Context, p models.Persisted) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return lperrors.PersistFailed(lperrors.ErrCodePersistSave, BackendSQLite, fmt.Errorf("begin: %w", err))
	}
	defer tx.Rollback()

	firstRun := 0
	if p.FirstRun {
		firstRun = 1
	}
	stmts := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO prefs (id, favourite, first_run, updated_at) VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		  ON CONFLICT(id) DO UPDATE SET favourite = excluded.favourite, first_run = excluded.first_run, updated_at = CURRENT_TIMESTAMP`,
			[]any{p.Favourite, firstRun}},
		{`DELETE FROM hidden_targets`, nil},
		{`DELETE FROM hotkeys`, nil},
	}
	for _, st := range stmts {
		if _, err := tx.ExecContext(ctx, st.query, st.args...); err != nil {
			return lperrors.PersistFailed(lperrors.ErrCodePersistSave, BackendSQLite, err)
		}
	}
	for _, id := range p.Hidden {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO hidden_targets (target_id) VALUES (?)`, id); err != nil {
			return lperrors.PersistFailed(lperrors.ErrCodePersistSave, BackendSQLite, fmt.Errorf("insert hidden target: %w", err))
		}
	}
	for id, key := range p.Hotkeys {
		if _, err := tx.ExecContext(ctx, `INSERT INTO hotkeys (target_id, key) VALUES (?, ?)`, id, key); err != nil {
			return lperrors.PersistFailed(lperrors.ErrCodePersistSave, BackendSQLite, fmt.Errorf("insert hotkey: %w", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return lperrors.PersistFailed(lperrors.ErrCodePersistSave, BackendSQLite, fmt.Errorf("commit: %w", err))
	}
	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
