// Package ledger keeps a local history of installs and removals in a
// sqlite database. The ledger is informational: callers log failures
// and carry on, an install never fails because history could not be
// written.
package ledger

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Event is one recorded install or removal.
type Event struct {
	ID        int64
	Action    string // "install" or "remove"
	Version   string
	DevDir    string
	Timestamp time.Time
}

const (
	ActionInstall = "install"
	ActionRemove  = "remove"
)

type Ledger struct {
	db *sql.DB
}

// DefaultPath returns the ledger database location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "nodekit", "nodekit.db"), nil
}

// Open opens the ledger at the default location, creating the database
// and its schema on first use.
func Open() (*Ledger, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return OpenAt(path)
}

// OpenAt opens a ledger database at an explicit path.
func OpenAt(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}
	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate ledger schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record appends one event.
func (l *Ledger) Record(ctx context.Context, action, version, devDir string) error {
	_, err := l.db.ExecContext(ctx,
		"INSERT INTO events (action, version, devdir, timestamp) VALUES (?, ?, ?, ?)",
		action, version, devDir, time.Now().Unix())
	return err
}

// List returns all events, newest first.
func (l *Ledger) List(ctx context.Context) ([]Event, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT id, action, version, devdir, timestamp FROM events ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var ts int64
		if err := rows.Scan(&e.ID, &e.Action, &e.Version, &e.DevDir, &ts); err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(ts, 0)
		events = append(events, e)
	}
	return events, rows.Err()
}
