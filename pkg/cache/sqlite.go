package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/umputun/newsportal/pkg/domain"
)

//go:embed schema.sql
var schema string

// errCritical marks errors repeater should not retry
var errCritical = errors.New("critical error")

// criticalError wraps an error to signal repeater to stop retrying
type criticalError struct {
	err error
}

func (e *criticalError) Error() string { return e.err.Error() }

func (e *criticalError) Unwrap() error { return e.err }

func (e *criticalError) Is(target error) bool { return target == errCritical }

// SQLiteStore keeps the snapshot in a single-row sqlite table, shared between restarts
type SQLiteStore struct {
	db *sqlx.DB
}

type snapshotRow struct {
	ID       int64  `db:"id"`
	BuiltAt  int64  `db:"built_at"`
	Document string `db:"document"`
}

// NewSQLiteStore opens the database and creates the table if needed
func NewSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "file:newsportal.db?cache=shared&mode=rwc&_txlock=immediate"
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load reads the stored snapshot
func (s *SQLiteStore) Load(ctx context.Context) (Snapshot, bool, error) {
	var row snapshotRow
	err := s.db.GetContext(ctx, &row, "SELECT id, built_at, document FROM snapshots WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}

	doc := &domain.Document{}
	if err := json.Unmarshal([]byte(row.Document), doc); err != nil {
		return Snapshot{}, false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return Snapshot{Document: doc, BuiltAt: time.UnixMilli(row.BuiltAt).UTC()}, true, nil
}

// Save replaces the stored snapshot, retrying while the database is locked
func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) error {
	if snap.Document == nil {
		return errors.New("save snapshot: empty document")
	}
	data, err := json.Marshal(snap.Document)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	row := snapshotRow{ID: 1, BuiltAt: snap.BuiltAt.UnixMilli(), Document: string(data)}

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	return retrier.Do(ctx, func() error {
		_, err := s.db.NamedExecContext(ctx, `
			INSERT INTO snapshots (id, built_at, document) VALUES (:id, :built_at, :document)
			ON CONFLICT(id) DO UPDATE SET built_at = excluded.built_at, document = excluded.document`, row)
		if err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("save snapshot: %w", err)}
		}
		return nil
	}, errCritical)
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// isLockError checks if an error is a SQLite lock/busy error
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked")
}
