package calllog

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"campaign-caller-go/internal/types"
)

// SQLiteStore is the embedded-database backend for the call log,
// selected with CALL_LOG_BACKEND=sqlite. Same contract as FileStore.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS call_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		time TEXT NOT NULL,
		call_id TEXT,
		number TEXT NOT NULL
	);`)
	if err != nil {
		return fmt.Errorf("migrate call_log: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, entry types.CallLogEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO call_log(time, call_id, number) VALUES(?, ?, ?)`,
		entry.Time, entry.CallID, entry.Number)
	if err != nil {
		return fmt.Errorf("insert call_log: %w", err)
	}
	return nil
}

// LoadAll returns entries in insertion order; query failures degrade to
// an empty log.
func (s *SQLiteStore) LoadAll(ctx context.Context) []types.CallLogEntry {
	rows, err := s.db.QueryContext(ctx,
		`SELECT time, call_id, number FROM call_log ORDER BY id`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []types.CallLogEntry
	for rows.Next() {
		var e types.CallLogEntry
		if err := rows.Scan(&e.Time, &e.CallID, &e.Number); err != nil {
			return nil
		}
		out = append(out, e)
	}
	if rows.Err() != nil {
		return nil
	}
	return out
}
