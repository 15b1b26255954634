package history

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

const createSQLiteTableStatement = `
CREATE TABLE IF NOT EXISTS draw_stats (
    timestamp   TEXT    NOT NULL,
    run_id      TEXT    NOT NULL,
    iteration   INTEGER NOT NULL,
    type        INTEGER NOT NULL,
    rank        INTEGER NOT NULL,
    item        TEXT    NOT NULL,
    value       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_draw_stats_run ON draw_stats (run_id, timestamp);
`

// SQLiteBusyTimeout is how long a connection waits on a locked database.
const SQLiteBusyTimeout = 5 * time.Second

// SQLiteDSN returns the data source name for a history database. File
// databases use WAL so readers and the snapshot writer do not block each other.
func SQLiteDSN(path string) string {
	if path == ":memory:" {
		return path
	}
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, SQLiteBusyTimeout.Milliseconds())
}

// SQLiteWriter stores reports in an embedded SQLite database.
type SQLiteWriter struct {
	db       *sql.DB
	interval time.Duration
}

// NewSQLiteWriter opens (or creates) the database at path and ensures the schema exists.
func NewSQLiteWriter(path string, interval time.Duration) (*SQLiteWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite writer requires a path")
	}
	db, err := sql.Open("sqlite", SQLiteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// Writes come from a single snapshotter; one connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createSQLiteTableStatement); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create draw_stats table: %w", err)
	}
	log.Printf("Opened SQLite history database at %s", path)
	return &SQLiteWriter{db: db, interval: interval}, nil
}

func (w *SQLiteWriter) GetInterval() time.Duration {
	return w.interval
}

func (w *SQLiteWriter) Name() string {
	return "sqlite"
}

// Write inserts the report rows in a single transaction.
func (w *SQLiteWriter) Write(payload interface{}, timestamp string) error {
	report, err := asReport(payload, "SQLiteWriter")
	if err != nil {
		return err
	}
	rows := flatten(report)
	if len(rows) == 0 {
		return nil
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO draw_stats (timestamp, run_id, iteration, type, rank, item, value) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	snapshotTime := parseTimestamp(timestamp).UTC().Format(time.RFC3339)
	for _, row := range rows {
		if _, err := stmt.Exec(snapshotTime, report.RunID, int64(report.Iteration), row.Type, row.Rank, row.Item, int64(row.Value)); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the database.
func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}
