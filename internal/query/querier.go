package query

import (
	"DrawSpectra/internal/config"
	"DrawSpectra/internal/engine/impl/history"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// DefaultLimit bounds a history query without an explicit limit.
const DefaultLimit = 100

// Point is one top-k entry of one stored snapshot.
type Point struct {
	Timestamp time.Time
	RunID     string
	Iteration uint64
	Rank      uint16
	Draw      string
	Count     uint64
}

// Querier reads the top-k history stored by the history writers.
type Querier interface {
	// TopHistory returns the most recent top-k rows, newest snapshot first and
	// ranks ascending within a snapshot. An empty runID matches every run.
	TopHistory(ctx context.Context, runID string, limit int) ([]Point, error)
	Close() error
}

// NewFromConfig creates a querier for the first enabled sqlite or clickhouse
// writer. It returns nil when no such writer is configured.
func NewFromConfig(cfg *config.Config) (Querier, error) {
	for _, def := range cfg.Writers {
		if !def.Enabled {
			continue
		}
		switch def.Type {
		case "sqlite":
			return NewSQLiteQuerier(def.SQLite.Path)
		case "clickhouse":
			return NewClickHouseQuerier(def.ClickHouse)
		}
	}
	return nil, nil
}

// buildTopHistoryQuery renders the history query with the given column names.
func buildTopHistoryQuery(cols [6]string, typeCol, runID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM draw_stats WHERE %s = 0", strings.Join(cols[:], ", "), typeCol)
	if runID != "" {
		fmt.Fprintf(&b, " AND %s = ?", cols[1])
	}
	fmt.Fprintf(&b, " ORDER BY %s DESC, %s ASC LIMIT ?", cols[0], cols[3])
	return b.String()
}

func queryArgs(runID string, limit int) []interface{} {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if runID != "" {
		return []interface{}{runID, limit}
	}
	return []interface{}{limit}
}

// --- SQLite ---

type sqliteQuerier struct {
	db *sql.DB
}

// NewSQLiteQuerier opens the history database written by the sqlite writer,
// with the same busy timeout and journal mode.
func NewSQLiteQuerier(path string) (Querier, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite querier requires a path")
	}
	db, err := sql.Open("sqlite", history.SQLiteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return &sqliteQuerier{db: db}, nil
}

func (q *sqliteQuerier) TopHistory(ctx context.Context, runID string, limit int) ([]Point, error) {
	cols := [6]string{"timestamp", "run_id", "iteration", "rank", "item", "value"}
	rows, err := q.db.QueryContext(ctx, buildTopHistoryQuery(cols, "type", runID), queryArgs(runID, limit)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top history: %w", err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var (
			p         Point
			ts        string
			iteration int64
			value     int64
		)
		if err := rows.Scan(&ts, &p.RunID, &iteration, &p.Rank, &p.Draw, &value); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		p.Timestamp, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("invalid stored timestamp %q: %w", ts, err)
		}
		p.Iteration = uint64(iteration)
		p.Count = uint64(value)
		points = append(points, p)
	}
	return points, rows.Err()
}

func (q *sqliteQuerier) Close() error {
	return q.db.Close()
}

// --- ClickHouse ---

type clickhouseQuerier struct {
	conn driver.Conn
}

// NewClickHouseQuerier creates a new querier for ClickHouse.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (Querier, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &clickhouseQuerier{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return conn, nil
}

func (q *clickhouseQuerier) TopHistory(ctx context.Context, runID string, limit int) ([]Point, error) {
	cols := [6]string{"Timestamp", "RunID", "Iteration", "Rank", "Item", "Value"}
	rows, err := q.conn.Query(ctx, buildTopHistoryQuery(cols, "Type", runID), queryArgs(runID, limit)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top history: %w", err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.Timestamp, &p.RunID, &p.Iteration, &p.Rank, &p.Draw, &p.Count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (q *clickhouseQuerier) Close() error {
	return q.conn.Close()
}
