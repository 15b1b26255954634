package history

import (
	"DrawSpectra/internal/config"
	"DrawSpectra/internal/model"
	"DrawSpectra/internal/status"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/cenkalti/backoff/v4"
)

const createDrawStatsTableStatement = `
CREATE TABLE IF NOT EXISTS draw_stats (
    Timestamp   DateTime,
    RunID       String,
    Iteration   UInt64,
    Type        UInt8,
    Rank        UInt16,
    Item        String,
    Value       UInt64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (RunID, Timestamp, Type, Rank);
`

const connectRetries = 3

// ClickHouseWriter implements the model.Writer interface for ClickHouse.
type ClickHouseWriter struct {
	conn     driver.Conn
	interval time.Duration
}

// NewClickHouseWriter creates a new ClickHouse writer for reports.
func NewClickHouseWriter(cfg config.ClickHouseConfig, interval time.Duration) (model.Writer, error) {
	var conn driver.Conn
	operation := func() error {
		var err error
		conn, err = connect(cfg)
		return err
	}
	err := backoff.RetryNotify(operation, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), connectRetries), func(err error, d time.Duration) {
		log.Printf("Retrying ClickHouse connection in %s: %v", d, err)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(context.Background(), createDrawStatsTableStatement); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create draw_stats table: %w", err)
	}
	log.Println("Successfully connected to ClickHouse and ensured draw_stats table exists.")

	return &ClickHouseWriter{conn: conn, interval: interval}, nil
}

func (w *ClickHouseWriter) GetInterval() time.Duration {
	return w.interval
}

func (w *ClickHouseWriter) Name() string {
	return "clickhouse"
}

// Close releases the ClickHouse connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
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
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
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

// Write inserts the report rows into the draw_stats table in one batch.
func (w *ClickHouseWriter) Write(payload interface{}, timestamp string) error {
	report, err := asReport(payload, "ClickHouseWriter")
	if err != nil {
		return err
	}
	rows := flatten(report)
	if len(rows) == 0 {
		return nil // Nothing to write
	}

	batch, err := w.conn.PrepareBatch(context.Background(), "INSERT INTO draw_stats")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	snapshotTime := parseTimestamp(timestamp)
	for _, row := range rows {
		if err := batch.Append(clickhouseColumns(snapshotTime, report, row)...); err != nil {
			return fmt.Errorf("failed to append row to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Printf("Wrote %d rows to ClickHouse for iteration %d", len(rows), report.Iteration)
	return nil
}

// clickhouseColumns lays out one row in draw_stats column order.
func clickhouseColumns(snapshotTime time.Time, report status.Report, row statRow) []any {
	return []any{snapshotTime, report.RunID, report.Iteration, row.Type, row.Rank, row.Item, row.Value}
}
