package history

import (
	"DrawSpectra/internal/config"
	"DrawSpectra/internal/factory"
	"DrawSpectra/internal/model"
	"DrawSpectra/internal/status"
	"fmt"
	"strconv"
	"time"
)

// --- Factory Registration ---

func init() {
	factory.RegisterWriter("text", func(def config.WriterDef, interval time.Duration) (model.Writer, error) {
		return NewTextWriter(def.Text.RootPath, interval), nil
	})
	factory.RegisterWriter("clickhouse", func(def config.WriterDef, interval time.Duration) (model.Writer, error) {
		return NewClickHouseWriter(def.ClickHouse, interval)
	})
	factory.RegisterWriter("sqlite", func(def config.WriterDef, interval time.Duration) (model.Writer, error) {
		w, err := NewSQLiteWriter(def.SQLite.Path, interval)
		if err != nil {
			return nil, err
		}
		return w, nil
	})
}

// TimestampLayout is the layout of the timestamp passed to Write.
const TimestampLayout = "2006-01-02_15-04-05"

// Row types stored in the draw_stats tables.
const (
	TypeTopDraw uint8 = 0
	TypeNumber  uint8 = 1
)

// statRow is one line of a report flattened for tabular storage.
type statRow struct {
	Type  uint8
	Rank  uint16
	Item  string
	Value uint64
}

func asReport(payload interface{}, writer string) (status.Report, error) {
	report, ok := payload.(status.Report)
	if !ok {
		return status.Report{}, fmt.Errorf("invalid payload type for %s: expected status.Report, got %T", writer, payload)
	}
	return report, nil
}

// flatten turns the top list and number counters of a report into rows, ranks starting at 1.
func flatten(r status.Report) []statRow {
	rows := make([]statRow, 0, len(r.Top)+len(r.Numbers))
	for i, e := range r.Top {
		rows = append(rows, statRow{Type: TypeTopDraw, Rank: uint16(i + 1), Item: e.Draw.String(), Value: e.Count})
	}
	for i, nc := range r.Numbers {
		rows = append(rows, statRow{Type: TypeNumber, Rank: uint16(i + 1), Item: strconv.Itoa(int(nc.Number)), Value: nc.Count})
	}
	return rows
}

func parseTimestamp(timestamp string) time.Time {
	t, err := time.ParseInLocation(TimestampLayout, timestamp, time.Local)
	if err != nil {
		return time.Now()
	}
	return t
}
