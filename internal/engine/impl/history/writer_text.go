package history

import (
	"DrawSpectra/internal/model"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// TextWriter writes each report to a timestamped directory as plain text.
type TextWriter struct {
	rootPath string
	interval time.Duration
}

// NewTextWriter creates a new text writer for reports.
func NewTextWriter(rootPath string, interval time.Duration) model.Writer {
	return &TextWriter{rootPath: rootPath, interval: interval}
}

func (w *TextWriter) GetInterval() time.Duration {
	return w.interval
}

func (w *TextWriter) Name() string {
	return "text"
}

// Write creates <root>/<timestamp>/top_draws.txt ("<draw> <count>" per line)
// and numbers.txt ("<number> <count>" per line).
func (w *TextWriter) Write(payload interface{}, timestamp string) error {
	report, err := asReport(payload, "TextWriter")
	if err != nil {
		return err
	}

	snapshotDir := filepath.Join(w.rootPath, timestamp)
	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	total := 0

	// top draws
	filePath := filepath.Join(snapshotDir, "top_draws.txt")
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file '%s': %w", filePath, err)
	}
	defer file.Close()

	for _, e := range report.Top {
		line := fmt.Sprintf("%s %d\n", e.Draw, e.Count)
		if _, err := file.WriteString(line); err != nil {
			return fmt.Errorf("failed to write top draw to file: %w", err)
		}
		total++
	}

	// numbers
	filePath = filepath.Join(snapshotDir, "numbers.txt")
	numFile, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file '%s': %w", filePath, err)
	}
	defer numFile.Close()

	for _, nc := range report.Numbers {
		line := fmt.Sprintf("%d %d\n", nc.Number, nc.Count)
		if _, err := numFile.WriteString(line); err != nil {
			return fmt.Errorf("failed to write number count to file: %w", err)
		}
		total++
	}

	log.Printf("Wrote %d lines for iteration %d to %s", total, report.Iteration, snapshotDir)
	return nil
}
