package checkpoint

import (
	"DrawSpectra/internal/model"
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// ErrNoCheckpoint is returned by Load when the checkpoint file does not exist.
var ErrNoCheckpoint = errors.New("no checkpoint")

// Recorder receives draws replayed from a checkpoint.
type Recorder interface {
	Record(d model.Draw)
}

// Store persists the top-k draws as plain text, one draw per line:
//
//	<n1> <n2> <n3> <n4> <n5> <b1> <b2>
//
// Counts are not stored. Every Save overwrites the file in full.
type Store struct {
	path string
}

// NewStore creates a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the checkpoint file location.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a checkpoint file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Save writes the draws of list in list order, replacing any previous content.
func (s *Store) Save(list model.TopList) error {
	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", s.path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, e := range list {
		if _, err := w.WriteString(e.Draw.String() + "\n"); err != nil {
			return fmt.Errorf("failed to write checkpoint: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush checkpoint: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync checkpoint: %w", err)
	}
	return file.Close()
}

// Load returns the well-formed draws of the checkpoint in file order.
// Malformed lines are skipped. A missing file yields ErrNoCheckpoint.
func (s *Store) Load() ([]model.Draw, error) {
	var draws []model.Draw
	err := s.scan(func(d model.Draw) {
		draws = append(draws, d)
	})
	if err != nil {
		return nil, err
	}
	return draws, nil
}

// Replay feeds every well-formed checkpoint line to rec as one occurrence and
// returns how many draws were replayed. A missing file is a cold start, not an error.
func (s *Store) Replay(rec Recorder) (int, error) {
	n := 0
	err := s.scan(func(d model.Draw) {
		rec.Record(d)
		n++
	})
	if errors.Is(err, ErrNoCheckpoint) {
		return 0, nil
	}
	return n, err
}

func (s *Store) scan(fn func(d model.Draw)) error {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %w", ErrNoCheckpoint, err)
		}
		return fmt.Errorf("failed to open checkpoint file '%s': %w", s.path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if d, ok := ParseLine(scanner.Text()); ok {
			fn(d)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read checkpoint file '%s': %w", s.path, err)
	}
	return nil
}

// ParseLine parses one checkpoint line. It accepts exactly seven
// whitespace-separated decimal tokens, each in [0,255].
func ParseLine(line string) (model.Draw, bool) {
	var d model.Draw
	fields := strings.Fields(line)
	if len(fields) != model.DrawSize {
		return d, false
	}
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 8)
		if err != nil {
			return d, false
		}
		d[i] = uint8(v)
	}
	return d, true
}
