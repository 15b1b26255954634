package factory

import (
	"errors"
	"testing"
	"time"

	"DrawSpectra/internal/config"
	"DrawSpectra/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWriter struct {
	interval time.Duration
}

func (w *stubWriter) Write(interface{}, string) error { return nil }
func (w *stubWriter) GetInterval() time.Duration      { return w.interval }
func (w *stubWriter) Name() string                    { return "stub" }

func init() {
	RegisterWriter("stub", func(_ config.WriterDef, interval time.Duration) (model.Writer, error) {
		return &stubWriter{interval: interval}, nil
	})
	RegisterWriter("broken", func(config.WriterDef, time.Duration) (model.Writer, error) {
		return nil, errors.New("boom")
	})
}

func TestCreate(t *testing.T) {
	cfg := &config.Config{Writers: []config.WriterDef{
		{Type: "stub", Enabled: true, SnapshotInterval: "5s"},
		{Type: "stub", Enabled: false, SnapshotInterval: "5s"},
		{Type: "stub", Enabled: true, SnapshotInterval: "never"},
		{Type: "broken", Enabled: true, SnapshotInterval: "5s"},
	}}

	writers, err := Create(cfg)
	require.NoError(t, err)
	require.Len(t, writers, 1)
	assert.Equal(t, 5*time.Second, writers[0].GetInterval())
}

func TestCreate_UnknownType(t *testing.T) {
	cfg := &config.Config{Writers: []config.WriterDef{{Type: "nope", Enabled: true, SnapshotInterval: "1s"}}}
	_, err := Create(cfg)
	assert.Error(t, err)
}

func TestRegisterWriter_Duplicate(t *testing.T) {
	assert.Panics(t, func() {
		RegisterWriter("stub", nil)
	})
}
