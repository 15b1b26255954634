package manager

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"DrawSpectra/internal/config"
	"DrawSpectra/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Simulation.SaveFrequency = 50
	cfg.Simulation.NumShards = 16
	cfg.Simulation.NumWorkers = 2
	cfg.Simulation.Seed = 3
	cfg.Checkpoint.Path = filepath.Join(dir, "top_combinations.txt")
	cfg.Writers = []config.WriterDef{{
		Type:             "text",
		Enabled:          true,
		SnapshotInterval: "1h",
		Text:             config.TextWriterConfig{RootPath: filepath.Join(dir, "snapshots")},
	}}
	return cfg
}

func TestManager_RunAndStop(t *testing.T) {
	cfg := testConfig(t)
	m, err := NewManager(cfg, nil)
	require.NoError(t, err)
	_, err = uuid.Parse(m.RunID())
	require.NoError(t, err)

	require.NoError(t, m.Start())
	require.Eventually(t, func() bool {
		r, ok := m.Board().Latest()
		return ok && r.Iteration > 100
	}, 10*time.Second, time.Millisecond)
	m.Stop()
	m.Stop()

	r, ok := m.Board().Latest()
	require.True(t, ok)
	assert.Equal(t, m.RunID(), r.RunID)
	assert.LessOrEqual(t, len(r.Top), cfg.Simulation.TopK)

	_, err = os.Stat(cfg.Checkpoint.Path)
	require.NoError(t, err)

	// The final snapshot on shutdown lands in one timestamped directory.
	entries, err := os.ReadDir(cfg.Writers[0].Text.RootPath)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	_, err = os.Stat(filepath.Join(cfg.Writers[0].Text.RootPath, entries[0].Name(), "top_draws.txt"))
	assert.NoError(t, err)
}

func TestManager_ResumesFromCheckpoint(t *testing.T) {
	cfg := testConfig(t)
	cfg.Writers = nil
	draw := model.Draw{3, 7, 12, 29, 44, 2, 9}
	require.NoError(t, os.WriteFile(cfg.Checkpoint.Path, []byte(draw.String()+"\n"), 0o644))

	m, err := NewManager(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, m.Start())
	m.Stop()

	r, ok := m.Board().Latest()
	require.True(t, ok)
	assert.GreaterOrEqual(t, r.Iteration, cfg.Simulation.SaveFrequency)
	assert.GreaterOrEqual(t, r.Total, uint64(1))
}

func TestManager_UnknownWriterType(t *testing.T) {
	cfg := testConfig(t)
	cfg.Writers[0].Type = "parquet"
	_, err := NewManager(cfg, nil)
	assert.Error(t, err)
}

func TestManager_PublisherFailureIsNotFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Writers = nil
	cfg.Publisher.Enabled = true
	cfg.Publisher.NATSURL = "nats://127.0.0.1:1"

	m, err := NewManager(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, m.publisher)
}
