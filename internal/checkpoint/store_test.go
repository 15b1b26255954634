package checkpoint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"DrawSpectra/internal/engine/frequency"
	"DrawSpectra/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleList() model.TopList {
	return model.TopList{
		{Draw: model.Draw{3, 7, 12, 29, 44, 2, 9}, Count: 4},
		{Draw: model.Draw{1, 2, 3, 4, 5, 1, 2}, Count: 3},
		{Draw: model.Draw{10, 20, 30, 40, 50, 10, 9}, Count: 1},
	}
}

func TestStore_SaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "top_combinations.txt")
	store := NewStore(path)

	require.NoError(t, store.Save(sampleList()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "3 7 12 29 44 2 9\n1 2 3 4 5 1 2\n10 20 30 40 50 10 9\n", string(data))
}

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "cp.txt"))
	full := sampleList()

	for n := 0; n <= len(full); n++ {
		list := full[:n]
		require.NoError(t, store.Save(list))
		draws, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, list.Draws(), append([]model.Draw{}, draws...))
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cp.txt")
	store := NewStore(path)

	require.NoError(t, store.Save(sampleList()))
	require.NoError(t, store.Save(sampleList()[:1]))

	draws, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []model.Draw{{3, 7, 12, 29, 44, 2, 9}}, draws)
}

func TestStore_SaveFailure(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing-dir", "cp.txt"))
	assert.Error(t, store.Save(sampleList()))
}

func TestStore_LoadSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cp.txt")
	content := "1 2 3 4 5 6\n" +
		"1 2 x 4 5 6 7\n" +
		"3 7 12 29 44 2 9\n" +
		"1 2 3 4 5 6 7 8\n" +
		"1 2 3 4 5 6 256\n" +
		"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	draws, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, []model.Draw{{3, 7, 12, 29, 44, 2, 9}}, draws)
}

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.txt"))
	assert.False(t, store.Exists())

	_, err := store.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoCheckpoint))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestStore_Replay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cp.txt")
	content := "3 7 12 29 44 2 9\n3 7 12 29 44 2 9\nbroken line\n1 2 3 4 5 1 2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m := frequency.New(8)
	n, err := NewStore(path).Replay(m)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.EqualValues(t, 2, m.Count(model.Draw{3, 7, 12, 29, 44, 2, 9}))
	assert.EqualValues(t, 1, m.Count(model.Draw{1, 2, 3, 4, 5, 1, 2}))
	assert.EqualValues(t, 3, m.Total())
}

func TestStore_ReplayColdStart(t *testing.T) {
	m := frequency.New(8)
	n, err := NewStore(filepath.Join(t.TempDir(), "absent.txt")).Replay(m)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, m.Total())
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		ok   bool
		want model.Draw
	}{
		{"3 7 12 29 44 2 9", true, model.Draw{3, 7, 12, 29, 44, 2, 9}},
		{"  0\t255 1 1 1 1 1 ", true, model.Draw{0, 255, 1, 1, 1, 1, 1}},
		{"1 2 3 4 5 6", false, model.Draw{}},
		{"1 2 3 4 5 6 -1", false, model.Draw{}},
		{"1 2 3 4 5 6 +1", false, model.Draw{}},
		{"1 2 3 4 5 6 300", false, model.Draw{}},
		{"", false, model.Draw{}},
	}
	for _, tt := range tests {
		got, ok := ParseLine(tt.line)
		assert.Equalf(t, tt.ok, ok, "line %q", tt.line)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}
