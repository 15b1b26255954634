package publish

import (
	"testing"
	"time"

	"DrawSpectra/internal/model"
	"DrawSpectra/internal/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireFormat(t *testing.T) {
	r := status.Report{
		RunID:     "run",
		Iteration: 10,
		Top:       model.TopList{{Draw: model.Draw{3, 7, 12, 29, 44, 2, 9}, Count: 2}},
		Numbers:   []model.NumberCount{{Number: 7, Count: 2}},
		Distinct:  1,
		Total:     2,
		Timestamp: time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC),
	}
	data, err := Marshal(r)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestUnmarshal_Garbage(t *testing.T) {
	_, err := Unmarshal([]byte{0xff, 0xff, 0xff})
	assert.Error(t, err)
}
