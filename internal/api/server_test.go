package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"DrawSpectra/internal/config"
	"DrawSpectra/internal/metrics"
	"DrawSpectra/internal/model"
	"DrawSpectra/internal/query"
	"DrawSpectra/internal/status"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

func sampleReport() status.Report {
	return status.Report{
		RunID:     "run-api",
		Iteration: 1234,
		Top: model.TopList{
			{Draw: model.Draw{3, 7, 12, 29, 44, 2, 9}, Count: 2},
			{Draw: model.Draw{1, 2, 3, 4, 5, 1, 2}, Count: 1},
		},
		Numbers:   []model.NumberCount{{Number: 2, Count: 9}, {Number: 3, Count: 7}, {Number: 1, Count: 4}},
		Distinct:  2,
		Total:     3,
		Timestamp: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
}

func get(t *testing.T, h http.Handler, url string) (int, []byte) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, body
}

func TestServer_NoReportYet(t *testing.T) {
	s := NewServer(config.APIConfig{}, status.NewBoard(), nil, nil)
	code, _ := get(t, s.Handler(), "/api/v1/topk")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	code, _ = get(t, s.Handler(), "/api/v1/numbers")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestServer_TopK(t *testing.T) {
	board := status.NewBoard()
	board.Publish(sampleReport())
	s := NewServer(config.APIConfig{}, board, nil, nil)

	code, body := get(t, s.Handler(), "/api/v1/topk")
	require.Equal(t, http.StatusOK, code)

	var pb structpb.Struct
	require.NoError(t, protojson.Unmarshal(body, &pb))
	got, err := status.FromProto(&pb)
	require.NoError(t, err)
	assert.Equal(t, sampleReport().Top, got.Top)
	assert.EqualValues(t, 1234, got.Iteration)
}

func TestServer_Numbers(t *testing.T) {
	board := status.NewBoard()
	board.Publish(sampleReport())
	h := NewServer(config.APIConfig{}, board, nil, nil).Handler()

	code, body := get(t, h, "/api/v1/numbers?limit=2")
	require.Equal(t, http.StatusOK, code)
	var pb structpb.Struct
	require.NoError(t, protojson.Unmarshal(body, &pb))
	numbers := pb.GetFields()["numbers"].GetListValue().GetValues()
	require.Len(t, numbers, 2)
	assert.EqualValues(t, 2, numbers[0].GetStructValue().GetFields()["number"].GetNumberValue())

	code, body = get(t, h, "/api/v1/numbers?limit=100")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, protojson.Unmarshal(body, &pb))
	assert.Len(t, pb.GetFields()["numbers"].GetListValue().GetValues(), 3)

	code, _ = get(t, h, "/api/v1/numbers?limit=-1")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewPrometheus(reg, "drawspectra")
	collector.IncCheckpointSaves()

	h := NewServer(config.APIConfig{}, status.NewBoard(), reg, nil).Handler()
	code, body := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "drawspectra_checkpoint_saves_total")

	code, _ = get(t, NewServer(config.APIConfig{}, status.NewBoard(), nil, nil).Handler(), "/metrics")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestServer_GRPCHealth(t *testing.T) {
	s := NewServer(config.APIConfig{Enabled: true, GRPCListenAddr: "127.0.0.1:0"}, status.NewBoard(), nil, nil)
	require.NoError(t, s.Start())
	defer s.Stop(context.Background())

	conn, err := grpc.NewClient(s.GRPCAddr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

type stubQuerier struct {
	runID string
	limit int
}

func (q *stubQuerier) TopHistory(_ context.Context, runID string, limit int) ([]query.Point, error) {
	q.runID, q.limit = runID, limit
	return []query.Point{{
		Timestamp: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		RunID:     runID,
		Iteration: 10,
		Rank:      1,
		Draw:      "3 7 12 29 44 2 9",
		Count:     2,
	}}, nil
}

func (q *stubQuerier) Close() error { return nil }

func TestServer_History(t *testing.T) {
	q := &stubQuerier{}
	h := NewServer(config.APIConfig{}, status.NewBoard(), nil, q).Handler()

	code, body := get(t, h, "/api/v1/history?run_id=a&limit=7")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "a", q.runID)
	assert.Equal(t, 7, q.limit)

	var pb structpb.Struct
	require.NoError(t, protojson.Unmarshal(body, &pb))
	points := pb.GetFields()["points"].GetListValue().GetValues()
	require.Len(t, points, 1)
	assert.Equal(t, "3 7 12 29 44 2 9", points[0].GetStructValue().GetFields()["draw"].GetStringValue())

	code, _ = get(t, h, "/api/v1/history?limit=0")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = get(t, NewServer(config.APIConfig{}, status.NewBoard(), nil, nil).Handler(), "/api/v1/history")
	assert.Equal(t, http.StatusNotFound, code)
}
