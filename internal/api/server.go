package api

import (
	"DrawSpectra/internal/config"
	"DrawSpectra/internal/model"
	"DrawSpectra/internal/query"
	"DrawSpectra/internal/status"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server exposes the latest simulation report over HTTP and a gRPC health service.
type Server struct {
	cfg      config.APIConfig
	board    *status.Board
	gatherer prometheus.Gatherer
	querier  query.Querier

	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
	grpcAddr   net.Addr
}

// NewServer creates an API server. A nil gatherer disables /metrics and a nil
// querier disables /api/v1/history.
func NewServer(cfg config.APIConfig, board *status.Board, gatherer prometheus.Gatherer, querier query.Querier) *Server {
	s := &Server{
		cfg:      cfg,
		board:    board,
		gatherer: gatherer,
		querier:  querier,
		health:   health.NewServer(),
	}
	s.httpServer = &http.Server{Addr: cfg.ListenAddr, Handler: s.Handler()}
	s.grpcServer = grpc.NewServer()
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/topk", s.topKHandler).Methods("GET")
	r.HandleFunc("/api/v1/numbers", s.numbersHandler).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")
	if s.querier != nil {
		r.HandleFunc("/api/v1/history", s.historyHandler).Methods("GET")
	}
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Start listens on the configured addresses. Empty addresses are skipped.
func (s *Server) Start() error {
	if s.cfg.GRPCListenAddr != "" {
		lis, err := net.Listen("tcp", s.cfg.GRPCListenAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", s.cfg.GRPCListenAddr, err)
		}
		s.grpcAddr = lis.Addr()
		s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		go func() {
			log.Printf("gRPC health server starting on %s", lis.Addr())
			if err := s.grpcServer.Serve(lis); err != nil {
				log.Printf("gRPC server error: %v", err)
			}
		}()
	}

	if s.cfg.ListenAddr != "" {
		lis, err := net.Listen("tcp", s.cfg.ListenAddr)
		if err != nil {
			s.grpcServer.Stop()
			return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr, err)
		}
		go func() {
			log.Printf("API server starting on %s", lis.Addr())
			if err := s.httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("API server error: %v", err)
			}
		}()
	}
	return nil
}

// GRPCAddr returns the address the gRPC server listens on, nil before Start.
func (s *Server) GRPCAddr() net.Addr {
	return s.grpcAddr
}

// Stop shuts both servers down.
func (s *Server) Stop(ctx context.Context) error {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) topKHandler(w http.ResponseWriter, _ *http.Request) {
	report, ok := s.board.Latest()
	if !ok {
		http.Error(w, "no report published yet", http.StatusServiceUnavailable)
		return
	}
	pb, err := status.ToProto(report)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to encode report: %v", err), http.StatusInternalServerError)
		return
	}
	writeProto(w, pb)
}

// numbersHandler serves the per-number counters ranked by count. The optional
// limit parameter keeps only the first entries.
func (s *Server) numbersHandler(w http.ResponseWriter, r *http.Request) {
	report, ok := s.board.Latest()
	if !ok {
		http.Error(w, "no report published yet", http.StatusServiceUnavailable)
		return
	}

	numbers := report.Numbers
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			http.Error(w, fmt.Sprintf("invalid limit %q", raw), http.StatusBadRequest)
			return
		}
		numbers = numbers[:min(limit, len(numbers))]
	}

	pb, err := structpb.NewStruct(map[string]any{
		"iteration": float64(report.Iteration),
		"numbers": lo.Map(numbers, func(nc model.NumberCount, _ int) any {
			return map[string]any{"number": float64(nc.Number), "count": float64(nc.Count)}
		}),
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to encode numbers: %v", err), http.StatusInternalServerError)
		return
	}
	writeProto(w, pb)
}

// historyHandler serves stored top-k snapshots, optionally filtered by run_id.
func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	limit := query.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, fmt.Sprintf("invalid limit %q", raw), http.StatusBadRequest)
			return
		}
		limit = n
	}

	points, err := s.querier.TopHistory(r.Context(), r.URL.Query().Get("run_id"), limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query history: %v", err), http.StatusInternalServerError)
		return
	}

	pb, err := structpb.NewStruct(map[string]any{
		"points": lo.Map(points, func(p query.Point, _ int) any {
			return map[string]any{
				"timestamp": p.Timestamp.UTC().Format(time.RFC3339),
				"run_id":    p.RunID,
				"iteration": float64(p.Iteration),
				"rank":      float64(p.Rank),
				"draw":      p.Draw,
				"count":     float64(p.Count),
			}
		}),
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to encode history: %v", err), http.StatusInternalServerError)
		return
	}
	writeProto(w, pb)
}

func writeProto(w http.ResponseWriter, m proto.Message) {
	jsonBytes, err := protojson.Marshal(m)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonBytes)
}
