// Package server exposes the cache and trader state over HTTP. The
// surface is read-only: three GET endpoints, JSON out.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/courtline/courtline/internal/cache"
	"github.com/courtline/courtline/internal/model"
	"github.com/courtline/courtline/internal/trader"
)

// SnapshotSource is the read side of the market cache.
type SnapshotSource interface {
	Get() *cache.Snapshot
	Status() cache.Status
}

// OrderSource exposes the trader's order history. May be nil when the
// trader is disabled.
type OrderSource interface {
	Records() []trader.OrderRecord
}

// marketsResponse is the GET /markets payload: the snapshot timestamp
// alongside a markets container with the instruments and their counts.
type marketsResponse struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Markets     marketsBody `json:"markets"`
}

type marketsBody struct {
	Instruments   []model.Instrument `json:"instruments"`
	TotalCount    int                `json:"total_count"`
	EnrichedCount int                `json:"enriched_count"`
	Rejects       map[string]int     `json:"rejects,omitempty"`
}

// NewHandler builds the HTTP mux.
func NewHandler(source SnapshotSource, orders OrderSource, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /markets", func(w http.ResponseWriter, r *http.Request) {
		snap := source.Get()
		if snap == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "no snapshot yet",
			})
			return
		}
		instruments := snap.Instruments
		if instruments == nil {
			instruments = []model.Instrument{}
		}
		writeJSON(w, http.StatusOK, marketsResponse{
			GeneratedAt: snap.GeneratedAt,
			Markets: marketsBody{
				Instruments:   instruments,
				TotalCount:    snap.TotalCount,
				EnrichedCount: snap.EnrichedCount,
				Rejects:       snap.Rejects,
			},
		})
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		st := source.Status()
		code := http.StatusOK
		if st.Stale {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, st)
	})

	mux.HandleFunc("GET /orders", func(w http.ResponseWriter, r *http.Request) {
		recs := []trader.OrderRecord{}
		if orders != nil {
			recs = orders.Records()
		}
		writeJSON(w, http.StatusOK, recs)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// Server wraps http.Server with the lifecycle shape the rest of the
// service uses.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

func New(addr string, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
