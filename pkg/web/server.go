package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dbehnke/viterbi224/pkg/logger"
	"github.com/dbehnke/viterbi224/pkg/viterbi"
)

// StatusConfig controls whether and where the status dashboard listens, and
// what build identity the health check reports.
type StatusConfig struct {
	Enabled bool
	Host    string
	Port    int
	Version string
	Commit  string
}

// snapshotProvider is anything a StatusServer can poll for progress. A
// *viterbi.Decoder satisfies this directly.
type snapshotProvider interface {
	Snapshot() viterbi.Snapshot
}

// StatusServer serves a health check and a WebSocket feed that periodically
// pushes a decoder's progress to connected clients. It never reads decoder
// input from disk or a socket; it is purely an outbound status feed.
type StatusServer struct {
	config   StatusConfig
	logger   *logger.Logger
	server   *http.Server
	feed     *SnapshotFeed
	provider snapshotProvider
	interval time.Duration
	addr     string
	mu       sync.RWMutex
}

// NewStatusServer creates a status server that polls provider for progress.
// A nil provider is allowed; the server still serves /health and /ws, it
// just never has anything to publish.
func NewStatusServer(cfg StatusConfig, log *logger.Logger, provider snapshotProvider) *StatusServer {
	return &StatusServer{
		config:   cfg,
		logger:   log,
		feed:     NewSnapshotFeed(log),
		provider: provider,
		interval: time.Second,
	}
}

// WithInterval overrides the default one-second snapshot push interval.
func (s *StatusServer) WithInterval(d time.Duration) *StatusServer {
	s.interval = d
	return s
}

// Start runs the HTTP server until ctx is canceled.
func (s *StatusServer) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Status server is disabled")
		return nil
	}

	go s.pushLoop(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/ws", s.feed.Handler())

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.mu.Unlock()

	s.logger.Info("Starting status server", logger.String("address", s.addr))

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down status server")
		s.feed.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

// pushLoop periodically polls the provider and publishes its progress.
func (s *StatusServer) pushLoop(ctx context.Context) {
	if s.provider == nil {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := s.provider.Snapshot()
			s.feed.Publish(DecoderSnapshot{
				StepsProcessed: snap.StepsProcessed,
				Renormals:      snap.Renormals,
				Slot:           snap.Slot,
				MinMetric:      snap.MinMetric,
				MaxMetric:      snap.MaxMetric,
				Spread:         snap.MaxMetric - snap.MinMetric,
			})
		}
	}
}

// GetAddr returns the address the server is listening on.
func (s *StatusServer) GetAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Feed returns the snapshot feed, for callers that want to publish
// snapshots directly instead of waiting on the poll loop.
func (s *StatusServer) Feed() *SnapshotFeed {
	return s.feed
}

func (s *StatusServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "viterbi224",
		"version": s.config.Version,
		"commit":  s.config.Commit,
		"time":    time.Now().Unix(),
	}); err != nil {
		s.logger.Warn("Failed to encode health response", logger.Err(err))
	}
}
