package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dbehnke/viterbi224/pkg/logger"
)

// PrometheusConfig holds Prometheus server configuration.
type PrometheusConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// PrometheusHandler handles Prometheus metrics HTTP requests.
type PrometheusHandler struct {
	collector *Collector
}

// NewPrometheusHandler creates a new Prometheus handler.
func NewPrometheusHandler(collector *Collector) *PrometheusHandler {
	return &PrometheusHandler{
		collector: collector,
	}
}

// ServeHTTP handles HTTP requests for metrics.
func (h *PrometheusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	var output strings.Builder

	output.WriteString("# HELP viterbi224_decoders_started_total Total decoder sessions started\n")
	output.WriteString("# TYPE viterbi224_decoders_started_total counter\n")
	output.WriteString(fmt.Sprintf("viterbi224_decoders_started_total %d\n", h.collector.GetDecodersStarted()))

	output.WriteString("# HELP viterbi224_decoders_active Number of currently active decoder sessions\n")
	output.WriteString("# TYPE viterbi224_decoders_active gauge\n")
	output.WriteString(fmt.Sprintf("viterbi224_decoders_active %d\n", h.collector.GetActiveDecoders()))

	output.WriteString("# HELP viterbi224_blocks_processed_total Total UpdateBlock calls\n")
	output.WriteString("# TYPE viterbi224_blocks_processed_total counter\n")
	output.WriteString(fmt.Sprintf("viterbi224_blocks_processed_total %d\n", h.collector.GetBlocksProcessed()))

	output.WriteString("# HELP viterbi224_steps_processed_total Total symbol-pair steps processed\n")
	output.WriteString("# TYPE viterbi224_steps_processed_total counter\n")
	output.WriteString(fmt.Sprintf("viterbi224_steps_processed_total %d\n", h.collector.GetStepsProcessed()))

	output.WriteString("# HELP viterbi224_renormalizations_total Total path-metric renormalizations\n")
	output.WriteString("# TYPE viterbi224_renormalizations_total counter\n")
	output.WriteString(fmt.Sprintf("viterbi224_renormalizations_total %d\n", h.collector.GetRenormalizations()))

	output.WriteString("# HELP viterbi224_chainbacks_total Total traceback calls\n")
	output.WriteString("# TYPE viterbi224_chainbacks_total counter\n")
	output.WriteString(fmt.Sprintf("viterbi224_chainbacks_total %d\n", h.collector.GetChainbacksPerformed()))

	output.WriteString("# HELP viterbi224_bits_decoded_total Total output bits produced by traceback\n")
	output.WriteString("# TYPE viterbi224_bits_decoded_total counter\n")
	output.WriteString(fmt.Sprintf("viterbi224_bits_decoded_total %d\n", h.collector.GetBitsDecoded()))

	output.WriteString("# HELP viterbi224_min_metric Most recently observed minimum path metric\n")
	output.WriteString("# TYPE viterbi224_min_metric gauge\n")
	output.WriteString(fmt.Sprintf("viterbi224_min_metric %d\n", h.collector.GetLastMinMetric()))

	output.WriteString("# HELP viterbi224_max_metric Most recently observed maximum path metric\n")
	output.WriteString("# TYPE viterbi224_max_metric gauge\n")
	output.WriteString(fmt.Sprintf("viterbi224_max_metric %d\n", h.collector.GetLastMaxMetric()))

	w.Write([]byte(output.String()))
}

// PrometheusServer is an HTTP server for Prometheus metrics.
type PrometheusServer struct {
	config    PrometheusConfig
	collector *Collector
	log       *logger.Logger
	server    *http.Server
}

// NewPrometheusServer creates a new Prometheus metrics server.
func NewPrometheusServer(config PrometheusConfig, collector *Collector, log *logger.Logger) *PrometheusServer {
	if log == nil {
		log = logger.New(logger.Config{Level: "info"})
	}

	return &PrometheusServer{
		config:    config,
		collector: collector,
		log:       log.WithComponent("metrics"),
	}
}

// Start starts the Prometheus metrics server.
func (s *PrometheusServer) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Info("Prometheus metrics server disabled")
		return nil
	}

	handler := NewPrometheusHandler(s.collector)
	mux := http.NewServeMux()
	mux.Handle(s.config.Path, handler)

	// Use a listener to get the actual port (useful for testing with port 0)
	addr := fmt.Sprintf(":%d", s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	actualPort := listener.Addr().(*net.TCPAddr).Port

	s.server = &http.Server{
		Handler: mux,
	}

	s.log.Info("Starting Prometheus metrics server",
		logger.Int("port", actualPort),
		logger.String("path", s.config.Path))

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Shutting down Prometheus metrics server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown error: %w", err)
		}
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

// Stop stops the Prometheus metrics server.
func (s *PrometheusServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}
}
