// Command viterbi224-demo drives pkg/viterbi end-to-end against a
// synthetic bitstream produced by pkg/refenc, reporting progress through
// the same logger/metrics/store/dashboard stack a long batch decode would
// use. It never reads demodulator captures from disk or accepts a decode
// target on the command line; its only input is the pattern it manufactures
// itself, so it does not reintroduce the file I/O harness the core
// explicitly excludes.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dbehnke/viterbi224/pkg/config"
	"github.com/dbehnke/viterbi224/pkg/logger"
	"github.com/dbehnke/viterbi224/pkg/metrics"
	"github.com/dbehnke/viterbi224/pkg/refenc"
	"github.com/dbehnke/viterbi224/pkg/store"
	"github.com/dbehnke/viterbi224/pkg/viterbi"
	"github.com/dbehnke/viterbi224/pkg/web"
)

var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

func main() {
	configFile := flag.String("config", "", "Path to profile configuration file")
	profileName := flag.String("profile", "", "Named profile to decode with (default: config's default)")
	dataBits := flag.Int("bits", 1000, "Number of synthetic data bits to encode and decode")
	noisePercent := flag.Int("noise", 2, "Percent of symbols to corrupt with erasure-like noise")
	dashboard := flag.Bool("dashboard", false, "Enable the status dashboard (health + websocket feed)")
	dashboardPort := flag.Int("dashboard-port", 8080, "Status dashboard port")
	prometheus := flag.Bool("prometheus", false, "Enable the Prometheus metrics endpoint")
	prometheusPort := flag.Int("prometheus-port", 9090, "Prometheus metrics port")
	dbPath := flag.String("db", "", "Session ledger SQLite path (empty disables the ledger)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("viterbi224-demo %s\n", version)
		fmt.Printf("Git Commit: %s\n", gitCommit)
		fmt.Printf("Built: %s\n", buildTime)
		os.Exit(0)
	}

	log := logger.New(logger.Config{Level: "info"})
	log.Info("Starting viterbi224-demo",
		logger.String("version", version),
		logger.String("commit", gitCommit))

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("Failed to load configuration", logger.Err(err))
		os.Exit(1)
	}

	profile, err := cfg.Resolve(*profileName)
	if err != nil {
		log.Error("Failed to resolve profile", logger.Err(err))
		os.Exit(1)
	}

	// Flush with K-1 zeros, then pad to a whole number of output bytes so
	// the full padded length can be chained back in one call.
	totalSteps := *dataBits + viterbi.K - 1
	if r := totalSteps % 8; r != 0 {
		totalSteps += 8 - r
	}
	if totalSteps > profile.Len {
		log.Error("Requested bit count exceeds this profile's decision buffer depth",
			logger.Int("bits_plus_flush", totalSteps),
			logger.Int("profile_len", profile.Len))
		os.Exit(1)
	}

	decoder, err := viterbi.New(profile)
	if err != nil {
		log.Error("Failed to create decoder", logger.Err(err))
		os.Exit(1)
	}

	metricBytes := uint64(2 * viterbi.S * 2)
	decisionBytes := uint64(profile.Len) * uint64(viterbi.S) / 8
	log.Info("Decoder allocated",
		logger.String("profile", profile.Name),
		logger.String("metric_arenas", humanize.Bytes(metricBytes)),
		logger.String("decision_buffer", humanize.Bytes(decisionBytes)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	collector := metrics.NewCollector()

	var sessionStore *store.Store
	var recorder *store.SessionRecorder
	if *dbPath != "" {
		sessionStore, err = store.New(store.Config{Path: *dbPath}, log.WithComponent("store"))
		if err != nil {
			log.Error("Failed to open session ledger", logger.Err(err))
			os.Exit(1)
		}
		defer sessionStore.Close()
		recorder = store.NewSessionRecorder(sessionStore)
	}

	if *prometheus {
		promServer := metrics.NewPrometheusServer(
			metrics.PrometheusConfig{Enabled: true, Port: *prometheusPort, Path: "/metrics"},
			collector,
			log.WithComponent("metrics"),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := promServer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Prometheus server error", logger.Err(err))
			}
		}()
	}

	var statusServer *web.StatusServer
	if *dashboard {
		statusServer = web.NewStatusServer(
			web.StatusConfig{
				Enabled: true,
				Host:    "0.0.0.0",
				Port:    *dashboardPort,
				Version: version,
				Commit:  gitCommit,
			},
			log.WithComponent("web"),
			decoder,
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := statusServer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Status dashboard error", logger.Err(err))
			}
		}()
	}

	sessionID := fmt.Sprintf("demo-%d", time.Now().UnixNano())
	collector.DecoderStarted(sessionID)
	defer collector.DecoderFinished(sessionID)

	started := time.Now()
	bits := syntheticBits(*dataBits, *profileName)
	padded := make([]uint8, totalSteps)
	copy(padded, bits)

	enc := refenc.New(profile)
	symbols := enc.EncodeBits(padded)
	corrupt(symbols, *noisePercent)

	steps := len(symbols) / 2
	renorms, err := decoder.UpdateBlock(symbols, steps)
	if err != nil {
		log.Error("UpdateBlock failed", logger.Err(err))
		os.Exit(1)
	}
	collector.BlockProcessed(steps, renorms)

	min, _ := decoder.MinMetric()
	max, _ := decoder.MaxMetric()
	collector.ObserveMetrics(min, max)

	decoded := make([]byte, totalSteps/8)
	nbits := totalSteps
	if err := decoder.Chainback(decoded, nbits, 0); err != nil {
		log.Error("Chainback failed", logger.Err(err))
		os.Exit(1)
	}
	collector.ChainbackPerformed(nbits)

	mismatches := countMismatches(bits, decoded)
	duration := time.Since(started)

	log.Info("Decode complete",
		logger.Int("data_bits", len(bits)),
		logger.Int("renormalizations", renorms),
		logger.Int("bit_errors", mismatches),
		logger.Int64("min_metric", min),
		logger.Int64("max_metric", max))

	if recorder != nil {
		if _, err := recorder.RecordSession(profile.Name, int64(steps), int64(renorms), int64(nbits), duration); err != nil {
			log.Warn("Failed to record session", logger.Err(err))
		}
	}

	if !*dashboard && !*prometheus {
		cancel()
	} else {
		log.Info("Decode finished; dashboard/metrics server still running, press Ctrl+C to exit")
		select {
		case sig := <-sigChan:
			log.Info("Received shutdown signal", logger.String("signal", sig.String()))
		case <-ctx.Done():
		}
		cancel()
	}

	wg.Wait()
	log.Info("viterbi224-demo stopped")

	if mismatches > 0 {
		os.Exit(1)
	}
}

// syntheticBits manufactures a deterministic, reproducible data pattern so
// repeated demo runs with the same profile name are directly comparable.
func syntheticBits(n int, seedLabel string) []uint8 {
	var seed int64
	for _, c := range seedLabel {
		seed = seed*31 + int64(c)
	}
	rng := rand.New(rand.NewSource(seed + int64(n)))
	bits := make([]uint8, n)
	for i := range bits {
		bits[i] = uint8(rng.Intn(2))
	}
	return bits
}

// corrupt replaces roughly percent% of symbols with the maximum-uncertainty
// erasure value (128), simulating a noisy channel.
func corrupt(symbols []uint8, percent int) {
	if percent <= 0 {
		return
	}
	every := 100 / percent
	if every < 1 {
		every = 1
	}
	for i := range symbols {
		if i%every == 0 {
			symbols[i] = 128
		}
	}
}

// countMismatches compares the leading decoded bits against the original
// data bits. Chainback packs output bytes MSB-first: the earliest bit of
// each byte sits in bit 7.
func countMismatches(want []uint8, got []byte) int {
	mismatches := 0
	for i, w := range want {
		bit := (got[i/8] >> uint(7-i%8)) & 1
		if bit != w&1 {
			mismatches++
		}
	}
	return mismatches
}
