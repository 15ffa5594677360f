package web

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dbehnke/viterbi224/pkg/logger"
	"github.com/dbehnke/viterbi224/pkg/viterbi"
)

// fakeProvider supplies a fixed snapshot, standing in for a live *viterbi.Decoder.
type fakeProvider struct {
	snap viterbi.Snapshot
}

func (f *fakeProvider) Snapshot() viterbi.Snapshot {
	return f.snap
}

func TestNewStatusServer(t *testing.T) {
	cfg := StatusConfig{Enabled: true, Host: "localhost", Port: 8080}
	log := logger.New(logger.Config{Level: "info"})
	srv := NewStatusServer(cfg, log, nil)

	if srv == nil {
		t.Fatal("NewStatusServer returned nil")
	}
	if srv.config.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", srv.config.Port)
	}
}

func TestStatusServer_Disabled(t *testing.T) {
	cfg := StatusConfig{Enabled: false}
	log := logger.New(logger.Config{Level: "info"})
	srv := NewStatusServer(cfg, log, nil)

	if err := srv.Start(context.Background()); err != nil {
		t.Errorf("Expected nil error for disabled server, got %v", err)
	}
}

func TestStatusServer_StartStop(t *testing.T) {
	cfg := StatusConfig{Enabled: true, Host: "localhost", Port: 0}
	log := logger.New(logger.Config{Level: "info"})
	srv := NewStatusServer(cfg, log, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	err := <-errChan
	if err != nil && err != context.Canceled && err != http.ErrServerClosed {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestStatusServer_HealthEndpoint(t *testing.T) {
	cfg := StatusConfig{Enabled: true, Host: "localhost", Port: 0, Version: "1.2.3", Commit: "abc123"}
	log := logger.New(logger.Config{Level: "info"})
	srv := NewStatusServer(cfg, log, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() {
		if err := srv.Start(ctx); err != nil && err != context.Canceled && err != http.ErrServerClosed {
			t.Logf("srv.Start error: %v", err)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	addr := srv.GetAddr()
	if addr == "" {
		t.Fatal("Server address is empty")
	}

	resp, err := http.Get("http://" + addr + "/health")
	if err != nil {
		t.Fatalf("Failed to request health endpoint: %v", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Logf("resp.Body.Close error: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var health struct {
		Status  string `json:"status"`
		Version string `json:"version"`
		Commit  string `json:"commit"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("Expected status ok, got %q", health.Status)
	}
	if health.Version != "1.2.3" || health.Commit != "abc123" {
		t.Errorf("Expected configured build identity, got version=%q commit=%q", health.Version, health.Commit)
	}
}

func TestStatusServer_PushesSnapshot(t *testing.T) {
	cfg := StatusConfig{Enabled: true, Host: "localhost", Port: 0}
	log := logger.New(logger.Config{Level: "info"})
	provider := &fakeProvider{snap: viterbi.Snapshot{
		StepsProcessed: 512,
		Renormals:      1,
		Slot:           3,
		MinMetric:      -20,
		MaxMetric:      40,
	}}
	srv := NewStatusServer(cfg, log, provider).WithInterval(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	go func() {
		if err := srv.Start(ctx); err != nil && err != context.Canceled && err != http.ErrServerClosed {
			t.Logf("srv.Start error: %v", err)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	// The push loop has been publishing with no client attached; a client
	// that subscribes now receives the provider's snapshot on a later tick.
	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+srv.GetAddr()+"/ws", nil)
	if err != nil {
		t.Fatalf("failed to dial feed: %v", err)
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("no snapshot pushed: %v", err)
	}
	var got DecoderSnapshot
	if err := json.Unmarshal(payload, &got); err != nil {
		t.Fatalf("payload is not a DecoderSnapshot: %v", err)
	}
	if got.StepsProcessed != 512 || got.Slot != 3 || got.Spread != 60 {
		t.Errorf("pushed snapshot mismatch: %+v", got)
	}
}
