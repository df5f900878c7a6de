package main

import (
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/mahasiswa-app/mhs/internal/api"
	"github.com/mahasiswa-app/mhs/internal/config"
	"github.com/mahasiswa-app/mhs/internal/logging"
)

// freePort returns a port nothing is listening on.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

// loadServeConfig writes a config file with web.port set and loads it into
// the command globals.
func loadServeConfig(t *testing.T, dir string, port int) {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("server_url: http://127.0.0.1:1\nweb:\n  port: %d\n", port)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	loader := config.NewLoader()
	c, err := loader.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	prevLoader, prevCfg, prevSink := cfgLoader, cfg, logSink
	cfgLoader, cfg, logSink = loader, c, logging.Open(logging.Options{Quiet: true})
	t.Cleanup(func() {
		logSink.Close()
		cfgLoader, cfg, logSink = prevLoader, prevCfg, prevSink
	})
}

func testClient(t *testing.T) *api.Client {
	t.Helper()
	client, err := api.New(&api.Config{BaseURL: "http://127.0.0.1:1", Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatalf("api.New failed: %v", err)
	}
	return client
}

func TestStartServe(t *testing.T) {
	port := freePort(t)
	loadServeConfig(t, t.TempDir(), port)

	server, stop, err := startServe(serveCmd, testClient(t))
	if err != nil {
		t.Fatalf("startServe failed: %v", err)
	}

	resp, err := http.Get(server.URL() + "health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	if err := stop(); err != nil {
		t.Errorf("stop failed: %v", err)
	}
}

func TestStartServeWatchFailureLeavesNothingRunning(t *testing.T) {
	port := freePort(t)
	dir := filepath.Join(t.TempDir(), "conf")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	loadServeConfig(t, dir, port)

	// The watched directory is gone, so the watcher cannot start.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("Failed to remove dir: %v", err)
	}

	if _, _, err := startServe(serveCmd, testClient(t)); err == nil {
		t.Fatal("Expected startServe to fail")
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		t.Fatalf("Port %d still in use after failed start: %v", port, err)
	}
	ln.Close()
}
