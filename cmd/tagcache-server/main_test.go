package main

import (
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/huykn/tagged-cache/config"
)

func TestRunReturnsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	defer ln.Close()

	cfg := config.Default()
	cfg.Server.Addr = ln.Addr().String()

	if err := run(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Fatal("Expected an error for an address already in use")
	}
}

func TestRunReturnsCacheError(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.BatchSize = 0

	if err := run(cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Fatal("Expected an error for invalid cache options")
	}
}
