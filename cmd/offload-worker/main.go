// Command offload-worker runs one non-zero rank of a distributed
// rendering device: it bootstraps the fabric, then blocks dispatching
// broadcast commands from the host until shutdown or a fatal protocol
// error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/offlayer/dispatch/config"
	"github.com/offlayer/dispatch/device"
	"github.com/offlayer/dispatch/internal/logging"
	"github.com/offlayer/dispatch/metrics"
)

var (
	configPath  = flag.String("config", "", "Path to a YAML topology file (optional)")
	rank        = flag.Int("rank", 1, "This worker's rank (overrides config)")
	size        = flag.Int("size", 0, "Total group size including the host (overrides config)")
	mode        = flag.String("mode", "", "Fabric mode: collocated, listen, connect, launch (overrides config)")
	host        = flag.String("host", "", "Host address to dial/listen on (overrides config)")
	port        = flag.Int("port", 0, "Host port to dial/listen on (overrides config)")
	metricsAddr = flag.String("metrics-addr", "", "Address to serve /metrics on, empty to disable")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "offload-worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		return fmt.Errorf("resolve config: %w", err)
	}
	applyOverrides(&cfg)

	runID := uuid.New().String()
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	})).With("run_id", runID, "rank", cfg.Rank))
	log := logging.Logger()

	reg := metrics.New()
	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, reg)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dev, err := device.Init(ctx, cfg, device.WithMetrics(reg))
	if err != nil {
		return fmt.Errorf("init device: %w", err)
	}
	log.Info("worker ready")

	if err := dev.WaitLoop(); err != nil {
		return fmt.Errorf("dispatch loop: %w", err)
	}
	log.Info("dispatch loop exited cleanly")
	return nil
}

func applyOverrides(cfg *config.Config) {
	cfg.Rank = *rank
	if *size > 0 {
		cfg.Size = *size
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *host != "" {
		cfg.Host = *host
	}
	if *port > 0 {
		cfg.Port = *port
	}
}

func serveMetrics(addr string, reg *metrics.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	_ = http.ListenAndServe(addr, mux)
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn
	}
	return level
}
