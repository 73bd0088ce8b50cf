// Command offload-host runs rank 0 of a distributed rendering device: it
// bootstraps the process-group fabric, accepts worker connections per the
// resolved topology, and renders a demo frame to prove the stack is wired
// end to end.
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
	"time"

	"github.com/google/uuid"

	"github.com/offlayer/dispatch/config"
	"github.com/offlayer/dispatch/device"
	"github.com/offlayer/dispatch/internal/logging"
	"github.com/offlayer/dispatch/metrics"
	"github.com/offlayer/dispatch/types"
)

var (
	configPath  = flag.String("config", "", "Path to a YAML topology file (optional)")
	size        = flag.Int("size", 0, "Total group size including this host (overrides config)")
	mode        = flag.String("mode", "", "Fabric mode: collocated, listen, connect, launch (overrides config)")
	host        = flag.String("host", "", "Listen/dial address (overrides config)")
	port        = flag.Int("port", 0, "Listen/dial port (overrides config)")
	metricsAddr = flag.String("metrics-addr", ":9090", "Address to serve /metrics on, empty to disable")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "offload-host: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		return fmt.Errorf("resolve config: %w", err)
	}
	cfg.Rank = 0
	applyOverrides(&cfg)

	runID := uuid.New().String()
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	})).With("run_id", runID, "rank", 0))
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
	log.Info("device ready", "size", cfg.Size)

	if err := renderDemoFrame(ctx, dev, log); err != nil {
		log.Warn("demo frame failed", "error", err)
	}

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return dev.Shutdown(shutdownCtx)
}

// renderDemoFrame exercises the full command path once at startup: build a
// world, a camera, and a framebuffer, render one frame, and wait for it —
// useful as a smoke test independent of any client protocol this binary
// doesn't yet speak.
func renderDemoFrame(ctx context.Context, dev *device.Device, log *slog.Logger) error {
	world, err := dev.NewWorld()
	if err != nil {
		return err
	}
	camera, err := dev.NewCamera("perspective")
	if err != nil {
		return err
	}
	if err := dev.SetParam(camera, "position", types.Vec3fParam(types.Vec3{X: 0, Y: 1, Z: 5})); err != nil {
		return err
	}
	if err := dev.SetParam(camera, "direction", types.Vec3fParam(types.Vec3{X: 0, Y: 0, Z: -1})); err != nil {
		return err
	}
	if err := dev.Commit(camera); err != nil {
		return err
	}
	renderer, err := dev.NewRenderer("raycast")
	if err != nil {
		return err
	}
	fb, err := dev.NewFramebuffer(512, 512, types.CompositingWriteOnce)
	if err != nil {
		return err
	}

	future, err := dev.RenderFrame(ctx, world, camera, fb, renderer)
	if err != nil {
		return err
	}
	waitCtx, waitCancel := context.WithTimeout(ctx, 30*time.Second)
	defer waitCancel()
	if err := dev.Wait(waitCtx, future); err != nil {
		return err
	}
	dur, err := dev.GetTaskDuration(future)
	if err != nil {
		return err
	}
	log.Info("demo frame rendered", "duration", dur)
	return nil
}

func applyOverrides(cfg *config.Config) {
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
