// Package metrics exposes the runtime's prometheus instrumentation:
// commands and bytes flushed through the command buffer, tiles
// accumulated into the framebuffer, frame progress, and the dynamic
// balancer's queue depth. Grounded on the pack-wide convention of
// depending on github.com/prometheus/client_golang for a /metrics
// endpoint (ghjramos-aistore and other_examples/manifests/
// Generativebots-ocx-backend-go-svc both carry the dependency for
// exactly this purpose).
package metrics
