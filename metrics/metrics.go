package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the set of collectors one process (host or worker)
// registers. Each process constructs its own Registry rather than
// relying on prometheus's global default registerer, so a test can spin
// up multiple instances without collector-already-registered panics.
type Registry struct {
	reg *prometheus.Registry

	commandsFlushed    prometheus.Counter
	bytesFlushed       prometheus.Counter
	sidechannelBytes   prometheus.Counter
	tilesAccumulated   prometheus.Counter
	frameProgress      prometheus.Gauge
	balancerQueueDepth prometheus.Gauge
}

// New constructs a Registry with every collector registered under the
// offlayer namespace.
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		commandsFlushed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "offlayer",
			Name:      "commands_flushed_total",
			Help:      "Total number of commands flushed from the batch buffer to the fabric.",
		}),
		bytesFlushed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "offlayer",
			Name:      "bytes_flushed_total",
			Help:      "Total number of inline command bytes flushed to the fabric.",
		}),
		sidechannelBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "offlayer",
			Name:      "sidechannel_bytes_total",
			Help:      "Total number of bytes sent over the sidechannel for large data arrays.",
		}),
		tilesAccumulated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "offlayer",
			Name:      "tiles_accumulated_total",
			Help:      "Total number of tile contributions merged into framebuffers.",
		}),
		frameProgress: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "offlayer",
			Name:      "frame_progress_ratio",
			Help:      "Fraction of tiles completed in the frame currently rendering.",
		}),
		balancerQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "offlayer",
			Name:      "balancer_queue_depth",
			Help:      "Number of tiles still pending across the dynamic balancer's rank queues.",
		}),
	}
}

// Handler returns an http.Handler serving this Registry's collectors in
// the Prometheus text exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// CommandsFlushed implements batch.Observer.
func (r *Registry) CommandsFlushed(n int) { r.commandsFlushed.Add(float64(n)) }

// BytesFlushed implements batch.Observer.
func (r *Registry) BytesFlushed(n int64) { r.bytesFlushed.Add(float64(n)) }

// SidechannelBytes implements batch.Observer.
func (r *Registry) SidechannelBytes(n int64) { r.sidechannelBytes.Add(float64(n)) }

// TileAccumulated records one tile contribution merged into a
// framebuffer.
func (r *Registry) TileAccumulated() { r.tilesAccumulated.Inc() }

// SetFrameProgress records the current frame's completion ratio.
func (r *Registry) SetFrameProgress(ratio float32) { r.frameProgress.Set(float64(ratio)) }

// SetBalancerQueueDepth records the dynamic balancer's current pending
// tile count across every rank.
func (r *Registry) SetBalancerQueueDepth(n int) { r.balancerQueueDepth.Set(float64(n)) }
