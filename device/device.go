package device

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/offlayer/dispatch/balance"
	"github.com/offlayer/dispatch/batch"
	"github.com/offlayer/dispatch/config"
	"github.com/offlayer/dispatch/dispatch"
	"github.com/offlayer/dispatch/fabric"
	"github.com/offlayer/dispatch/framebuffer"
	"github.com/offlayer/dispatch/handle"
	"github.com/offlayer/dispatch/internal/logging"
	"github.com/offlayer/dispatch/object"
	"github.com/offlayer/dispatch/render"
	"github.com/offlayer/dispatch/render/raycast"
	"github.com/offlayer/dispatch/types"
	"github.com/offlayer/dispatch/wire"
)

// Device is the process-scoped context every Host API call is threaded
// through explicitly (spec §9's redesign flag away from a package-level
// singleton). One Device owns exactly one handle.Registry, one
// fabric.Group, and — on the host only — one batch.Buffer.
type Device struct {
	Rank int
	Size int

	group    fabric.Group
	registry *handle.Registry[*object.Managed]
	alloc    *handle.Allocator
	buf      *batch.Buffer // nil on workers
	metrics  Metrics

	renderer   render.Renderer
	static     balance.Static
	dynamic    *balance.Dynamic
	useDynamic bool

	mu        sync.Mutex
	fbs       map[types.Handle]*framebuffer.Framebuffer
	futures   map[types.Handle]*future
	cancelled map[types.Handle]bool

	pool     *dispatch.Pool // workers only
	loop     *dispatch.Loop // workers only
	loopDone chan error     // workers only
}

// Metrics is the subset of metrics.Registry a Device reports to. Defined
// here so device does not hard-depend on metrics; pass nil to disable.
type Metrics interface {
	batch.Observer
	framebuffer.Observer
	balance.QueueDepthObserver
}

// Option customizes Init.
type Option func(*Device)

// WithRenderer overrides the default raycast renderer used by workers.
func WithRenderer(r render.Renderer) Option {
	return func(d *Device) { d.renderer = r }
}

// WithMetrics attaches a Metrics sink.
func WithMetrics(m Metrics) Option {
	return func(d *Device) { d.metrics = m }
}

// Init bootstraps the fabric for cfg and returns a ready Device: a
// *Host-backed Device on rank 0, a *Worker-backed Device (with its
// dispatch loop already running in the background) on every other rank.
func Init(ctx context.Context, cfg config.Config, opts ...Option) (*Device, error) {
	group, err := fabric.Bootstrap(ctx, cfg.FabricConfig())
	if err != nil {
		return nil, fmt.Errorf("device: bootstrap: %w", err)
	}

	d := &Device{
		Rank:       cfg.Rank,
		Size:       cfg.Size,
		group:      group,
		registry:   handle.NewRegistry[*object.Managed](),
		alloc:      handle.NewAllocator(uint16(cfg.Rank)),
		renderer:   raycast.New(1),
		static:     balance.Static{NumWorkers: max1(cfg.Size - 1)},
		dynamic:    balance.NewDynamic(max1(cfg.Size - 1)),
		useDynamic: cfg.DynamicLoadBalancer,
		fbs:        make(map[types.Handle]*framebuffer.Framebuffer),
		futures:    make(map[types.Handle]*future),
		cancelled:  make(map[types.Handle]bool),
	}
	for _, opt := range opts {
		opt(d)
	}

	if cfg.Rank == 0 {
		sender, ok := group.(batch.Sender)
		if !ok {
			return nil, fmt.Errorf("device: host group does not implement batch.Sender")
		}
		policy := config_scaledPolicy(cfg)
		d.buf = batch.NewBuffer(policy, sender)
		if d.metrics != nil {
			d.buf.WithObserver(d.metrics)
			d.dynamic.WithObserver(d.metrics)
		}
		d.startResultCollectors(ctx)
		return d, nil
	}

	d.pool = dispatch.NewPool(ctx, runtime.NumCPU())
	d.loop = dispatch.NewLoop(group, d.workerHandlers(), d.pool, logging.Logger())
	d.loopDone = make(chan error, 1)
	go func() { d.loopDone <- d.loop.Run(ctx) }()
	return d, nil
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// config_scaledPolicy applies the write-buffer-scale device parameter to
// the default flush policy (spec §6 "write-buffer-scale").
func config_scaledPolicy(cfg config.Config) batch.Policy {
	scale := cfg.WriteBufferScale
	if scale <= 0 {
		scale = 1
	}
	return batch.DefaultPolicy().ScaledBy(scale)
}

// WaitLoop blocks until the worker's dispatch loop exits (fatal
// ProtocolError or context cancellation). Host Devices return nil
// immediately; they have no dispatch loop to wait on.
func (d *Device) WaitLoop() error {
	if d.loopDone == nil {
		return nil
	}
	return <-d.loopDone
}

// Shutdown flushes a TagShutdown command to every worker (host) or
// closes the fabric connection (worker), then closes the underlying
// group.
func (d *Device) Shutdown(ctx context.Context) error {
	if d.buf != nil {
		if err := d.buf.PutRecord(wire.TagShutdown, nil); err != nil {
			return err
		}
	}
	return d.group.Close()
}

func (d *Device) isHost() bool { return d.Rank == 0 }

func (d *Device) nextHandle() types.Handle { return d.alloc.Next() }

// future tracks one in-flight RenderFrame call (spec's "Future" object).
type future struct {
	mu       sync.Mutex
	finished bool
	duration time.Duration
	started  time.Time
	done     chan struct{}
}

func newFuture(started time.Time) *future {
	return &future{started: started, done: make(chan struct{})}
}

func (f *future) finish(now time.Time) {
	f.mu.Lock()
	if !f.finished {
		f.finished = true
		f.duration = now.Sub(f.started)
		close(f.done)
	}
	f.mu.Unlock()
}

func (f *future) isFinished() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finished
}

func (f *future) taskDuration() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration
}
