package dispatch

import (
	"context"
	"sync"
)

// Pool is a fixed-size, channel-based task pool: long-running handler work
// (rendering) is spawned onto it so the dispatch loop's Recv/decode cycle
// never blocks on it (spec §4.5). Shaped after ygrebnov-workers' pool.Pool
// Get()/Put() pair, reimplemented locally so dispatch does not pull in an
// entire task-framework for one interface.
type Pool struct {
	tasks chan func(context.Context)
	wg    sync.WaitGroup

	cancel context.CancelFunc
	done   chan struct{}
}

// NewPool starts size worker goroutines draining an unbuffered task
// channel, running under ctx until Close.
func NewPool(ctx context.Context, size int) *Pool {
	ctx, cancel := context.WithCancel(ctx)
	p := &Pool{
		tasks:  make(chan func(context.Context)),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	return p
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-p.tasks:
			fn(ctx)
		}
	}
}

// Submit enqueues fn to run on the next free worker. It blocks if every
// worker is busy, applying natural backpressure to callers that spawn
// faster than the pool can drain.
func (p *Pool) Submit(fn func(context.Context)) {
	select {
	case p.tasks <- fn:
	case <-p.done:
	}
}

// Close stops accepting new work and waits for in-flight tasks to finish.
func (p *Pool) Close() {
	close(p.done)
	p.cancel()
	p.wg.Wait()
}
