// Package pool implements a supervised connection pool: a fixed-size set
// of conn.Worker values with checkout/checkin semantics, lazy replacement
// of dead workers, and blocking checkout when saturated. Blocked callers
// are woken together by a broadcast; the order in which they obtain a
// worker is not defined (waiters are not served first-come first-served).
package pool

import (
	"context"
	"sync"
	"time"

	"github.com/nimda/gorouteros/internal/conn"
	"github.com/nimda/gorouteros/internal/reply"
	"github.com/nimda/gorouteros/internal/rerr"
	"github.com/nimda/gorouteros/internal/telemetry"
	zlog "github.com/rs/zerolog/log"
)

// Pool owns a fixed-size set of conn.Worker values.
type Pool struct {
	name string
	opts conn.Options
	size int

	mu      sync.Mutex
	cond    *sync.Cond
	idle    []*conn.Worker
	active  map[*conn.Worker]struct{}
	pending int // slots reserved for an in-flight dial
	waiters int
	closed  bool
}

// New creates a pool handle for the given connection options and target
// size. Workers are created lazily at first checkout.
func New(name string, opts conn.Options, size int) *Pool {
	if opts.Emitter == nil {
		opts.Emitter = telemetry.Noop{}
	}
	p := &Pool{
		name:   name,
		opts:   opts,
		size:   size,
		active: make(map[*conn.Worker]struct{}, size),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// checkout pops an idle worker, replacing it if dead, dials a new one if
// the pool hasn't reached its target size, or else blocks until a worker
// is checked in, the context is canceled, or the pool is closed.
func (p *Pool) checkout(ctx context.Context) (*conn.Worker, error) {
	stop := p.wakeOnDone(ctx)
	defer stop()

	p.mu.Lock()
	for {
		if p.closed {
			p.mu.Unlock()
			return nil, rerr.New(rerr.KindClosed, "pool is closed")
		}
		if err := ctx.Err(); err != nil {
			p.mu.Unlock()
			return nil, rerr.Wrap(rerr.KindTimeout, "checkout canceled", err)
		}

		if n := len(p.idle); n > 0 {
			w := p.idle[n-1]
			p.idle = p.idle[:n-1]

			if w.State() == conn.StateDead {
				p.pending++
				p.mu.Unlock()
				nw, err := conn.Open(ctx, p.opts)
				p.mu.Lock()
				p.pending--
				if err != nil {
					p.cond.Broadcast()
					p.mu.Unlock()
					return nil, err
				}
				p.active[nw] = struct{}{}
				p.mu.Unlock()
				return nw, nil
			}

			p.active[w] = struct{}{}
			p.mu.Unlock()
			return w, nil
		}

		if len(p.active)+p.pending < p.size {
			p.pending++
			p.mu.Unlock()
			w, err := conn.Open(ctx, p.opts)
			p.mu.Lock()
			p.pending--
			if err != nil {
				p.cond.Broadcast()
				p.mu.Unlock()
				return nil, err
			}
			p.active[w] = struct{}{}
			p.mu.Unlock()
			return w, nil
		}

		p.waiters++
		p.cond.Wait()
		p.waiters--
	}
}

// checkin returns an alive worker to the idle set and wakes every blocked
// waiter to compete for it; a dead worker is discarded and its slot freed
// for lazy replacement on the next checkout.
func (p *Pool) checkin(w *conn.Worker) {
	p.mu.Lock()
	delete(p.active, w)
	if w.State() != conn.StateDead {
		p.idle = append(p.idle, w)
	}
	p.cond.Broadcast()
	p.mu.Unlock()
}

// wakeOnDone returns a stop function; while active it rebroadcasts the
// pool's condition variable whenever ctx is canceled, so a checkout
// blocked in cond.Wait() notices cancellation promptly.
func (p *Pool) wakeOnDone(ctx context.Context) (stop func()) {
	if ctx.Done() == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.cond.Broadcast()
			p.mu.Unlock()
		case <-done:
		}
	}()
	return func() { close(done) }
}

// Run checks out a worker, executes the command, and checks it back in.
func (p *Pool) Run(ctx context.Context, words ...string) ([]reply.Attributes, error) {
	var command string
	if len(words) > 0 {
		command = words[0]
	}
	return WithConnection(ctx, p, command, func(w *conn.Worker) ([]reply.Attributes, error) {
		return w.Execute(words...)
	})
}

// WithConnection checks out a worker, invokes fn exactly once, and checks
// the worker back in regardless of outcome - including a panic, which is
// re-raised after checkin so the worker is never leaked.
func WithConnection[R any](ctx context.Context, p *Pool, command string, fn func(*conn.Worker) (R, error)) (R, error) {
	var zero R

	w, err := p.checkout(ctx)
	if err != nil {
		return zero, err
	}
	p.opts.Emitter.PoolCheckout(p.name, command)
	start := time.Now()

	defer func() {
		p.checkin(w)
		p.opts.Emitter.PoolCheckin(p.name, command, time.Since(start))
	}()

	return fn(w)
}

// Close closes every worker and rejects further checkouts.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	active := make([]*conn.Worker, 0, len(p.active))
	for w := range p.active {
		active = append(active, w)
	}
	p.cond.Broadcast()
	p.mu.Unlock()

	var firstErr error
	for _, w := range append(idle, active...) {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	zlog.Debug().Str("pool", p.name).Msg("routeros: pool closed")
	return firstErr
}

// Stats reports a snapshot of the pool's internal registry, for tests and
// diagnostics.
type Stats struct {
	Idle    int
	Active  int
	Waiters int
}

func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{Idle: len(p.idle), Active: len(p.active), Waiters: p.waiters}
}
