package routeros

import (
	"context"

	"github.com/nimda/gorouteros/internal/conn"
	"github.com/nimda/gorouteros/internal/pool"
)

// Pool is a supervised set of Config.PoolSize connections. Use Run for
// one-shot commands, or WithConnection to pin several commands to the
// same checked-out worker.
type Pool struct {
	p *pool.Pool
}

// NewPool validates cfg and returns a pool handle. Workers are created
// lazily at first checkout; a transport problem surfaces on that first
// checkout rather than here.
func NewPool(cfg Config, opts ...Option) (*Pool, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Pool{p: pool.New(cfg.Host, workerOptions(cfg), cfg.PoolSize)}, nil
}

// Run checks out a worker, runs the command, and checks the worker back in.
func (p *Pool) Run(ctx context.Context, words ...string) ([]Reply, error) {
	return p.p.Run(ctx, words...)
}

// WithConnection checks out a worker, pins it for the duration of fn, and
// checks it back in regardless of how fn returns - including a panic,
// which is re-raised after checkin so a worker is never leaked.
func WithConnection[R any](ctx context.Context, p *Pool, command string, fn func(*Client) (R, error)) (R, error) {
	return pool.WithConnection(ctx, p.p, command, func(w *conn.Worker) (R, error) {
		return fn(&Client{w: w})
	})
}

// Close closes every worker in the pool and rejects further checkouts.
func (p *Pool) Close() error {
	return p.p.Close()
}

// Stats reports a snapshot of the pool's idle/active/waiter counts.
func (p *Pool) Stats() pool.Stats {
	return p.p.Stats()
}
