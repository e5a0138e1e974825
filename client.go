// Package routeros is a client library for the MikroTik RouterOS binary
// management API: it dials a router (plain TCP or TLS), authenticates,
// issues commands, and returns typed replies - standalone via Dial, or
// pooled via NewPool for concurrent callers.
package routeros

import (
	"context"

	"github.com/nimda/gorouteros/internal/conn"
	"github.com/nimda/gorouteros/internal/reply"
)

// Reply is one reply sentence's attributes, e.g. {".id": "*1", "running": true}.
type Reply = reply.Attributes

// Client owns a single authenticated connection to a router. Concurrent
// Run calls are serialized: one command is in flight at a time. Use a
// Pool to run commands in parallel across several connections.
type Client struct {
	w *conn.Worker
}

// Dial connects, authenticates, and returns a ready-to-use Client. Port
// and TLS default per Config's rules: port 8728 plain, 8729 TLS, and
// TLS is implied when the port is 8729 unless WithTLS overrides it.
func Dial(ctx context.Context, host, username, password string, opts ...Option) (*Client, error) {
	cfg, err := NewConfig(host, username, password, opts...)
	if err != nil {
		return nil, err
	}
	return dial(ctx, cfg)
}

// DialPlain connects over plain TCP regardless of port-derived defaults.
func DialPlain(ctx context.Context, host, username, password string, opts ...Option) (*Client, error) {
	opts = append(opts, WithTLS(false))
	return Dial(ctx, host, username, password, opts...)
}

// DialTLS connects over TLS regardless of port-derived defaults.
func DialTLS(ctx context.Context, host, username, password string, opts ...Option) (*Client, error) {
	opts = append(opts, WithTLS(true))
	return Dial(ctx, host, username, password, opts...)
}

func dial(ctx context.Context, cfg Config) (*Client, error) {
	w, err := conn.Open(ctx, workerOptions(cfg))
	if err != nil {
		return nil, err
	}
	return &Client{w: w}, nil
}

func workerOptions(cfg Config) conn.Options {
	return conn.Options{
		Host:        cfg.Host,
		Port:        cfg.Port,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DialTimeout: cfg.DialTimeout,
		TLSConfig:   cfg.buildTLSConfig(),
		Emitter:     cfg.Emitter,
	}
}

// Run sends a command sentence and returns its parsed reply, or an
// *Error on trap/fatal/protocol/transport failure.
func (c *Client) Run(words ...string) ([]Reply, error) {
	return c.w.Execute(words...)
}

// RunOrPanic is Run for callers that treat every command failure as a
// programming error worth crashing on - a convenience pair some scripts
// prefer over threading errors through every call site.
func (c *Client) RunOrPanic(words ...string) []Reply {
	r, err := c.Run(words...)
	if err != nil {
		panic(err)
	}
	return r
}

// Close idempotently closes the underlying transport.
func (c *Client) Close() error {
	return c.w.Close()
}

// State reports the connection's lifecycle state as a string, for
// diagnostics.
func (c *Client) State() string {
	return c.w.State().String()
}
