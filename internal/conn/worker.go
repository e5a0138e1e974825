// Package conn implements the connection worker: one goroutine-safe owner
// of a single transport, serializing commands and tracking
// disconnected/authenticated/dead lifecycle state.
package conn

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nimda/gorouteros/internal/auth"
	"github.com/nimda/gorouteros/internal/reply"
	"github.com/nimda/gorouteros/internal/rerr"
	"github.com/nimda/gorouteros/internal/telemetry"
	"github.com/nimda/gorouteros/internal/wire"
	zlog "github.com/rs/zerolog/log"
)

// State is the worker's lifecycle state.
type State int32

const (
	StateDisconnected State = iota
	StateAuthenticated
	StateDead
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateAuthenticated:
		return "authenticated"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Options configures a single Worker. TLSConfig == nil means plain TCP.
type Options struct {
	Host        string
	Port        int
	Username    string
	Password    string
	DialTimeout time.Duration
	TLSConfig   *tls.Config
	Emitter     telemetry.Emitter
}

// Worker owns exactly one transport and is the sole reader/writer on it.
type Worker struct {
	nc       net.Conn
	opts     Options
	state    atomic.Int32
	closeMu  sync.Mutex
	closed   bool
	execMu   sync.Mutex // serializes Execute: one in-flight command per worker
	openedAt time.Time
}

// Open dials, optionally TLS-handshakes, and authenticates, returning a
// ready-to-use Worker. Any failure closes the transport and returns a
// connection_failed or auth_failed error, or a protocol error when the
// login exchange itself is malformed (e.g. a non-hex salt).
func Open(ctx context.Context, opts Options) (*Worker, error) {
	if opts.Emitter == nil {
		opts.Emitter = telemetry.Noop{}
	}

	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
	isTLS := opts.TLSConfig != nil
	start := time.Now()
	opts.Emitter.ConnectionStart(opts.Host, opts.Port, isTLS)

	dialer := &net.Dialer{Timeout: opts.DialTimeout}

	var nc net.Conn
	var err error
	if isTLS {
		nc, err = tlsDial(ctx, dialer, addr, opts.TLSConfig)
	} else {
		nc, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		wrapped := rerr.Wrap(rerr.KindConnectionFailed, "dial "+addr, err)
		opts.Emitter.ConnectionException(opts.Host, opts.Port, time.Since(start), wrapped)
		return nil, wrapped
	}

	if opts.DialTimeout > 0 {
		if err := nc.SetDeadline(time.Now().Add(opts.DialTimeout)); err != nil {
			_ = nc.Close()
			wrapped := rerr.Wrap(rerr.KindConnectionFailed, "set deadline", err)
			opts.Emitter.ConnectionException(opts.Host, opts.Port, time.Since(start), wrapped)
			return nil, wrapped
		}
	}

	if err := auth.Login(nc, opts.Username, opts.Password); err != nil {
		_ = nc.Close()
		if rerr.Is(err, rerr.KindClosed) {
			// The transport closed before authentication completed.
			err = rerr.Wrap(rerr.KindConnectionFailed, "login", err)
		}
		opts.Emitter.ConnectionException(opts.Host, opts.Port, time.Since(start), err)
		return nil, err
	}

	if err := nc.SetDeadline(time.Time{}); err != nil {
		_ = nc.Close()
		wrapped := rerr.Wrap(rerr.KindConnectionFailed, "clear deadline", err)
		opts.Emitter.ConnectionException(opts.Host, opts.Port, time.Since(start), wrapped)
		return nil, wrapped
	}

	w := &Worker{nc: nc, opts: opts, openedAt: start}
	w.state.Store(int32(StateAuthenticated))

	zlog.Debug().Str("host", opts.Host).Int("port", opts.Port).Bool("tls", isTLS).Msg("routeros: worker authenticated")
	return w, nil
}

func tlsDial(ctx context.Context, dialer *net.Dialer, addr string, cfg *tls.Config) (net.Conn, error) {
	tlsDialer := &tls.Dialer{NetDialer: dialer, Config: cfg}
	return tlsDialer.DialContext(ctx, "tcp", addr)
}

// State reports the worker's current lifecycle state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Execute writes a request sentence, reads the reply block, and parses
// it. At most one Execute is ever in flight per worker.
func (w *Worker) Execute(words ...string) ([]reply.Attributes, error) {
	w.execMu.Lock()
	defer w.execMu.Unlock()

	if w.State() == StateDead {
		return nil, rerr.New(rerr.KindClosed, "worker is dead")
	}

	command := ""
	if len(words) > 0 {
		command = words[0]
	}
	w.opts.Emitter.CommandStart(command)
	start := time.Now()

	sentence := make(wire.Sentence, len(words))
	for i, word := range words {
		sentence[i] = []byte(word)
	}

	if err := wire.WriteSentence(w.nc, sentence); err != nil {
		w.markDead()
		w.opts.Emitter.CommandException(command, time.Since(start), err)
		return nil, err
	}

	block, err := wire.ReadBlock(w.nc)
	if err != nil {
		w.markDead()
		w.opts.Emitter.CommandException(command, time.Since(start), err)
		return nil, err
	}

	results, err := reply.Parse(block)
	if err != nil {
		// A fatal status kills the connection; a trap is a normal
		// application error and the worker stays usable.
		if rerr.Is(err, rerr.KindFatal) {
			w.markDead()
		}
		w.opts.Emitter.CommandException(command, time.Since(start), err)
		return nil, err
	}

	w.opts.Emitter.CommandStop(command, time.Since(start), len(results))
	return results, nil
}

// Close idempotently closes the transport and marks the worker dead. It
// may be called concurrently with a pending Execute; that call observes
// a closed error once the underlying read/write unblocks.
func (w *Worker) Close() error {
	w.closeMu.Lock()
	defer w.closeMu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	w.state.Store(int32(StateDead))

	err := w.nc.Close()
	w.opts.Emitter.ConnectionStop(w.opts.Host, w.opts.Port, time.Since(w.openedAt))
	return err
}

func (w *Worker) markDead() {
	w.state.Store(int32(StateDead))
}
