// Package telemetry defines the event contract the core emits: an
// injectable Emitter, with a no-op default, so the core never depends on
// whether an observer is attached.
package telemetry

import "time"

// Emitter receives events at defined points in the connection, command,
// and pool lifecycle. Every method must be safe to call concurrently,
// and implementations must return promptly - the core never waits on an
// observer.
type Emitter interface {
	// ConnectionStart fires when a connection worker begins dialing.
	ConnectionStart(host string, port int, tls bool)

	// ConnectionStop fires when a worker is closed cleanly.
	ConnectionStop(host string, port int, duration time.Duration)

	// ConnectionException fires when dialing or authentication fails.
	ConnectionException(host string, port int, duration time.Duration, reason error)

	// CommandStart fires when a worker begins executing a command.
	CommandStart(command string)

	// CommandStop fires when a command completes successfully.
	CommandStop(command string, duration time.Duration, resultCount int)

	// CommandException fires when a command fails (trap, fatal, protocol, ...).
	CommandException(command string, duration time.Duration, reason error)

	// PoolCheckout fires when a caller is handed a worker.
	PoolCheckout(pool, command string)

	// PoolCheckin fires when a worker is returned to the pool.
	PoolCheckin(pool, command string, duration time.Duration)
}

// Noop is the default Emitter: every method is a no-op.
type Noop struct{}

func (Noop) ConnectionStart(string, int, bool)                          {}
func (Noop) ConnectionStop(string, int, time.Duration)                  {}
func (Noop) ConnectionException(string, int, time.Duration, error)      {}
func (Noop) CommandStart(string)                                        {}
func (Noop) CommandStop(string, time.Duration, int)                     {}
func (Noop) CommandException(string, time.Duration, error)              {}
func (Noop) PoolCheckout(string, string)                                {}
func (Noop) PoolCheckin(string, string, time.Duration)                  {}

var _ Emitter = Noop{}
