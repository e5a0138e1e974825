package routeros

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/nimda/gorouteros/internal/wire"
	"github.com/stretchr/testify/require"
)

// fakeRouter authenticates every accepted connection with plain login,
// then echoes "!done" with a fixed attribute to every command.
func fakeRouter(t *testing.T) (host string, port int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				if _, err := wire.ReadSentence(c); err != nil {
					return
				}
				if err := wire.WriteSentence(c, wire.Sentence{[]byte("!done")}); err != nil {
					return
				}
				for {
					if _, err := wire.ReadSentence(c); err != nil {
						return
					}
					s := wire.Sentence{[]byte("!re"), []byte("=name=ether1"), []byte("=running=true")}
					if err := wire.WriteSentence(c, s); err != nil {
						return
					}
					if err := wire.WriteSentence(c, wire.Sentence{[]byte("!done")}); err != nil {
						return
					}
				}
			}(c)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func TestDial_RunReturnsAttributes(t *testing.T) {
	host, port := fakeRouter(t)

	c, err := Dial(context.Background(), host, "admin", "p", WithPort(port), WithDialTimeout(2*time.Second))
	require.NoError(t, err)
	defer c.Close()

	results, err := c.Run("/interface/print")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "ether1", results[0]["name"])
	require.Equal(t, true, results[0]["running"])
}

func TestDial_RunOrPanicPanicsOnError(t *testing.T) {
	host, port := fakeRouter(t)

	c, err := Dial(context.Background(), host, "admin", "p", WithPort(port), WithDialTimeout(2*time.Second))
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Close()) // force a dead worker

	require.Panics(t, func() {
		c.RunOrPanic("/interface/print")
	})
}

func TestPool_RunAcrossConcurrentCallers(t *testing.T) {
	host, port := fakeRouter(t)

	cfg, err := NewConfig(host, "admin", "p", WithPort(port), WithPoolSize(2), WithDialTimeout(2*time.Second))
	require.NoError(t, err)
	p, err := NewPool(cfg)
	require.NoError(t, err)
	defer p.Close()

	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		go func() {
			_, err := p.Run(context.Background(), "/interface/print")
			errs <- err
		}()
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, <-errs)
	}
}

func TestWithConnection_PinsMultipleCommandsToOneWorker(t *testing.T) {
	host, port := fakeRouter(t)

	cfg, err := NewConfig(host, "admin", "p", WithPort(port), WithPoolSize(1), WithDialTimeout(2*time.Second))
	require.NoError(t, err)
	p, err := NewPool(cfg)
	require.NoError(t, err)
	defer p.Close()

	count, err := WithConnection(context.Background(), p, "/interface/print", func(c *Client) (int, error) {
		_, err := c.Run("/interface/print")
		if err != nil {
			return 0, err
		}
		_, err = c.Run("/interface/print")
		return 2, err
	})
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
