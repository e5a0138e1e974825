package conn

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/nimda/gorouteros/internal/rerr"
	"github.com/nimda/gorouteros/internal/wire"
	"github.com/stretchr/testify/require"
)

// fakeServer starts a one-shot listener on loopback and runs script
// against the first accepted connection.
func fakeServer(t *testing.T, script func(net.Conn)) (host string, port int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		script(c)
	}()

	addr := ln.Addr().(*net.TCPAddr)
	t.Cleanup(func() { ln.Close() })
	return addr.IP.String(), addr.Port
}

func serverReadSentence(t *testing.T, c net.Conn) wire.Sentence {
	t.Helper()
	s, err := wire.ReadSentence(c)
	require.NoError(t, err)
	return s
}

func serverWriteSentence(t *testing.T, c net.Conn, words ...string) {
	t.Helper()
	s := make(wire.Sentence, len(words))
	for i, w := range words {
		s[i] = []byte(w)
	}
	require.NoError(t, wire.WriteSentence(c, s))
}

func TestOpen_Success(t *testing.T) {
	host, port := fakeServer(t, func(c net.Conn) {
		serverReadSentence(t, c) // /login
		serverWriteSentence(t, c, "!done")
	})

	w, err := Open(context.Background(), Options{
		Host: host, Port: port, Username: "admin", Password: "p",
		DialTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	require.Equal(t, StateAuthenticated, w.State())
	require.NoError(t, w.Close())
}

func TestOpen_AuthFailed(t *testing.T) {
	host, port := fakeServer(t, func(c net.Conn) {
		serverReadSentence(t, c)
		serverWriteSentence(t, c, "!trap", "=message=invalid user name or password")
		serverReadSentence(t, c) // MD5 fallback challenge request
		serverWriteSentence(t, c, "!done", "=ret=00000000000000000000000000000000")
		serverReadSentence(t, c) // MD5 response
		serverWriteSentence(t, c, "!trap", "=message=invalid user name or password")
	})

	_, err := Open(context.Background(), Options{
		Host: host, Port: port, Username: "admin", Password: "wrong",
		DialTimeout: 2 * time.Second,
	})
	require.Error(t, err)
	require.True(t, rerr.Is(err, rerr.KindAuthFailed))
}

func TestOpen_DialFailureIsConnectionFailed(t *testing.T) {
	// Nothing listening on this port.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	require.NoError(t, ln.Close())

	_, err = Open(context.Background(), Options{
		Host: addr.IP.String(), Port: addr.Port, Username: "a", Password: "b",
		DialTimeout: 2 * time.Second,
	})
	require.Error(t, err)
	require.True(t, rerr.Is(err, rerr.KindConnectionFailed))
}

func TestExecute_TrapKeepsWorkerAlive(t *testing.T) {
	host, port := fakeServer(t, func(c net.Conn) {
		serverReadSentence(t, c) // /login
		serverWriteSentence(t, c, "!done")

		serverReadSentence(t, c) // first command
		serverWriteSentence(t, c, "!trap", "=message=no such item")

		serverReadSentence(t, c) // second command
		serverWriteSentence(t, c, "!done")
	})

	w, err := Open(context.Background(), Options{
		Host: host, Port: port, Username: "admin", Password: "p", DialTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	defer w.Close()

	_, err = w.Execute("/interface/remove", "=.id=*99")
	require.Error(t, err)
	require.True(t, rerr.Is(err, rerr.KindTrap))
	require.Equal(t, StateAuthenticated, w.State())

	results, err := w.Execute("/interface/print")
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestExecute_FatalKillsWorker(t *testing.T) {
	host, port := fakeServer(t, func(c net.Conn) {
		serverReadSentence(t, c)
		serverWriteSentence(t, c, "!done")

		serverReadSentence(t, c)
		serverWriteSentence(t, c, "!fatal", "=message=too many commands before login")
	})

	w, err := Open(context.Background(), Options{
		Host: host, Port: port, Username: "admin", Password: "p", DialTimeout: 2 * time.Second,
	})
	require.NoError(t, err)

	_, err = w.Execute("/system/resource/print")
	require.Error(t, err)
	require.True(t, rerr.Is(err, rerr.KindFatal))
	require.Equal(t, StateDead, w.State())

	_, err = w.Execute("/system/resource/print")
	require.Error(t, err)
	require.True(t, rerr.Is(err, rerr.KindClosed))
}

func TestClose_Idempotent(t *testing.T) {
	host, port := fakeServer(t, func(c net.Conn) {
		serverReadSentence(t, c)
		serverWriteSentence(t, c, "!done")
	})

	w, err := Open(context.Background(), Options{
		Host: host, Port: port, Username: "admin", Password: "p", DialTimeout: 2 * time.Second,
	})
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	require.Equal(t, StateDead, w.State())
}

func TestClose_UnblocksPendingExecute(t *testing.T) {
	host, port := fakeServer(t, func(c net.Conn) {
		serverReadSentence(t, c)
		serverWriteSentence(t, c, "!done")
		serverReadSentence(t, c) // reads the command but never replies
	})

	w, err := Open(context.Background(), Options{
		Host: host, Port: port, Username: "admin", Password: "p", DialTimeout: 2 * time.Second,
	})
	require.NoError(t, err)

	execErr := make(chan error, 1)
	go func() {
		_, err := w.Execute("/system/resource/print")
		execErr <- err
	}()

	time.Sleep(50 * time.Millisecond) // let Execute block on ReadBlock
	require.NoError(t, w.Close())

	select {
	case err := <-execErr:
		require.Error(t, err)
		require.True(t, rerr.Is(err, rerr.KindClosed) || rerr.Is(err, rerr.KindConnectionFailed))
	case <-time.After(2 * time.Second):
		t.Fatal("Execute did not unblock after Close")
	}
}
