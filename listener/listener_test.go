package listener

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// mockListener allows custom methods to be implemented for test cases
type mockListener struct {
	accept func() (net.Conn, error)
	close  func() error
	addr   func() net.Addr
}

func (m *mockListener) Accept() (net.Conn, error) { return m.accept() }
func (m *mockListener) Close() error              { return m.close() }
func (m *mockListener) Addr() net.Addr            { return m.addr() }

func TestResilientListener_RecoversFromError(t *testing.T) {
	var acceptCount atomic.Int32
	want := []byte("hello raseed")

	// Fails on the first two Accepts, then hands out a connection
	failingListener := &mockListener{
		accept: func() (net.Conn, error) {
			if acceptCount.Add(1) <= 2 {
				return nil, errors.New("too many open files")
			}
			server, client := net.Pipe()
			go func() {
				client.Write(want)
				client.Close()
			}()
			return server, nil
		},
	}

	var logs bytes.Buffer
	l := NewResilientListener(failingListener, slog.New(slog.NewTextHandler(&logs, nil)))
	var delays []time.Duration
	l.sleep = func(d time.Duration) { delays = append(delays, d) }

	conn, err := l.Accept()
	if err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}
	defer conn.Close()

	got := make([]byte, len(want))
	if _, err := io.ReadFull(conn, got); err != nil {
		t.Fatalf("reading from the connection: %v", err)
	}
	if !bytes.Equal(want, got) {
		t.Fatalf("\nwanted:\n%s\ngot:\n%s", want, got)
	}

	if n := acceptCount.Load(); n != 3 {
		t.Fatalf("\nwanted:\n3\ngot:\n%d", n)
	}
	if len(delays) != 2 || delays[0] != minRetryDelay || delays[1] != 2*minRetryDelay {
		t.Fatalf("\nwanted:\n[%v %v]\ngot:\n%v", minRetryDelay, 2*minRetryDelay, delays)
	}
	if !strings.Contains(logs.String(), "too many open files") {
		t.Fatalf("\nwanted:\nlogged accept error\ngot:\n%q", logs.String())
	}
}

func TestResilientListener_CapsRetryDelay(t *testing.T) {
	var acceptCount atomic.Int32
	l := NewResilientListener(&mockListener{
		accept: func() (net.Conn, error) {
			if acceptCount.Add(1) <= 20 {
				return nil, errors.New("temporary")
			}
			return nil, net.ErrClosed
		},
	}, nil)

	var last time.Duration
	l.sleep = func(d time.Duration) { last = d }

	if _, err := l.Accept(); !errors.Is(err, net.ErrClosed) {
		t.Fatalf("\nwanted:\n%v\ngot:\n%v", net.ErrClosed, err)
	}
	if last != maxRetryDelay {
		t.Fatalf("\nwanted:\n%v\ngot:\n%v", maxRetryDelay, last)
	}
}

func TestResilientListener_FatalError(t *testing.T) {
	var acceptCount atomic.Int32

	// Immediately reports a closed listener
	fatalListener := &mockListener{
		accept: func() (net.Conn, error) {
			acceptCount.Add(1)
			return nil, net.ErrClosed
		},
	}

	_, err := NewResilientListener(fatalListener, nil).Accept()
	if !errors.Is(err, net.ErrClosed) {
		t.Fatalf("\nwanted:\n%v\ngot:\n%v", net.ErrClosed, err)
	}
	if n := acceptCount.Load(); n != 1 {
		t.Fatalf("\nwanted:\n1\ngot:\n%d", n)
	}
}

func TestResilientListener_RealListener(t *testing.T) {
	inner, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}
	l := NewResilientListener(inner, nil)

	go func() {
		conn, err := net.Dial("tcp", l.Addr().String())
		if err == nil {
			conn.Close()
		}
	}()

	conn, err := l.Accept()
	if err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}
	conn.Close()

	l.Close()
	if _, err := l.Accept(); !errors.Is(err, net.ErrClosed) {
		t.Fatalf("\nwanted:\n%v\ngot:\n%v", net.ErrClosed, err)
	}
}
