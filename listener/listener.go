// Package listener provides the net.Listener the web server accepts connections on.
package listener

import (
	"errors"
	"log/slog"
	"net"
	"time"
)

const (
	minRetryDelay = 5 * time.Millisecond
	maxRetryDelay = time.Second
)

// ResilientListener wraps a net.Listener so that failed Accepts do not stop the server.
// Only a closed listener is reported to the caller; every other error is logged and the
// accept is retried after a short, growing delay.
type ResilientListener struct {
	net.Listener
	logger *slog.Logger
	sleep  func(time.Duration)
}

// NewResilientListener wraps l. A nil logger discards the log output.
func NewResilientListener(l net.Listener, logger *slog.Logger) *ResilientListener {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ResilientListener{Listener: l, logger: logger, sleep: time.Sleep}
}

// Accept waits for the next connection, skipping recoverable errors.
func (l *ResilientListener) Accept() (net.Conn, error) {
	var delay time.Duration
	for {
		conn, err := l.Listener.Accept()
		if err == nil {
			return conn, nil
		}
		if errors.Is(err, net.ErrClosed) {
			return nil, err
		}

		if delay == 0 {
			delay = minRetryDelay
		} else if delay *= 2; delay > maxRetryDelay {
			delay = maxRetryDelay
		}
		l.logger.Warn("accepting connection", "error", err, "retry_in", delay)
		l.sleep(delay)
	}
}
