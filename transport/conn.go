package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"
)

// Conn is a connected stream with deadline-bound transfer primitives.
// A Conn has single-owner discipline: it is either idle in a pool or
// held by exactly one in-flight request, never both.
type Conn struct {
	sock net.Conn

	// deadline is the absolute point after which transfers fail with
	// ErrDeadlineExceeded. The zero time disables it.
	deadline time.Time

	// attemptTimeout bounds a single read/write attempt, so that a
	// stalled peer is re-polled instead of blocking until the very end
	// of the request budget. Zero disables per-attempt deadlines.
	attemptTimeout time.Duration

	closed uint32
}

// NewConn wraps an established stream.
func NewConn(sock net.Conn) *Conn {
	return &Conn{sock: sock}
}

// SetDeadline sets the absolute deadline and the per-attempt timeout
// for all subsequent transfers. It is reset per request before the
// connection is handed to the command.
func (c *Conn) SetDeadline(deadline time.Time, attemptTimeout time.Duration) {
	c.deadline = deadline
	c.attemptTimeout = attemptTimeout
}

// attemptDeadline returns the deadline for a single socket attempt:
// the sooner of now+attemptTimeout and the absolute deadline.
func (c *Conn) attemptDeadline(now time.Time) time.Time {
	d := c.deadline

	if c.attemptTimeout > 0 {
		if a := now.Add(c.attemptTimeout); d.IsZero() || a.Before(d) {
			d = a
		}
	}

	return d
}

// ReadFull reads exactly len(p) bytes, accumulating partial reads
// across repeated bounded attempts. It returns ErrDeadlineExceeded
// once the absolute deadline elapses and ErrConnectionClosed if the
// peer closes the stream before the transfer completes.
func (c *Conn) ReadFull(p []byte) (int, error) {
	read := 0

	for read < len(p) {
		now := time.Now()
		if !c.deadline.IsZero() && !now.Before(c.deadline) {
			return read, ErrDeadlineExceeded
		}

		if err := c.sock.SetReadDeadline(c.attemptDeadline(now)); err != nil {
			return read, fmt.Errorf("set read deadline: %w", err)
		}

		n, err := c.sock.Read(p[read:])
		read += n

		if err != nil {
			if isTimeout(err) {
				continue // the loop re-checks the absolute deadline
			}

			if errors.Is(err, io.EOF) {
				return read, ErrConnectionClosed
			}

			return read, fmt.Errorf("socket read: %w", err)
		}
	}

	return read, nil
}

// WriteFull writes all of p, accumulating partial writes the same way
// ReadFull accumulates partial reads.
func (c *Conn) WriteFull(p []byte) (int, error) {
	written := 0

	for written < len(p) {
		now := time.Now()
		if !c.deadline.IsZero() && !now.Before(c.deadline) {
			return written, ErrDeadlineExceeded
		}

		if err := c.sock.SetWriteDeadline(c.attemptDeadline(now)); err != nil {
			return written, fmt.Errorf("set write deadline: %w", err)
		}

		n, err := c.sock.Write(p[written:])
		written += n

		if err != nil {
			if isTimeout(err) {
				continue
			}

			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return written, ErrConnectionClosed
			}

			return written, fmt.Errorf("socket write: %w", err)
		}
	}

	return written, nil
}

// ReadForever reads exactly len(p) bytes with no deadline at all. It
// defeats cancellation and is meant only for exchanges explicitly
// defined as unbounded, such as the initial handshake.
func (c *Conn) ReadForever(p []byte) (int, error) {
	if err := c.sock.SetReadDeadline(time.Time{}); err != nil {
		return 0, fmt.Errorf("set read deadline: %w", err)
	}

	n, err := io.ReadFull(c.sock, p)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return n, ErrConnectionClosed
		}

		return n, fmt.Errorf("socket read: %w", err)
	}

	return n, nil
}

// WriteForever writes all of p with no deadline.
func (c *Conn) WriteForever(p []byte) (int, error) {
	if err := c.sock.SetWriteDeadline(time.Time{}); err != nil {
		return 0, fmt.Errorf("set write deadline: %w", err)
	}

	n, err := c.sock.Write(p)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
			return n, ErrConnectionClosed
		}

		return n, fmt.Errorf("socket write: %w", err)
	}

	return n, nil
}

// Close closes the underlying stream. It is safe to call twice.
func (c *Conn) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closed, 0, 1) {
		return nil // already closed
	}

	return c.sock.Close()
}

// IsClosed returns true if the connection has been closed locally.
func (c *Conn) IsClosed() bool {
	return atomic.LoadUint32(&c.closed) == 1
}

// RemoteAddr returns the address of the peer.
func (c *Conn) RemoteAddr() net.Addr {
	return c.sock.RemoteAddr()
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
