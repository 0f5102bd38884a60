package transport

import "errors"

var (
	// ErrConnectFailed is returned when the peer refuses or the dial
	// fails before the connect timeout.
	ErrConnectFailed = errors.New("connect failed")

	// ErrConnectTimedOut is returned when the connect timeout elapses
	// before the connection is established.
	ErrConnectTimedOut = errors.New("connect timed out")

	// ErrDeadlineExceeded is returned when the absolute request
	// deadline elapses before the operation completes.
	ErrDeadlineExceeded = errors.New("deadline exceeded")

	// ErrConnectionClosed is returned when the peer closes the stream
	// before the requested transfer completes.
	ErrConnectionClosed = errors.New("connection closed by peer")

	// ErrPoolClosed is returned by Acquire after the pool is shut down.
	ErrPoolClosed = errors.New("connection pool is closed")
)
