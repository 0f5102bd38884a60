package transport

import (
	"fmt"
	"net"
	"time"
)

// Dialer opens connections with an explicit connect timeout.
type Dialer struct {
	// ConnectTimeout bounds the TCP handshake. Zero means the OS
	// default is used.
	ConnectTimeout time.Duration
}

// NewDialer creates a dialer with the given connect timeout.
func NewDialer(connectTimeout time.Duration) *Dialer {
	return &Dialer{ConnectTimeout: connectTimeout}
}

// Dial establishes a connection to addr, returning a ready-to-use
// stream or ErrConnectFailed/ErrConnectTimedOut.
func (d *Dialer) Dial(addr string) (*Conn, error) {
	sock, err := net.DialTimeout("tcp", addr, d.ConnectTimeout)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %s", ErrConnectTimedOut, addr)
		}

		return nil, fmt.Errorf("%w: %s: %s", ErrConnectFailed, addr, err)
	}

	if tcp, ok := sock.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}

	return NewConn(sock), nil
}
