package transport

import (
	"sync"
	"time"
)

// Pool is a bounded cache of warm connections to a single node. The
// total number of live connections, idle plus checked out, never
// exceeds MaxConns; the idle cache never exceeds MaxIdle.
type Pool struct {
	addr   string
	dialer *Dialer

	maxConns int
	maxIdle  int

	mu      sync.Mutex
	idle    []idleConn // oldest first
	total   int        // live connections, idle included
	waiters []chan struct{}
	closed  bool
}

type idleConn struct {
	conn  *Conn
	since time.Time
}

// NewPool creates a pool for the given address. Connections are opened
// lazily on Acquire.
func NewPool(addr string, dialer *Dialer, maxConns, maxIdle int) *Pool {
	if maxIdle > maxConns {
		maxIdle = maxConns
	}

	return &Pool{
		addr:     addr,
		dialer:   dialer,
		maxConns: maxConns,
		maxIdle:  maxIdle,
	}
}

// Addr returns the address the pool connects to.
func (p *Pool) Addr() string {
	return p.addr
}

// Acquire returns a connection owned exclusively by the caller: an
// idle one if available, a freshly dialed one if the pool is under its
// connection cap, or it waits for a slot until the deadline. The zero
// deadline waits indefinitely.
func (p *Pool) Acquire(deadline time.Time) (*Conn, error) {
	for {
		p.mu.Lock()

		if p.closed {
			p.mu.Unlock()
			return nil, ErrPoolClosed
		}

		// Prefer the most recently used connection: it is the least
		// likely to have been idle-closed by the server side.
		if n := len(p.idle); n > 0 {
			conn := p.idle[n-1].conn
			p.idle = p.idle[:n-1]
			p.mu.Unlock()

			return conn, nil
		}

		if p.total < p.maxConns {
			p.total++
			p.mu.Unlock()

			conn, err := p.dialer.Dial(p.addr)
			if err != nil {
				p.forget()
				return nil, err
			}

			return conn, nil
		}

		// At capacity: wait for a connection to be released or closed.
		ready := make(chan struct{}, 1)
		p.waiters = append(p.waiters, ready)
		p.mu.Unlock()

		if deadline.IsZero() {
			<-ready
			continue
		}

		wait := time.Until(deadline)
		if wait <= 0 {
			p.abandon(ready)
			return nil, ErrDeadlineExceeded
		}

		timer := time.NewTimer(wait)

		select {
		case <-ready:
			timer.Stop()
		case <-timer.C:
			p.abandon(ready)
			return nil, ErrDeadlineExceeded
		}
	}
}

// Release returns a connection to the pool. Healthy connections go
// back to the idle cache, evicting the oldest idle connection when
// over capacity; unhealthy ones are closed.
func (p *Pool) Release(conn *Conn, healthy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !healthy || p.closed {
		_ = conn.Close()
		p.total--
		p.wakeLocked()

		return
	}

	p.idle = append(p.idle, idleConn{conn: conn, since: time.Now()})

	if len(p.idle) > p.maxIdle {
		_ = p.idle[0].conn.Close()
		p.idle = p.idle[1:]
		p.total--
	}

	p.wakeLocked()
}

// DropIdle closes idle connections that have not been used for longer
// than maxAge. It is invoked from the cluster tend cycle.
func (p *Pool) DropIdle(maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)

	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.idle[:0]

	for _, ic := range p.idle {
		if ic.since.Before(cutoff) {
			_ = ic.conn.Close()
			p.total--
			p.wakeLocked()

			continue
		}

		kept = append(kept, ic)
	}

	p.idle = kept
}

// Close closes all idle connections and rejects further Acquire calls.
// Checked-out connections are closed as they are released.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.closed = true

	for _, ic := range p.idle {
		_ = ic.conn.Close()
		p.total--
	}

	p.idle = nil

	for _, ready := range p.waiters {
		select {
		case ready <- struct{}{}:
		default:
		}
	}

	p.waiters = nil
}

// IdleCount returns the number of idle connections.
func (p *Pool) IdleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.idle)
}

// Total returns the number of live connections, idle included.
func (p *Pool) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.total
}

// forget gives up a connection slot after a failed dial.
func (p *Pool) forget() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total--
	p.wakeLocked()
}

// abandon removes a waiter that timed out. If the waiter had already
// been signaled, the wakeup is passed on so it is not lost.
func (p *Pool) abandon(ready chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, w := range p.waiters {
		if w == ready {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			return
		}
	}

	select {
	case <-ready:
		p.wakeLocked()
	default:
	}
}

func (p *Pool) wakeLocked() {
	if len(p.waiters) == 0 {
		return
	}

	ready := p.waiters[0]
	p.waiters = p.waiters[1:]
	ready <- struct{}{}
}
