package cluster

import (
	"time"

	"github.com/go-kit/log"
)

// Config carries the tuning knobs of a cluster handle.
type Config struct {
	// TendInterval is the period of the background topology refresh.
	TendInterval time.Duration

	// ConnectTimeout bounds the TCP handshake when dialing a node.
	ConnectTimeout time.Duration

	// InfoTimeout bounds a single info exchange during tending.
	InfoTimeout time.Duration

	// MaxConnsPerNode caps the number of live connections per node,
	// idle and checked out together.
	MaxConnsPerNode int

	// MaxIdlePerNode caps the idle connection cache per node.
	MaxIdlePerNode int

	// IdleTimeout is how long a connection may sit idle before the
	// tend cycle sweeps it.
	IdleTimeout time.Duration

	// FailureThreshold is the number of consecutive failed health
	// checks after which a node is demoted to inactive.
	FailureThreshold int

	// DropGrace is how long an inactive node record is kept around
	// before it is released, provided no in-flight request holds it.
	DropGrace time.Duration

	Logger log.Logger
}

// DefaultConfig returns the default cluster configuration.
func DefaultConfig() Config {
	return Config{
		TendInterval:     time.Second,
		ConnectTimeout:   time.Second,
		InfoTimeout:      500 * time.Millisecond,
		MaxConnsPerNode:  64,
		MaxIdlePerNode:   16,
		IdleTimeout:      30 * time.Second,
		FailureThreshold: 3,
		DropGrace:        5 * time.Second,
		Logger:           log.NewNopLogger(),
	}
}
