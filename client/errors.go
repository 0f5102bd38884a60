package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/citrinedb/citrine-go/wire"
)

// ErrClientClosed is returned for operations on a closed client.
var ErrClientClosed = errors.New("client is closed")

// ErrNotFound matches, under errors.Is, any request that failed
// because the record does not exist.
var ErrNotFound = &wire.StatusError{Code: wire.StatusNotFound}

// Error is the single terminal outcome of a failed request. It wraps
// the classified cause together with enough context to diagnose the
// failure without internal retry noise.
type Error struct {
	Err      error
	Node     string
	Attempts int
	Elapsed  time.Duration
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("%s (attempts=%d elapsed=%s)", e.Err, e.Attempts, e.Elapsed)
	}

	return fmt.Sprintf("%s (node=%s attempts=%d elapsed=%s)", e.Err, e.Node, e.Attempts, e.Elapsed)
}

// Unwrap returns the classified cause.
func (e *Error) Unwrap() error {
	return e.Err
}
