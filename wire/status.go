package wire

import (
	"errors"
	"fmt"
)

// ErrProtocol reports malformed framing. It is always fatal to the
// connection, never to the process.
var ErrProtocol = errors.New("protocol error")

// Status is the result code returned by the server in the message header.
type Status uint8

const (
	StatusOK          Status = 0
	StatusServerError Status = 1
	StatusNotFound    Status = 2
	StatusGeneration  Status = 3
	StatusParameter   Status = 4
	StatusKeyExists   Status = 5
	StatusTimeout     Status = 9
	StatusUnavailable Status = 11
	StatusNotMaster   Status = 12
	StatusOverload    Status = 14
	StatusForbidden   Status = 22
)

// String returns the string representation of the status code.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusServerError:
		return "server error"
	case StatusNotFound:
		return "not found"
	case StatusGeneration:
		return "generation mismatch"
	case StatusParameter:
		return "parameter error"
	case StatusKeyExists:
		return "key exists"
	case StatusTimeout:
		return "server-side timeout"
	case StatusUnavailable:
		return "partition unavailable"
	case StatusNotMaster:
		return "not the partition master"
	case StatusOverload:
		return "device overload"
	case StatusForbidden:
		return "operation forbidden"
	default:
		return fmt.Sprintf("status %d", uint8(s))
	}
}

// Disposition is what the dispatcher should do with a non-OK status.
type Disposition int

const (
	// DispositionPermanent means the request failed for good and must
	// surface to the caller without further attempts.
	DispositionPermanent Disposition = iota

	// DispositionRetry means another owner of the partition may be
	// able to serve the request. The connection stays usable.
	DispositionRetry

	// DispositionCloseConn means the connection state is suspect: close
	// it instead of returning it to the pool, then retry elsewhere.
	DispositionCloseConn
)

// dispositions is the fixed classification table for server statuses.
// Codes missing from the table are treated as permanent: an unknown
// failure must never be silently retried.
var dispositions = map[Status]Disposition{
	StatusTimeout:     DispositionRetry,
	StatusUnavailable: DispositionRetry,
	StatusNotMaster:   DispositionRetry,
	StatusOverload:    DispositionRetry,
	StatusServerError: DispositionCloseConn,
	StatusNotFound:    DispositionPermanent,
	StatusGeneration:  DispositionPermanent,
	StatusParameter:   DispositionPermanent,
	StatusKeyExists:   DispositionPermanent,
	StatusForbidden:   DispositionPermanent,
}

// Classify returns the disposition for a non-OK status code.
func Classify(s Status) Disposition {
	if d, ok := dispositions[s]; ok {
		return d
	}

	return DispositionPermanent
}

// StatusError is an opaque server status surfaced as an error.
type StatusError struct {
	Code Status
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return e.Code.String()
}

// Retryable reports whether another node may serve the request.
func (e *StatusError) Retryable() bool {
	return Classify(e.Code) != DispositionPermanent
}

// Is makes two status errors with the same code match under errors.Is.
func (e *StatusError) Is(target error) bool {
	t, ok := target.(*StatusError)
	return ok && t.Code == e.Code
}
