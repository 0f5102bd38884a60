package client

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-kit/log/level"

	"github.com/citrinedb/citrine-go/cluster"
	"github.com/citrinedb/citrine-go/digest"
	"github.com/citrinedb/citrine-go/policy"
	"github.com/citrinedb/citrine-go/transport"
	"github.com/citrinedb/citrine-go/wire"
)

// response is a parsed reply: the message header plus whatever opaque
// record payload followed the fields.
type response struct {
	header  wire.Header
	payload []byte
}

// execute drives one logical request to completion: resolve the
// owners of the key's partition, then try candidates in policy order
// until one succeeds, the candidates run out, or the shared deadline
// elapses. The deadline is the sole cancellation mechanism and is
// never reset between attempts.
func (c *Client) execute(p *policy.Base, cmd *command) (*response, error) {
	if atomic.LoadInt32(&c.closed) == 1 {
		return nil, ErrClientClosed
	}

	p.Consistency.Validate()

	started := time.Now()
	deadline := p.Deadline(started)

	fail := func(cause error, node string, attempts int) error {
		return &Error{
			Err:      cause,
			Node:     node,
			Attempts: attempts,
			Elapsed:  time.Since(started),
		}
	}

	// A deadline that is already behind us must not cost a single
	// byte of network I/O.
	if !deadline.IsZero() && !started.Before(deadline) {
		return nil, fail(transport.ErrDeadlineExceeded, "", 0)
	}

	pid := digest.PartitionID(cmd.digest)

	nodes, err := c.cluster.ResolveOwners(cmd.namespace, pid, p.Replica)
	if err != nil {
		return nil, fail(err, "", 0)
	}

	var (
		lastErr  error
		lastNode string
		attempts int
	)

	for _, node := range nodes {
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return nil, fail(deadlineCause(lastErr), lastNode, attempts)
		}

		attempts++
		lastNode = node.Name()

		resp, retry, err := c.attempt(node, p, cmd, deadline)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		level.Debug(c.logger).Log(
			"msg", "request attempt failed",
			"node", node.Name(),
			"attempt", attempts,
			"retry", retry,
			"err", err,
		)

		if !retry {
			return nil, fail(err, lastNode, attempts)
		}
	}

	if !deadline.IsZero() && !time.Now().Before(deadline) {
		return nil, fail(deadlineCause(lastErr), lastNode, attempts)
	}

	return nil, fail(exhaustedCause(lastErr), lastNode, attempts)
}

// attempt performs one network exchange against one node. The retry
// result tells the caller whether another candidate may still serve
// the request.
func (c *Client) attempt(node *cluster.Node, p *policy.Base, cmd *command, deadline time.Time) (*response, bool, error) {
	conn, err := node.GetConn(deadline)
	if err != nil {
		// Failing to obtain a connection never burns the candidate
		// list: the next owner might have capacity.
		return nil, !errors.Is(err, transport.ErrDeadlineExceeded), err
	}

	conn.SetDeadline(deadline, p.SocketTimeout)

	var remaining time.Duration
	if !deadline.IsZero() {
		remaining = time.Until(deadline)
	}

	if _, err := conn.WriteFull(cmd.encode(p.Key, remaining)); err != nil {
		node.PutConn(conn, false)
		return nil, !errors.Is(err, transport.ErrDeadlineExceeded), err
	}

	hdr := make([]byte, wire.ProtoHeaderSize)
	if _, err := conn.ReadFull(hdr); err != nil {
		node.PutConn(conn, false)
		return nil, !errors.Is(err, transport.ErrDeadlineExceeded), err
	}

	proto, err := wire.DecodeProto(hdr)
	if err != nil {
		node.PutConn(conn, false)
		return nil, false, err
	}

	if proto.Type != wire.TypeMessage {
		node.PutConn(conn, false)
		return nil, false, fmt.Errorf("%w: expected message frame, got type %d", wire.ErrProtocol, proto.Type)
	}

	body := make([]byte, proto.Size)
	if _, err := conn.ReadFull(body); err != nil {
		node.PutConn(conn, false)
		return nil, !errors.Is(err, transport.ErrDeadlineExceeded), err
	}

	var header wire.Header
	if err := header.Decode(body); err != nil {
		node.PutConn(conn, false)
		return nil, false, err
	}

	rest := body[wire.HeaderSize:]

	if header.FieldCount > 0 {
		if _, rest, err = wire.ParseFields(rest, int(header.FieldCount)); err != nil {
			node.PutConn(conn, false)
			return nil, false, err
		}
	}

	status := wire.Status(header.ResultCode)
	if status == wire.StatusOK {
		node.PutConn(conn, true)
		return &response{header: header, payload: rest}, false, nil
	}

	statusErr := &wire.StatusError{Code: status}

	switch wire.Classify(status) {
	case wire.DispositionRetry:
		node.PutConn(conn, true)
		return nil, true, statusErr
	case wire.DispositionCloseConn:
		node.PutConn(conn, false)
		return nil, true, statusErr
	default:
		node.PutConn(conn, true)
		return nil, false, statusErr
	}
}

func deadlineCause(lastErr error) error {
	if lastErr == nil {
		return transport.ErrDeadlineExceeded
	}

	return fmt.Errorf("%w: last error: %v", transport.ErrDeadlineExceeded, lastErr)
}

func exhaustedCause(lastErr error) error {
	if lastErr == nil {
		return cluster.ErrClusterNotReady
	}

	return fmt.Errorf("%w: all candidates tried, last error: %v", cluster.ErrClusterNotReady, lastErr)
}
