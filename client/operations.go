package client

import (
	"errors"

	"github.com/citrinedb/citrine-go/digest"
	"github.com/citrinedb/citrine-go/policy"
	"github.com/citrinedb/citrine-go/wire"
)

// Record is the raw result of a read: the opaque record payload plus
// its server-side metadata.
type Record struct {
	Payload    []byte
	Generation uint32
	Expiration uint32
}

// Get reads a record by key. It returns an error matching ErrNotFound
// if the record does not exist.
func (c *Client) Get(p *policy.Base, namespace, set string, key []byte) (*Record, error) {
	if p == nil {
		p = c.conf.DefaultPolicy
	}

	cmd := &command{
		namespace: namespace,
		set:       set,
		key:       key,
		digest:    digest.Compute(set, key),
		info1:     wire.Info1Read | wire.Info1GetAll | wire.ConsistencyFlags(p.Consistency),
	}

	resp, err := c.execute(p, cmd)
	if err != nil {
		return nil, err
	}

	return &Record{
		Payload:    resp.payload,
		Generation: resp.header.Generation,
		Expiration: resp.header.Expiration,
	}, nil
}

// Exists checks whether a record exists without transferring its
// payload.
func (c *Client) Exists(p *policy.Base, namespace, set string, key []byte) (bool, error) {
	if p == nil {
		p = c.conf.DefaultPolicy
	}

	cmd := &command{
		namespace: namespace,
		set:       set,
		key:       key,
		digest:    digest.Compute(set, key),
		info1:     wire.Info1Read | wire.Info1NoPayload | wire.ConsistencyFlags(p.Consistency),
	}

	if _, err := c.execute(p, cmd); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// Put stores a record payload under the given key.
func (c *Client) Put(wp *policy.Write, namespace, set string, key, payload []byte) error {
	if wp == nil {
		wp = c.conf.DefaultWritePolicy
	}

	wp.Commit.Validate()

	cmd := &command{
		namespace: namespace,
		set:       set,
		key:       key,
		digest:    digest.Compute(set, key),
		info2:     wire.Info2Write,
		info3:     wire.CommitFlags(wp.Commit),
		payload:   payload,
	}

	_, err := c.execute(&wp.Base, cmd)

	return err
}

// Delete removes a record. The existed result is false if there was
// nothing to remove.
func (c *Client) Delete(wp *policy.Write, namespace, set string, key []byte) (bool, error) {
	if wp == nil {
		wp = c.conf.DefaultWritePolicy
	}

	wp.Commit.Validate()

	cmd := &command{
		namespace: namespace,
		set:       set,
		key:       key,
		digest:    digest.Compute(set, key),
		info2:     wire.Info2Write | wire.Info2Delete,
		info3:     wire.CommitFlags(wp.Commit),
	}

	if _, err := c.execute(&wp.Base, cmd); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}
