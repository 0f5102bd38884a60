package client

import (
	"fmt"
	"sync/atomic"

	"github.com/go-kit/log"

	"github.com/citrinedb/citrine-go/cluster"
	"github.com/citrinedb/citrine-go/policy"
)

// Config carries client-wide defaults and the cluster tuning knobs.
type Config struct {
	Cluster cluster.Config

	// DefaultPolicy is used by read operations when the caller passes
	// a nil policy.
	DefaultPolicy *policy.Base

	// DefaultWritePolicy is used by write operations when the caller
	// passes a nil policy.
	DefaultWritePolicy *policy.Write

	Logger log.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{
		Cluster:            cluster.DefaultConfig(),
		DefaultPolicy:      policy.Default(),
		DefaultWritePolicy: policy.DefaultWrite(),
		Logger:             log.NewNopLogger(),
	}
}

// Client is an explicit handle to one database cluster. Its lifetime
// is caller-managed: no operation is valid before Connect returns or
// after Close.
type Client struct {
	cluster *cluster.Cluster
	conf    *Config
	logger  log.Logger
	closed  int32
}

// Connect creates a client from the seed addresses, blocking until
// the cluster topology has been discovered. Failure to reach any seed
// is fatal.
func Connect(conf *Config, seeds ...string) (*Client, error) {
	if conf == nil {
		conf = DefaultConfig()
	}

	if conf.Logger == nil {
		conf.Logger = log.NewNopLogger()
	}

	if conf.DefaultPolicy == nil {
		conf.DefaultPolicy = policy.Default()
	}

	if conf.DefaultWritePolicy == nil {
		conf.DefaultWritePolicy = policy.DefaultWrite()
	}

	if conf.Cluster.Logger == nil {
		conf.Cluster.Logger = conf.Logger
	}

	cl, err := cluster.Open(conf.Cluster, seeds...)
	if err != nil {
		return nil, fmt.Errorf("open cluster: %w", err)
	}

	return &Client{
		cluster: cl,
		conf:    conf,
		logger:  conf.Logger,
	}, nil
}

// Cluster exposes the underlying topology handle, mostly for
// inspection and tests.
func (c *Client) Cluster() *cluster.Cluster {
	return c.cluster
}

// Close drains the topology tracker and closes every pooled
// connection. The client is unusable afterwards.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil // already closed
	}

	return c.cluster.Close()
}
