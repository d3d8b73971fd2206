// Package fastdfs is a client for FastDFS: the framed request/response
// protocol engine, connection pooling, and the high-level operations that
// compose tracker and storage exchanges, per spec.md.
//
// Layout follows the teacher's (aistore) convention of one root package
// for the public SDK surface (compare api/cluster.go, api/daemon.go) with
// leaf packages for the lower layers (wire codec, conn framing, pool).
package fastdfs

import (
	"context"
	"fmt"

	"github.com/fastdfs-go/fastdfs/conn"
	"github.com/fastdfs-go/fastdfs/internal/nlog"
	"github.com/fastdfs-go/fastdfs/pool"
)

// Client is the Executor of spec.md §4.4: it owns the pool registry and
// composes tracker/storage exchanges into the named high-level operations.
type Client struct {
	cfg Config
	reg *pool.Registry
	log nlog.Logger

	cancel context.CancelFunc
}

// NewClient validates cfg and wires up the pool registry. The returned
// Client owns no goroutines until the first operation touches a pool,
// except the idle-sweeper started per pool on first use.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	for _, o := range opts {
		o(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{cfg: cfg, log: nlog.Discard, cancel: cancel}

	connOpts := conn.Options{
		ConnectTimeout:      cfg.ConnectTimeout,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		TCPNoDelay:          cfg.TCPNoDelay,
		WriteHighWaterMark:  cfg.WriteHighWaterMark,
		WriteLowWaterMark:   cfg.WriteLowWaterMark,
		EnableReconnect:     cfg.EnableReconnect,
		MaxReconnect:        cfg.MaxReconnect,
		ReconnectIntervalMs: cfg.ReconnectIntervalMs,
	}
	poolOpts := pool.Options{
		MaxIdle:        cfg.MaxIdlePerPool,
		MaxTotal:       cfg.MaxTotalPerPool,
		IdleTimeout:    cfg.IdleTimeout,
		AcquireTimeout: cfg.AcquireTimeout,
	}
	dialer := func(endpoint string) pool.DialFunc {
		return func(ctx context.Context) (*conn.Connection, error) {
			return conn.DialWithReconnect(ctx, endpoint, connOpts, c.log)
		}
	}
	var metrics *pool.Metrics
	if cfg.MetricsRegisterer != nil {
		metrics = pool.NewMetrics(cfg.MetricsRegisterer)
	}

	sweepInterval := cfg.IdleTimeout / 2
	c.reg = pool.NewRegistry(ctx, poolOpts, sweepInterval, dialer, c.log, metrics)
	return c, nil
}

// SetLogger installs the logging sink the core reports through — spec.md
// §9 "the core accepts a small logging interface ... no ambient state".
func (c *Client) SetLogger(l nlog.Logger) { c.log = l }

// Close tears down the pool registry's background sweepers and closes all
// idle connections. In-flight operations are not interrupted.
func (c *Client) Close() {
	c.cancel()
	c.reg.CloseAll()
}

// PoolStats reports the current idle/in-use/total connection counts for
// every endpoint this client has talked to.
func (c *Client) PoolStats() map[string]pool.Stats {
	out := map[string]pool.Stats{}
	for _, addr := range c.reg.Endpoints() {
		out[addr] = c.reg.Get(addr).Stats()
	}
	return out
}

func endpointAddr(ip string, port int) string { return fmt.Sprintf("%s:%d", ip, port) }
