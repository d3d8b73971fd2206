package fastdfs

import (
	"context"

	"github.com/fastdfs-go/fastdfs/conn"
	"github.com/fastdfs-go/fastdfs/pool"
	"github.com/fastdfs-go/fastdfs/sink"
	"github.com/fastdfs-go/fastdfs/wire"
	"github.com/fastdfs-go/fastdfs/xerr"
)

// trackerExchange performs req against the configured trackers in order,
// failing over to the next only on a connect/pool-level failure — spec.md
// §4.4: "on connect failure to one tracker, try the next; stop at the
// first that responds." build is called once per attempted tracker so a
// fresh request body can be produced if needed (tracker requests never
// carry a stream, so this is always cheap).
func (c *Client) trackerExchange(ctx context.Context, build func() (wire.Request, error)) (conn.Result, error) {
	if len(c.cfg.Trackers) == 0 {
		return conn.Result{}, xerr.NewConfigError("Trackers", "none configured")
	}
	var lastErr error
	for _, addr := range c.cfg.Trackers {
		cn, err := c.reg.Acquire(ctx, addr)
		if err != nil {
			lastErr = err
			continue
		}
		req, err := build()
		if err != nil {
			c.reg.Release(addr, cn, pool.OK)
			return conn.Result{}, err
		}
		res, err := cn.Exchange(ctx, req, nil)
		if err == nil {
			c.reg.Release(addr, cn, pool.OK)
			return res, nil
		}
		if _, ok := xerr.IsServerError(err); ok {
			// this tracker responded; a server-side status is not a
			// reason to try another one.
			c.reg.Release(addr, cn, pool.OK)
			return res, err
		}
		// the connect succeeded, so this tracker was reached; an I/O or
		// protocol failure mid-exchange is not a reason to try another one.
		c.reg.Release(addr, cn, pool.BrokenOutcome)
		return conn.Result{}, err
	}
	return conn.Result{}, lastErr
}

// storageExchange talks to the single Storage endpoint a tracker handed
// back — "used as-is; the client does not second-guess it" (spec.md §4.4).
func (c *Client) storageExchange(ctx context.Context, addr string, req wire.Request, into sink.Sink) (conn.Result, error) {
	cn, err := c.reg.Acquire(ctx, addr)
	if err != nil {
		return conn.Result{}, err
	}
	res, err := cn.Exchange(ctx, req, into)
	if err != nil {
		if _, ok := xerr.IsServerError(err); ok {
			c.reg.Release(addr, cn, pool.OK)
		} else {
			c.reg.Release(addr, cn, pool.BrokenOutcome)
		}
		return res, err
	}
	c.reg.Release(addr, cn, pool.OK)
	return res, nil
}
