package conn

import (
	"context"
	"time"

	"github.com/fastdfs-go/fastdfs/internal/nlog"
)

// DialWithReconnect wraps Dial with a bounded, non-recursive retry loop
// when opts.EnableReconnect is set — spec.md §4.2 "Reconnect" and the
// design-note replacement for the teacher-style recursive sleep-and-retry:
// a plain for-loop with an explicit backoff schedule, checking
// cancellation before every attempt rather than after a sleep.
func DialWithReconnect(ctx context.Context, addr string, opts Options, log nlog.Logger) (*Connection, error) {
	c, err := Dial(ctx, addr, opts, log)
	if err == nil || !opts.EnableReconnect {
		return c, err
	}

	backoff := time.Duration(opts.ReconnectIntervalMs) * time.Millisecond
	for attempt := 1; attempt <= opts.MaxReconnect; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		c, err = Dial(ctx, addr, opts, log)
		if err == nil {
			return c, nil
		}
		log.Log(nlog.SevWarn, "reconnect attempt failed", "addr", addr, "attempt", attempt, "err", err)
	}
	return nil, err
}
