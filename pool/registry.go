package pool

import (
	"context"
	"sync"
	"time"

	"github.com/fastdfs-go/fastdfs/conn"
	"github.com/fastdfs-go/fastdfs/internal/nlog"
)

// Registry is the Executor's map of endpoint -> Pool, created lazily under
// a registry lock on first use — spec.md §5 "Shared state: Pool registry:
// read-mostly; mutated under a registry lock during first-time pool
// creation per endpoint."
type Registry struct {
	mu    sync.RWMutex
	pools map[string]*Pool

	opts    Options
	dialer  func(endpoint string) DialFunc
	log     nlog.Logger
	metrics *Metrics
	sweep   time.Duration
	ctx     context.Context
}

// NewRegistry builds an empty registry. dialer adapts an endpoint string
// into the DialFunc a new Pool needs.
func NewRegistry(ctx context.Context, opts Options, sweepInterval time.Duration, dialer func(endpoint string) DialFunc, log nlog.Logger, metrics *Metrics) *Registry {
	return &Registry{
		pools:   make(map[string]*Pool),
		opts:    opts,
		dialer:  dialer,
		log:     log,
		metrics: metrics,
		sweep:   sweepInterval,
		ctx:     ctx,
	}
}

// Get returns the Pool for endpoint, creating it on first use.
func (r *Registry) Get(endpoint string) *Pool {
	r.mu.RLock()
	p, ok := r.pools[endpoint]
	r.mu.RUnlock()
	if ok {
		return p
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok = r.pools[endpoint]; ok {
		return p
	}
	p = New(endpoint, r.dialer(endpoint), r.opts, r.log, r.metrics)
	r.pools[endpoint] = p
	StartSweeper(r.ctx, p, r.sweep)
	return p
}

// Acquire is sugar for Get(endpoint).Acquire(ctx).
func (r *Registry) Acquire(ctx context.Context, endpoint string) (*conn.Connection, error) {
	return r.Get(endpoint).Acquire(ctx)
}

// Release is sugar for Get(endpoint).Release(c, outcome); endpoint must
// already have a Pool (true for any connection this registry produced).
func (r *Registry) Release(endpoint string, c *conn.Connection, outcome Outcome) {
	r.Get(endpoint).Release(c, outcome)
}

// Endpoints lists every endpoint a Pool has been created for so far.
func (r *Registry) Endpoints() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.pools))
	for e := range r.pools {
		out = append(out, e)
	}
	return out
}

// CloseAll closes every pool's idle connections; used on client Close.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pools {
		p.Close()
	}
}
