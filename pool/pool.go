// Package pool implements the per-endpoint bounded connection pool from
// spec.md §4.3: acquire/release with a liveness check, idle expiry via a
// periodic sweep, and an AcquireTimeout-bounded wait when the pool is at
// capacity.
//
// Grounded on the teacher's housekeeping package (hk) for the
// periodic-sweep shape, and on golang.org/x/sync/semaphore for the bounded
// "MaxTotal in flight" gate in place of a hand-rolled condition variable.
package pool

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/fastdfs-go/fastdfs/conn"
	"github.com/fastdfs-go/fastdfs/internal/nlog"
	"github.com/fastdfs-go/fastdfs/xerr"
)

// Outcome tells Release what to do with a borrowed Connection.
type Outcome int

const (
	OK Outcome = iota
	BrokenOutcome
)

// DialFunc creates one fresh Connection to the pool's endpoint.
type DialFunc func(ctx context.Context) (*conn.Connection, error)

// Options sizes and times a single endpoint's pool — spec.md §6.
type Options struct {
	MaxIdle        int
	MaxTotal       int
	IdleTimeout    time.Duration
	AcquireTimeout time.Duration
}

// Pool is the bounded multiset of idle Connections for one endpoint.
type Pool struct {
	Endpoint string

	dial DialFunc
	opts Options
	log  nlog.Logger

	mu      sync.Mutex
	idle    []*conn.Connection
	numOpen int

	sem *semaphore.Weighted

	metrics *Metrics
}

// New constructs a Pool for one endpoint; dial is called at most
// opts.MaxTotal times concurrently across the pool's lifetime.
func New(endpoint string, dial DialFunc, opts Options, log nlog.Logger, metrics *Metrics) *Pool {
	if log == nil {
		log = nlog.Discard
	}
	if opts.MaxTotal <= 0 {
		opts.MaxTotal = 1
	}
	return &Pool{
		Endpoint: endpoint,
		dial:     dial,
		opts:     opts,
		log:      log,
		sem:      semaphore.NewWeighted(int64(opts.MaxTotal)),
		metrics:  metrics,
	}
}

// Acquire returns a healthy idle Connection if one exists, otherwise opens
// a fresh one (up to MaxTotal), otherwise blocks up to AcquireTimeout and
// fails with xerr.PoolExhausted — spec.md §4.3.
func (p *Pool) Acquire(ctx context.Context) (*conn.Connection, error) {
	if c := p.popHealthyIdle(); c != nil {
		c.MarkInUse()
		p.reportGauges()
		return c, nil
	}

	acqCtx := ctx
	var cancel context.CancelFunc
	if p.opts.AcquireTimeout > 0 {
		acqCtx, cancel = context.WithTimeout(ctx, p.opts.AcquireTimeout)
		defer cancel()
	}
	if err := p.sem.Acquire(acqCtx, 1); err != nil {
		return nil, xerr.NewPoolExhausted(p.Endpoint, p.opts.AcquireTimeout)
	}

	c, err := p.dial(ctx)
	if err != nil {
		p.sem.Release(1)
		return nil, err
	}
	p.mu.Lock()
	p.numOpen++
	p.mu.Unlock()
	c.MarkInUse()
	p.reportGauges()
	return c, nil
}

// popHealthyIdle returns the most recently used idle connection that is
// neither Broken nor past IdleTimeout, discarding any it skips past.
func (p *Pool) popHealthyIdle() *conn.Connection {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.idle) > 0 {
		c := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
		if c.State() == conn.Broken {
			p.closeLocked(c)
			continue
		}
		if p.opts.IdleTimeout > 0 && time.Since(c.LastUsed()) > p.opts.IdleTimeout {
			p.closeLocked(c)
			continue
		}
		return c
	}
	return nil
}

// Release returns c to the idle set on OK, or closes and discards it on
// BrokenOutcome — spec.md §4.3. A successful release into an already-full
// idle set also closes the surplus connection.
func (p *Pool) Release(c *conn.Connection, outcome Outcome) {
	if outcome == BrokenOutcome || c.State() == conn.Broken {
		c.MarkBroken()
		p.mu.Lock()
		p.closeLocked(c)
		p.mu.Unlock()
		p.reportGauges()
		return
	}

	c.MarkIdle()
	p.mu.Lock()
	if len(p.idle) >= p.opts.MaxIdle {
		p.closeLocked(c)
		p.mu.Unlock()
		p.reportGauges()
		return
	}
	p.idle = append(p.idle, c)
	p.mu.Unlock()
	p.reportGauges()
}

// closeLocked closes c and frees its semaphore slot; caller holds p.mu.
func (p *Pool) closeLocked(c *conn.Connection) {
	_ = c.Close()
	p.numOpen--
	p.sem.Release(1)
}

// Sweep closes idle connections that have exceeded IdleTimeout —
// spec.md §4.3's periodic task, invoked by a caller-owned ticker (see
// StartSweeper) rather than a self-scheduled goroutine, so tests can drive
// it deterministically.
func (p *Pool) Sweep(now time.Time) (closed int) {
	if p.opts.IdleTimeout <= 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.idle[:0]
	for _, c := range p.idle {
		if now.Sub(c.LastUsed()) > p.opts.IdleTimeout {
			p.closeLocked(c)
			closed++
			continue
		}
		kept = append(kept, c)
	}
	p.idle = kept
	return closed
}

// Stats reports current idle/in-use/total counts for this endpoint.
type Stats struct {
	Idle  int
	InUse int
	Total int
}

func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{Idle: len(p.idle), InUse: p.numOpen - len(p.idle), Total: p.numOpen}
}

func (p *Pool) reportGauges() {
	if p.metrics == nil {
		return
	}
	s := p.Stats()
	p.metrics.set(p.Endpoint, s)
}

// Close closes every idle connection. It does not touch connections that
// are in use: a later Release with OK puts them back into the idle set as
// usual.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.idle {
		p.closeLocked(c)
	}
	p.idle = nil
}
