package pool_test

import (
	"context"
	"testing"
	"time"

	"github.com/fastdfs-go/fastdfs/conn"
	"github.com/fastdfs-go/fastdfs/internal/fakeserver"
	"github.com/fastdfs-go/fastdfs/pool"
)

func dialerFor(addr string) pool.DialFunc {
	return func(ctx context.Context) (*conn.Connection, error) {
		return conn.Dial(ctx, addr, conn.Options{ConnectTimeout: time.Second}, nil)
	}
}

func TestAcquireReleaseReusesIdleConnection(t *testing.T) {
	srv, err := fakeserver.New(nil)
	if err != nil {
		t.Fatalf("fakeserver.New: %v", err)
	}
	defer srv.Close()

	p := pool.New(srv.Addr(), dialerFor(srv.Addr()), pool.Options{MaxIdle: 2, MaxTotal: 2}, nil, nil)
	defer p.Close()

	c1, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	p.Release(c1, pool.OK)

	c2, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if c1 != c2 {
		t.Fatal("expected the released connection to be reused")
	}
	p.Release(c2, pool.OK)

	if s := p.Stats(); s.Total != 1 {
		t.Fatalf("Total = %d, want 1", s.Total)
	}
}

func TestAcquireRespectsMaxTotal(t *testing.T) {
	srv, err := fakeserver.New(nil)
	if err != nil {
		t.Fatalf("fakeserver.New: %v", err)
	}
	defer srv.Close()

	p := pool.New(srv.Addr(), dialerFor(srv.Addr()), pool.Options{MaxIdle: 1, MaxTotal: 1, AcquireTimeout: 50 * time.Millisecond}, nil, nil)
	defer p.Close()

	c1, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	_, err = p.Acquire(context.Background())
	if err == nil {
		t.Fatal("expected PoolExhausted when MaxTotal is already borrowed")
	}

	p.Release(c1, pool.OK)
}

func TestReleaseBrokenDiscardsConnection(t *testing.T) {
	srv, err := fakeserver.New(nil)
	if err != nil {
		t.Fatalf("fakeserver.New: %v", err)
	}
	defer srv.Close()

	p := pool.New(srv.Addr(), dialerFor(srv.Addr()), pool.Options{MaxIdle: 2, MaxTotal: 2}, nil, nil)
	defer p.Close()

	c, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	p.Release(c, pool.BrokenOutcome)

	if s := p.Stats(); s.Total != 0 {
		t.Fatalf("Total = %d, want 0 after discarding a broken connection", s.Total)
	}
}

func TestSweepClosesExpiredIdleConnections(t *testing.T) {
	srv, err := fakeserver.New(nil)
	if err != nil {
		t.Fatalf("fakeserver.New: %v", err)
	}
	defer srv.Close()

	p := pool.New(srv.Addr(), dialerFor(srv.Addr()), pool.Options{MaxIdle: 2, MaxTotal: 2, IdleTimeout: time.Millisecond}, nil, nil)
	defer p.Close()

	c, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	p.Release(c, pool.OK)

	closed := p.Sweep(time.Now().Add(time.Hour))
	if closed != 1 {
		t.Fatalf("Sweep closed %d connections, want 1", closed)
	}
	if s := p.Stats(); s.Idle != 0 {
		t.Fatalf("Idle = %d, want 0", s.Idle)
	}
}

func TestRegistryReusesPoolPerEndpoint(t *testing.T) {
	srv, err := fakeserver.New(nil)
	if err != nil {
		t.Fatalf("fakeserver.New: %v", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := pool.NewRegistry(ctx, pool.Options{MaxIdle: 1, MaxTotal: 1}, 0,
		func(endpoint string) pool.DialFunc { return dialerFor(endpoint) }, nil, nil)
	defer reg.CloseAll()

	c, err := reg.Acquire(context.Background(), srv.Addr())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	reg.Release(srv.Addr(), c, pool.OK)

	if got := reg.Endpoints(); len(got) != 1 || got[0] != srv.Addr() {
		t.Fatalf("Endpoints() = %v, want [%s]", got, srv.Addr())
	}
}
