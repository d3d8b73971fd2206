// Package conn implements one persistent TCP socket plus the per-exchange
// framing loop described in spec.md §4.2: encode header+body, stream an
// optional payload in bounded chunks, read back a response header, then
// either buffer the response body or stream it into a caller-supplied Sink.
//
// Grounded on the teacher's transport package (stream_bundle.go / pdu.go)
// for the "never buffer the whole payload" chunking discipline and on
// api/cluster.go's BaseParams/ReqParams split for keeping per-exchange
// state off the Connection between calls.
package conn

import (
	"context"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teris-io/shortid"

	"github.com/fastdfs-go/fastdfs/internal/nlog"
	"github.com/fastdfs-go/fastdfs/sink"
	"github.com/fastdfs-go/fastdfs/wire"
	"github.com/fastdfs-go/fastdfs/xerr"
)

// State is a Connection's lifecycle stage — spec.md §3.
type State int32

const (
	Idle State = iota
	InUse
	Broken
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InUse:
		return "in-use"
	case Broken:
		return "broken"
	case Closed:
		return "closed"
	default:
		return "?"
	}
}

// Connection owns one TCP socket and serializes exchanges on it — "exactly
// one exchange in flight at a time", spec.md §4.2.
type Connection struct {
	id      string
	addr    string
	nc      net.Conn
	opts    Options
	log     nlog.Logger
	state   atomic.Int32
	lastUse atomic.Int64 // unix nanos, updated by the pool on release
	mu      sync.Mutex   // serializes Exchange calls on this Connection
}

// Dial establishes the TCP socket and applies the TCP tuning knobs named in
// spec.md §4.2/§6 (TCP_NODELAY, keepalive, write watermarks).
func Dial(ctx context.Context, addr string, opts Options, log nlog.Logger) (*Connection, error) {
	if log == nil {
		log = nlog.Discard
	}
	id, _ := shortid.Generate()
	c := &Connection{id: id, addr: addr, opts: opts, log: log}
	if err := c.dial(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Connection) dial(ctx context.Context) error {
	d := net.Dialer{Timeout: c.opts.ConnectTimeout}
	nc, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return xerr.NewConnectError(c.addr, err)
	}
	if tc, ok := nc.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(c.opts.TCPNoDelay)
		_ = tc.SetKeepAlive(true)
		_ = tuneWatermarks(tc, c.opts.WriteHighWaterMark, c.opts.WriteLowWaterMark)
	}
	c.nc = nc
	c.state.Store(int32(Idle))
	c.touch()
	c.log.Log(nlog.SevDebug, "connected", "conn", c.id, "addr", c.addr)
	return nil
}

func (c *Connection) touch() { c.lastUse.Store(time.Now().UnixNano()) }

// LastUsed reports when this Connection was last returned to Idle.
func (c *Connection) LastUsed() time.Time { return time.Unix(0, c.lastUse.Load()) }

// State returns the current lifecycle stage.
func (c *Connection) State() State { return State(c.state.Load()) }

// MarkInUse transitions Idle -> InUse; called by the pool on acquire.
func (c *Connection) MarkInUse() { c.state.Store(int32(InUse)) }

// MarkIdle transitions InUse -> Idle on a successful release.
func (c *Connection) MarkIdle() {
	c.touch()
	c.state.Store(int32(Idle))
}

// MarkBroken transitions to Broken from any state; the pool must discard
// a Broken connection rather than hand it out again.
func (c *Connection) MarkBroken() { c.state.Store(int32(Broken)) }

// Close marks the Connection Closed and closes the socket outright; it does
// not half-close it or drain pending input first.
func (c *Connection) Close() error {
	c.state.Store(int32(Closed))
	if c.nc == nil {
		return nil
	}
	return c.nc.Close()
}

// Result is a completed exchange: either Body is populated (buffered
// response) or the bytes were streamed into the Sink supplied to Exchange.
type Result struct {
	Header wire.Header
	Body   []byte
}

// Exchange performs exactly one request/response round trip — spec.md
// §4.2's numbered steps. If sink is non-nil, a response whose declared
// length is nonzero is streamed into it instead of being buffered; a
// nonzero response status always short-circuits straight to ServerError
// without touching the sink, since "nonzero status means no body is to
// be interpreted" (spec.md §3).
func (c *Connection) Exchange(ctx context.Context, req wire.Request, into sink.Sink) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.State() == Broken || c.State() == Closed {
		return Result{}, xerr.NewProtocolError("exchange on broken or closed connection", nil)
	}

	if dl, ok := ctx.Deadline(); ok {
		_ = c.nc.SetDeadline(dl)
	} else {
		var dl2 time.Time
		if budget := c.opts.WriteTimeout + c.opts.ReadTimeout; budget > 0 {
			dl2 = time.Now().Add(budget)
		}
		_ = c.nc.SetDeadline(dl2)
	}
	defer c.nc.SetDeadline(time.Time{})

	if err := c.writeRequest(ctx, req); err != nil {
		c.MarkBroken()
		return Result{}, err
	}

	res, err := c.readResponse(ctx, req.Command, into)
	if err != nil {
		// a nonzero response status is a ServerError, not a framing
		// failure — the connection read a complete, well-formed frame and
		// stays usable (spec.md §4.2 scenario 4: "Connection returns to
		// Pool as Idle, not Broken").
		if _, ok := xerr.IsServerError(err); !ok {
			c.MarkBroken()
		}
		return Result{}, err
	}
	return res, nil
}

func (c *Connection) writeRequest(ctx context.Context, req wire.Request) error {
	hdr := wire.Header{Length: req.FrameLength(), Command: req.Command}
	enc := hdr.Encode()
	buf := make([]byte, 0, len(enc)+len(req.Body))
	buf = append(buf, enc[:]...)
	buf = append(buf, req.Body...)
	if _, err := c.nc.Write(buf); err != nil {
		return xerr.NewProtocolError("write header+body", err)
	}
	if req.Stream == nil {
		return nil
	}
	return c.writeStream(ctx, req.Stream, req.StreamLen)
}

// writeStream copies exactly streamLen bytes from r to the socket in
// bounded chunks — "do not buffer the whole stream" (spec.md §4.2 step 3).
func (c *Connection) writeStream(ctx context.Context, r io.Reader, streamLen int64) error {
	chunk := make([]byte, c.opts.chunkSize())
	var sent int64
	for sent < streamLen {
		if err := ctx.Err(); err != nil {
			return xerr.NewCancelled("upload stream")
		}
		want := int64(len(chunk))
		if rem := streamLen - sent; rem < want {
			want = rem
		}
		n, err := io.ReadFull(r, chunk[:want])
		if n > 0 {
			if _, werr := c.nc.Write(chunk[:n]); werr != nil {
				return xerr.NewProtocolError("write stream chunk", werr)
			}
			sent += int64(n)
		}
		if err != nil && err != io.EOF {
			return xerr.NewProtocolError("read input stream", err)
		}
		if n == 0 && err != nil {
			break
		}
	}
	if sent != streamLen {
		return xerr.NewProtocolError("input stream shorter than declared length", nil)
	}
	return nil
}

func (c *Connection) readResponse(ctx context.Context, cmd byte, into sink.Sink) (Result, error) {
	var hb [wire.HeaderLen]byte
	if _, err := io.ReadFull(c.nc, hb[:]); err != nil {
		if xerr.IsTimeout(err) {
			return Result{}, xerr.NewTimeoutError("read response header", c.opts.ReadTimeout)
		}
		return Result{}, xerr.NewProtocolError("read response header", err)
	}
	hdr, err := wire.DecodeHeader(hb[:])
	if err != nil {
		return Result{}, err
	}
	if hdr.Status != wire.StatusOK {
		// drain any (non-semantic) body so the connection stays framed-correctly usable.
		if hdr.Length > 0 {
			if _, err := io.CopyN(io.Discard, c.nc, int64(hdr.Length)); err != nil {
				return Result{}, xerr.NewProtocolError("drain error-response body", err)
			}
		}
		return Result{Header: hdr}, xerr.NewServerError(cmd, hdr.Status)
	}

	if into == nil {
		if hdr.Length == 0 {
			return Result{Header: hdr}, nil
		}
		body := make([]byte, hdr.Length)
		if _, err := io.ReadFull(c.nc, body); err != nil {
			return Result{}, xerr.NewProtocolError("read response body", err)
		}
		return Result{Header: hdr, Body: body}, nil
	}

	if err := c.streamInto(ctx, hdr.Length, into); err != nil {
		into.Abort(err)
		return Result{}, err
	}
	if err := into.Complete(); err != nil {
		return Result{}, err
	}
	return Result{Header: hdr}, nil
}

// streamInto reads exactly total bytes off the wire in bounded chunks,
// handing each to the sink in arrival order — spec.md §4.2 step 5 and the
// "framing invariant" in §8.
func (c *Connection) streamInto(ctx context.Context, total uint64, into sink.Sink) error {
	chunk := make([]byte, c.opts.chunkSize())
	var got uint64
	for got < total {
		if err := ctx.Err(); err != nil {
			return xerr.NewCancelled("download stream")
		}
		want := uint64(len(chunk))
		if rem := total - got; rem < want {
			want = rem
		}
		n, err := io.ReadFull(c.nc, chunk[:want])
		if n > 0 {
			if _, werr := into.Write(chunk[:n]); werr != nil {
				return xerr.NewStreamError(werr)
			}
			got += uint64(n)
		}
		if err != nil {
			return xerr.NewProtocolError("read response stream", err)
		}
	}
	return nil
}
