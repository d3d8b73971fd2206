package sink

import (
	"io"
	"sync/atomic"

	"github.com/fastdfs-go/fastdfs/xerr"
)

// chunk is a queued write; a zero-value chunk with done=true is the
// completion marker, mirroring the teacher's transport package using a
// dedicated "opcFin" sentinel object rather than closing the channel
// mid-flight.
type chunk struct {
	data []byte
	done bool
}

// File is a disk-backed Sink: the connection's read loop pushes chunks onto
// a bounded queue and returns immediately; a single worker goroutine drains
// the queue and writes to w, so a slow disk never stalls network reads —
// this is the "dedicated worker task" called for in spec.md §4.5, grounded
// on the teacher's send-queue/completion-queue (SQ/SCQ) pair in
// transport/api.go, adapted from send-side object streaming to
// receive-side disk writes.
type File struct {
	w     io.Writer
	queue chan chunk
	errc  chan error

	aborted atomic.Bool
	failed  atomic.Bool
	werr    atomic.Pointer[error]
}

// NewFile wraps w (typically an *os.File) with a bounded queue of depth
// burst; Write blocks (applying backpressure to the network read loop)
// once the queue is full and the worker hasn't caught up.
func NewFile(w io.Writer, burst int) *File {
	if burst <= 0 {
		burst = 32
	}
	f := &File{w: w, queue: make(chan chunk, burst), errc: make(chan error, 1)}
	go f.drain()
	return f
}

func (f *File) drain() {
	var werr error
	for c := range f.queue {
		if c.done {
			break
		}
		if werr != nil {
			continue // keep draining so Write() callers don't deadlock post-error
		}
		if _, err := f.w.Write(c.data); err != nil {
			werr = err
			var se error = xerr.NewStreamError(err)
			f.werr.Store(&se)
			f.failed.Store(true)
		}
	}
	f.errc <- werr
}

// Write rejects immediately once the worker has recorded a write failure or
// Abort has been called — spec.md §4.5 "on write error it transitions to a
// terminal-error state and subsequent writes are rejected" — rather than
// silently accepting and discarding the rest of a failed download.
func (f *File) Write(p []byte) (int, error) {
	if f.aborted.Load() {
		return 0, xerr.NewStreamError(io.ErrClosedPipe)
	}
	if f.failed.Load() {
		if ep := f.werr.Load(); ep != nil {
			return 0, *ep
		}
		return 0, xerr.NewStreamError(io.ErrClosedPipe)
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	f.queue <- chunk{data: cp}
	return len(p), nil
}

// Complete signals end-of-stream and waits for the worker to flush.
func (f *File) Complete() error {
	f.queue <- chunk{done: true}
	close(f.queue)
	if err := <-f.errc; err != nil {
		return xerr.NewStreamError(err)
	}
	return nil
}

// Abort transitions the sink to a terminal-error state; subsequent writes
// are rejected per spec.md §4.5.
func (f *File) Abort(error) {
	if f.aborted.Swap(true) {
		return
	}
	close(f.queue)
	<-f.errc
}
