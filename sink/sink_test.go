package sink_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/fastdfs-go/fastdfs/sink"
)

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestBufferAccumulates(t *testing.T) {
	b := sink.NewBuffer(0)
	if _, err := b.Write([]byte("hello ")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := b.Write([]byte("world")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := b.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got := string(b.Bytes()); got != "hello world" {
		t.Fatalf("Bytes() = %q", got)
	}
}

func TestBufferAbortRejectsFurtherWrites(t *testing.T) {
	b := sink.NewBuffer(0)
	b.Abort(errors.New("boom"))
	if _, err := b.Write([]byte("x")); err == nil {
		t.Fatal("expected write after Abort to fail")
	}
}

func TestFileWritesThroughToUnderlyingWriter(t *testing.T) {
	var buf bytes.Buffer
	f := sink.NewFile(&buf, 4)
	if _, err := f.Write([]byte("abc")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := f.Write([]byte("def")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := f.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got := buf.String(); got != "abcdef" {
		t.Fatalf("buf = %q, want abcdef", got)
	}
}

// TestFileWriteFailsAfterDiskWriteError covers the case where the
// underlying writer itself fails: the worker goroutine must surface that
// failure to Write so the caller stops feeding a download that can never
// land on disk, rather than silently discarding the rest of the stream.
func TestFileWriteFailsAfterDiskWriteError(t *testing.T) {
	f := sink.NewFile(failingWriter{}, 1)
	if _, err := f.Write([]byte("x")); err != nil {
		t.Fatalf("first Write: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	var err error
	for time.Now().Before(deadline) {
		if _, err = f.Write([]byte("y")); err != nil {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if err == nil {
		t.Fatal("expected a Write after a disk write error to return an error")
	}
}

func TestFileAbortStopsAcceptingWrites(t *testing.T) {
	var buf bytes.Buffer
	f := sink.NewFile(&buf, 4)
	f.Abort(errors.New("boom"))
	if _, err := f.Write([]byte("x")); err == nil {
		t.Fatal("expected write after Abort to fail")
	}
}

func TestHashingWrapsInnerSink(t *testing.T) {
	inner := sink.NewBuffer(0)
	h := sink.NewHashing(inner)
	if _, err := h.Write([]byte("payload")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := h.Complete(); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got := string(inner.Bytes()); got != "payload" {
		t.Fatalf("inner buffer = %q", got)
	}
	if h.Sum64() == 0 {
		t.Fatal("expected a nonzero digest for non-empty input")
	}
}
