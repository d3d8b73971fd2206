package conn_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fastdfs-go/fastdfs/conn"
	"github.com/fastdfs-go/fastdfs/internal/fakeserver"
	"github.com/fastdfs-go/fastdfs/internal/tassert"
	"github.com/fastdfs-go/fastdfs/sink"
	"github.com/fastdfs-go/fastdfs/wire"
)

func testOptions() conn.Options {
	return conn.Options{ConnectTimeout: time.Second, ReadTimeout: time.Second, WriteTimeout: time.Second}
}

func TestExchangeBuffersSmallResponse(t *testing.T) {
	srv, err := fakeserver.New(map[byte]fakeserver.Handler{
		wire.StorageGetMeta: func(body []byte) fakeserver.Response {
			return fakeserver.Response{Status: wire.StatusOK, Body: []byte("echo:" + string(body))}
		},
	})
	tassert.CheckFatal(t, err)
	defer srv.Close()

	c, err := conn.Dial(context.Background(), srv.Addr(), testOptions(), nil)
	tassert.CheckFatal(t, err)
	defer c.Close()

	req := wire.NewRequest(wire.StorageGetMeta, []byte("hi"))
	res, err := c.Exchange(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if got := string(res.Body); got != "echo:hi" {
		t.Fatalf("Body = %q, want echo:hi", got)
	}
}

func TestExchangeStreamsIntoSink(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 200*1024)
	srv, err := fakeserver.New(map[byte]fakeserver.Handler{
		wire.StorageDownload: func([]byte) fakeserver.Response {
			return fakeserver.Response{Status: wire.StatusOK, Body: payload}
		},
	})
	tassert.CheckFatal(t, err)
	defer srv.Close()

	c, err := conn.Dial(context.Background(), srv.Addr(), testOptions(), nil)
	tassert.CheckFatal(t, err)
	defer c.Close()

	buf := sink.NewBuffer(len(payload))
	req := wire.NewRequest(wire.StorageDownload, nil)
	if _, err := c.Exchange(context.Background(), req, buf); err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), payload) {
		t.Fatalf("streamed %d bytes, want %d", len(buf.Bytes()), len(payload))
	}
}

func TestExchangeNonzeroStatusIsServerError(t *testing.T) {
	srv, err := fakeserver.New(map[byte]fakeserver.Handler{
		wire.StorageDelete: func([]byte) fakeserver.Response {
			return fakeserver.Response{Status: 2}
		},
	})
	tassert.CheckFatal(t, err)
	defer srv.Close()

	c, err := conn.Dial(context.Background(), srv.Addr(), testOptions(), nil)
	tassert.CheckFatal(t, err)
	defer c.Close()

	_, err = c.Exchange(context.Background(), wire.NewRequest(wire.StorageDelete, nil), nil)
	if err == nil {
		t.Fatal("expected ServerError for nonzero status")
	}
	if c.State() == conn.Broken {
		t.Fatal("a ServerError must leave the connection usable, not Broken")
	}

	// the connection must still be usable for a further exchange.
	if _, err := c.Exchange(context.Background(), wire.NewRequest(wire.StorageDelete, nil), nil); err == nil {
		t.Fatal("expected ServerError again on the second exchange")
	}
}

func TestExchangeAppliesReadTimeoutWithZeroWriteTimeout(t *testing.T) {
	srv, err := fakeserver.New(map[byte]fakeserver.Handler{
		wire.StorageGetMeta: func([]byte) fakeserver.Response {
			time.Sleep(200 * time.Millisecond)
			return fakeserver.Response{Status: wire.StatusOK}
		},
	})
	tassert.CheckFatal(t, err)
	defer srv.Close()

	// WriteTimeout left at zero ("fire and forget" writes); ReadTimeout alone
	// must still bound the socket deadline, or a slow peer hangs Exchange
	// forever instead of surfacing a TimeoutError.
	opts := conn.Options{ConnectTimeout: time.Second, ReadTimeout: 50 * time.Millisecond}
	c, err := conn.Dial(context.Background(), srv.Addr(), opts, nil)
	tassert.CheckFatal(t, err)
	defer c.Close()

	start := time.Now()
	_, err = c.Exchange(context.Background(), wire.NewRequest(wire.StorageGetMeta, nil), nil)
	if err == nil {
		t.Fatal("expected a timeout error for a peer slower than ReadTimeout")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Exchange took %s, want it bounded by ReadTimeout", elapsed)
	}
}

func TestExchangeUploadsStream(t *testing.T) {
	var gotBody []byte
	srv, err := fakeserver.New(map[byte]fakeserver.Handler{
		wire.StorageUpload: func(body []byte) fakeserver.Response {
			gotBody = append([]byte(nil), body...)
			return fakeserver.Response{Status: wire.StatusOK}
		},
	})
	tassert.CheckFatal(t, err)
	defer srv.Close()

	c, err := conn.Dial(context.Background(), srv.Addr(), testOptions(), nil)
	tassert.CheckFatal(t, err)
	defer c.Close()

	content := []byte("file contents")
	req, err := wire.NewStreamRequest(wire.StorageUpload, []byte("hdr"), bytes.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("NewStreamRequest: %v", err)
	}
	if _, err := c.Exchange(context.Background(), req, nil); err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if want := append([]byte("hdr"), content...); !bytes.Equal(gotBody, want) {
		t.Fatalf("server saw %q, want %q", gotBody, want)
	}
}
