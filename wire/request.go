package wire

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/fastdfs-go/fastdfs/xerr"
)

// Request is one outbound frame: a command, its encoded body, and an
// optional input stream whose length must be known up front — spec.md
// §4.1 "an unknown-length stream is rejected".
type Request struct {
	Command   byte
	Body      []byte
	Stream    io.Reader
	StreamLen int64 // -1 when Stream == nil
}

// NewRequest builds a body-only request (no streamed payload).
func NewRequest(cmd byte, body []byte) Request {
	return Request{Command: cmd, Body: body, StreamLen: -1}
}

// NewStreamRequest builds a request whose frame continues with streamLen
// bytes read from r after the body. streamLen must be known; FastDFS has
// no chunked-length wire encoding.
func NewStreamRequest(cmd byte, body []byte, r io.Reader, streamLen int64) (Request, error) {
	if streamLen < 0 {
		return Request{}, xerr.NewConfigError("streamLen", "upload stream length must be known before the header is flushed")
	}
	return Request{Command: cmd, Body: body, Stream: r, StreamLen: streamLen}, nil
}

// FrameLength is the value that goes into the header's body-length field.
func (r Request) FrameLength() uint64 {
	n := uint64(len(r.Body))
	if r.Stream != nil {
		n += uint64(r.StreamLen)
	}
	return n
}

// AntiLeechToken computes FastDFS's optional download token:
// md5(secret + fileId + ts), hex-encoded, matching the scheme storages
// validate when `http.anti_steal_token` (or, here, the TCP-level
// equivalent) is enabled. See SPEC_FULL.md §C.1.
func AntiLeechToken(secret, fileID string, ts int64) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s%s%d", secret, fileID, ts)))
	return hex.EncodeToString(sum[:])
}
