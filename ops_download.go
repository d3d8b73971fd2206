package fastdfs

import (
	"context"
	"time"

	"github.com/fastdfs-go/fastdfs/sink"
	"github.com/fastdfs-go/fastdfs/wire"
)

// Download composes Tracker.QueryFetch -> Storage.Download — spec.md §4.4.
// offset/length select a byte range; length 0 means "to EOF". The response
// body is streamed into into as it arrives off the wire (conn.Connection
// never buffers a download), so into must tolerate being written to from
// the exchange goroutine until Complete is called.
func (c *Client) Download(ctx context.Context, group, fileID string, offset, length int64, into sink.Sink) error {
	info, err := c.QueryFetch(ctx, group, fileID)
	if err != nil {
		return err
	}

	hdr := wire.DownloadHeader{Group: group, FileID: fileID, Offset: uint64(offset), Length: uint64(length)}
	if c.cfg.AntiLeechSecret != "" {
		hdr.TS = time.Now().Unix()
		hdr.Token = wire.AntiLeechToken(c.cfg.AntiLeechSecret, fileID, hdr.TS)
	}
	body, err := hdr.Encode()
	if err != nil {
		return err
	}
	req := wire.NewRequest(wire.StorageDownload, body)

	_, err = c.storageExchange(ctx, endpointAddr(info.IPAddr, info.Port), req, into)
	return err
}

// DownloadAll is the convenience form of Download that accumulates the
// whole file in memory via a sink.Buffer — useful for small files and for
// callers that have no streaming destination of their own.
func (c *Client) DownloadAll(ctx context.Context, group, fileID string) ([]byte, error) {
	buf := sink.NewBuffer(0)
	if err := c.Download(ctx, group, fileID, 0, 0, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
