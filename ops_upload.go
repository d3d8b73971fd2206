package fastdfs

import (
	"context"
	"io"

	"github.com/fastdfs-go/fastdfs/wire"
)

// UploadResult identifies a newly stored file.
type UploadResult struct {
	Group  string
	FileID string
}

// Upload composes Tracker.QueryStorage -> Storage.Upload — spec.md §4.4.
// size must be the exact number of bytes Upload will read from r; FastDFS
// has no chunked-length wire encoding, so an unknown size is rejected
// (spec.md §4.1).
func (c *Client) Upload(ctx context.Context, group, ext string, r io.Reader, size int64) (UploadResult, error) {
	info, err := c.QueryStorage(ctx, group)
	if err != nil {
		return UploadResult{}, err
	}

	hdr := wire.UploadHeader{StoreIndex: info.StoreIndex, FileSize: uint64(size), FileExt: ext}
	body, err := hdr.Encode()
	if err != nil {
		return UploadResult{}, err
	}
	req, err := wire.NewStreamRequest(wire.StorageUpload, body, r, size)
	if err != nil {
		return UploadResult{}, err
	}

	res, err := c.storageExchange(ctx, endpointAddr(info.IPAddr, info.Port), req, nil)
	if err != nil {
		return UploadResult{}, err
	}
	up, err := wire.DecodeUploadResp(res.Body)
	if err != nil {
		return UploadResult{}, err
	}
	return UploadResult{Group: up.Group, FileID: up.FileID}, nil
}

// UploadSlave attaches a derived file (e.g. a thumbnail) under an existing
// master file's name, using prefix to distinguish it — spec.md §6 names
// STORAGE_UPLOAD_SLAVE; SPEC_FULL.md §C.4 composes it into an operation.
func (c *Client) UploadSlave(ctx context.Context, group, masterFileID, prefix, ext string, r io.Reader, size int64) (UploadResult, error) {
	info, err := c.queryUpdate(ctx, group, masterFileID)
	if err != nil {
		return UploadResult{}, err
	}

	hdr := wire.UploadSlaveHeader{FileSize: uint64(size), Prefix: prefix, FileExt: ext, MasterFileName: masterFileID}
	body, err := hdr.Encode()
	if err != nil {
		return UploadResult{}, err
	}
	req, err := wire.NewStreamRequest(wire.StorageUploadSlave, body, r, size)
	if err != nil {
		return UploadResult{}, err
	}

	res, err := c.storageExchange(ctx, endpointAddr(info.IPAddr, info.Port), req, nil)
	if err != nil {
		return UploadResult{}, err
	}
	up, err := wire.DecodeUploadResp(res.Body)
	if err != nil {
		return UploadResult{}, err
	}
	return UploadResult{Group: up.Group, FileID: up.FileID}, nil
}
