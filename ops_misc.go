package fastdfs

import (
	"context"
	"io"

	"github.com/fastdfs-go/fastdfs/wire"
)

// Append adds appendLength bytes, read from r, to the end of an existing
// append-capable file — spec.md §4.4 names STORAGE_APPEND among the
// mutating operations a tracker's query-update response is used for.
func (c *Client) Append(ctx context.Context, group, fileID string, r io.Reader, appendLength int64) error {
	info, err := c.queryUpdate(ctx, group, fileID)
	if err != nil {
		return err
	}
	hdr := wire.AppendHeader{Group: group, FileID: fileID, AppendLength: uint64(appendLength)}
	body, err := hdr.Encode()
	if err != nil {
		return err
	}
	req, err := wire.NewStreamRequest(wire.StorageAppend, body, r, appendLength)
	if err != nil {
		return err
	}
	_, err = c.storageExchange(ctx, endpointAddr(info.IPAddr, info.Port), req, nil)
	return err
}

// Modify overwrites writeBytes bytes of an existing file starting at
// offset, reading the replacement content from r.
func (c *Client) Modify(ctx context.Context, group, fileID string, offset int64, r io.Reader, writeBytes int64) error {
	info, err := c.queryUpdate(ctx, group, fileID)
	if err != nil {
		return err
	}
	hdr := wire.ModifyHeader{Group: group, FileID: fileID, Offset: uint64(offset), WriteBytes: uint64(writeBytes)}
	body, err := hdr.Encode()
	if err != nil {
		return err
	}
	req, err := wire.NewStreamRequest(wire.StorageModify, body, r, writeBytes)
	if err != nil {
		return err
	}
	_, err = c.storageExchange(ctx, endpointAddr(info.IPAddr, info.Port), req, nil)
	return err
}

// Truncate shrinks or extends an existing append-capable file to exactly
// truncatedTo bytes.
func (c *Client) Truncate(ctx context.Context, group, fileID string, truncatedTo int64) error {
	info, err := c.queryUpdate(ctx, group, fileID)
	if err != nil {
		return err
	}
	hdr := wire.TruncateHeader{Group: group, FileID: fileID, TruncatedTo: uint64(truncatedTo)}
	body, err := hdr.Encode()
	if err != nil {
		return err
	}
	req := wire.NewRequest(wire.StorageTruncate, body)
	_, err = c.storageExchange(ctx, endpointAddr(info.IPAddr, info.Port), req, nil)
	return err
}

// Delete removes a file. A missing file is reported the same as any other
// ServerError — spec.md does not single out "not found" as a distinct kind.
func (c *Client) Delete(ctx context.Context, group, fileID string) error {
	info, err := c.queryUpdate(ctx, group, fileID)
	if err != nil {
		return err
	}
	body, err := wire.EncodeGroupFileID(group, fileID)
	if err != nil {
		return err
	}
	req := wire.NewRequest(wire.StorageDelete, body)
	_, err = c.storageExchange(ctx, endpointAddr(info.IPAddr, info.Port), req, nil)
	return err
}
