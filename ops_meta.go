package fastdfs

import (
	"context"

	"github.com/fastdfs-go/fastdfs/wire"
)

// SetMeta replaces (overwrite) or merges (merge) a file's metadata —
// spec.md §4.4; see wire.SetMetaFlagOverwrite / wire.SetMetaFlagMerge.
func (c *Client) SetMeta(ctx context.Context, group, fileID string, kv map[string]string, overwrite bool) error {
	info, err := c.queryUpdate(ctx, group, fileID)
	if err != nil {
		return err
	}
	blob := wire.EncodeMetadata(kv)
	flag := wire.SetMetaFlagMerge
	if overwrite {
		flag = wire.SetMetaFlagOverwrite
	}
	hdr := wire.SetMetaHeader{Group: group, FileID: fileID, Flag: flag, MetaSize: uint64(len(blob))}
	head, err := hdr.Encode()
	if err != nil {
		return err
	}
	body := append(head, blob...)
	req := wire.NewRequest(wire.StorageSetMeta, body)
	_, err = c.storageExchange(ctx, endpointAddr(info.IPAddr, info.Port), req, nil)
	return err
}

// GetMeta returns a file's metadata as a flat key/value map.
func (c *Client) GetMeta(ctx context.Context, group, fileID string) (map[string]string, error) {
	info, err := c.queryUpdate(ctx, group, fileID)
	if err != nil {
		return nil, err
	}
	body, err := wire.EncodeGroupFileID(group, fileID)
	if err != nil {
		return nil, err
	}
	req := wire.NewRequest(wire.StorageGetMeta, body)
	res, err := c.storageExchange(ctx, endpointAddr(info.IPAddr, info.Port), req, nil)
	if err != nil {
		return nil, err
	}
	return wire.DecodeMetadata(res.Body), nil
}

// QueryFileInfo returns a file's size, CRC32 and creation timestamp without
// transferring its content.
func (c *Client) QueryFileInfo(ctx context.Context, group, fileID string) (wire.FileInfo, error) {
	info, err := c.queryUpdate(ctx, group, fileID)
	if err != nil {
		return wire.FileInfo{}, err
	}
	body, err := wire.EncodeGroupFileID(group, fileID)
	if err != nil {
		return wire.FileInfo{}, err
	}
	req := wire.NewRequest(wire.StorageQueryFileInfo, body)
	res, err := c.storageExchange(ctx, endpointAddr(info.IPAddr, info.Port), req, nil)
	if err != nil {
		return wire.FileInfo{}, err
	}
	return wire.DecodeFileInfoResp(res.Body)
}
