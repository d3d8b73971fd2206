package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/fastdfs-go/fastdfs/xerr"
)

// StorageInfo is what a tracker hands back to point the caller at a
// Storage endpoint — spec.md §3 "a Storage address is returned by a
// Tracker inside a response body".
type StorageInfo struct {
	Group      string
	IPAddr     string
	Port       int
	StoreIndex int8 // store-path index; only meaningful for upload
}

const (
	storeQueryRespLen = GroupNameLen + IPAddrFieldLen + LenFieldSize + 1
	fetchQueryRespLen = GroupNameLen + IPAddrFieldLen + LenFieldSize
)

// EncodeQueryStoreWithoutGroup builds TRACKER_QUERY_STORE_WITHOUT_GROUP: an
// empty body — the tracker picks any group with capacity.
func EncodeQueryStoreWithoutGroup() []byte { return nil }

// EncodeQueryStoreWithGroup builds TRACKER_QUERY_STORE_WITH_GROUP: the
// 16-byte fixed group name only.
func EncodeQueryStoreWithGroup(group string) ([]byte, error) {
	body := make([]byte, GroupNameLen)
	if err := putFixed(body, group, GroupNameLen); err != nil {
		return nil, err
	}
	return body, nil
}

// DecodeQueryStoreResp parses the response to either query-store variant.
func DecodeQueryStoreResp(b []byte) (StorageInfo, error) {
	if len(b) != storeQueryRespLen {
		return StorageInfo{}, xerr.NewProtocolError(
			fmt.Sprintf("query-store response len %d != %d", len(b), storeQueryRespLen), nil)
	}
	return StorageInfo{
		Group:      trimFixed(b[0:GroupNameLen]),
		IPAddr:     trimFixed(b[GroupNameLen : GroupNameLen+IPAddrFieldLen]),
		Port:       int(binary.BigEndian.Uint64(b[GroupNameLen+IPAddrFieldLen : GroupNameLen+IPAddrFieldLen+LenFieldSize])),
		StoreIndex: int8(b[storeQueryRespLen-1]),
	}, nil
}

// EncodeQueryFetchOne builds TRACKER_QUERY_FETCH_ONE: group name + fileId.
func EncodeQueryFetchOne(group, fileID string) ([]byte, error) {
	return encodeGroupAndFileID(group, fileID)
}

// DecodeQueryFetchResp parses the response to query-fetch-one / query-update.
func DecodeQueryFetchResp(b []byte) (StorageInfo, error) {
	if len(b) != fetchQueryRespLen {
		return StorageInfo{}, xerr.NewProtocolError(
			fmt.Sprintf("query-fetch response len %d != %d", len(b), fetchQueryRespLen), nil)
	}
	return StorageInfo{
		Group:  trimFixed(b[0:GroupNameLen]),
		IPAddr: trimFixed(b[GroupNameLen : GroupNameLen+IPAddrFieldLen]),
		Port:   int(binary.BigEndian.Uint64(b[GroupNameLen+IPAddrFieldLen : GroupNameLen+IPAddrFieldLen+LenFieldSize])),
	}, nil
}

// EncodeQueryUpdate builds TRACKER_QUERY_UPDATE, used ahead of
// append/modify/truncate/delete/set-meta — same wire shape as fetch-one.
func EncodeQueryUpdate(group, fileID string) ([]byte, error) {
	return encodeGroupAndFileID(group, fileID)
}

func encodeGroupAndFileID(group, fileID string) ([]byte, error) {
	if len(fileID) > FileIDMaxLen {
		return nil, fmt.Errorf("fastdfs/wire: fileId %q exceeds max length %d", fileID, FileIDMaxLen)
	}
	body := make([]byte, GroupNameLen+len(fileID))
	if err := putFixed(body[:GroupNameLen], group, GroupNameLen); err != nil {
		return nil, err
	}
	copy(body[GroupNameLen:], fileID)
	return body, nil
}

// GroupStat is one row of TRACKER_LIST_GROUPS.
type GroupStat struct {
	Group        string
	TotalSpaceMB uint64
	FreeSpaceMB  uint64
	StorageCount uint64
}

const groupStatLen = GroupNameLen + 3*LenFieldSize

// DecodeListGroupsResp parses TRACKER_LIST_GROUPS's response body.
func DecodeListGroupsResp(b []byte) ([]GroupStat, error) {
	if len(b)%groupStatLen != 0 {
		return nil, xerr.NewProtocolError("list-groups response not a multiple of record size", nil)
	}
	out := make([]GroupStat, 0, len(b)/groupStatLen)
	for off := 0; off < len(b); off += groupStatLen {
		rec := b[off : off+groupStatLen]
		out = append(out, GroupStat{
			Group:        trimFixed(rec[0:GroupNameLen]),
			TotalSpaceMB: binary.BigEndian.Uint64(rec[GroupNameLen : GroupNameLen+8]),
			FreeSpaceMB:  binary.BigEndian.Uint64(rec[GroupNameLen+8 : GroupNameLen+16]),
			StorageCount: binary.BigEndian.Uint64(rec[GroupNameLen+16 : GroupNameLen+24]),
		})
	}
	return out, nil
}

// StorageStat is one row of TRACKER_LIST_STORAGES.
type StorageStat struct {
	IPAddr string
	Port   int
	Status uint8 // 0 = active
}

const storageStatLen = IPAddrFieldLen + LenFieldSize + 1

// EncodeListStorages builds TRACKER_LIST_STORAGES; an empty group lists
// storages across every group.
func EncodeListStorages(group string) ([]byte, error) {
	if group == "" {
		return nil, nil
	}
	body := make([]byte, GroupNameLen)
	if err := putFixed(body, group, GroupNameLen); err != nil {
		return nil, err
	}
	return body, nil
}

// DecodeListStoragesResp parses TRACKER_LIST_STORAGES's response body.
func DecodeListStoragesResp(b []byte) ([]StorageStat, error) {
	if len(b)%storageStatLen != 0 {
		return nil, xerr.NewProtocolError("list-storages response not a multiple of record size", nil)
	}
	out := make([]StorageStat, 0, len(b)/storageStatLen)
	for off := 0; off < len(b); off += storageStatLen {
		rec := b[off : off+storageStatLen]
		out = append(out, StorageStat{
			IPAddr: trimFixed(rec[0:IPAddrFieldLen]),
			Port:   int(binary.BigEndian.Uint64(rec[IPAddrFieldLen : IPAddrFieldLen+LenFieldSize])),
			Status: rec[storageStatLen-1],
		})
	}
	return out, nil
}
